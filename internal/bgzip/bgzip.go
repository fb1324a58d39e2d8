// Copyright 2019 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bgzip writes gzip streams made of independent members, one
// per logical record group.  A concatenation of members is a valid
// gzip stream, so the output reads like an ordinary .gz file, while a
// byte offset index allows seeking straight to one member.
package bgzip

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// Writer writes gzip members to an underlying writer and tracks the
// byte offset at which each member starts.
type Writer struct {
	w      io.Writer
	offset uint64
}

// NewWriter returns a Writer that writes members to w, which must be
// positioned at the start of the output stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Offset returns the byte offset at which the next member will start.
func (w *Writer) Offset() uint64 {
	return w.offset
}

// WriteMember compresses data into a single gzip member and writes it
// to the underlying writer, returning the offset at which the member
// starts.
func (w *Writer) WriteMember(data []byte) (uint64, error) {
	start := w.offset

	var buffer bytes.Buffer
	gzw := gzip.NewWriter(&buffer)
	if _, err := gzw.Write(data); err != nil {
		return 0, fmt.Errorf("writing compressed data: %v", err)
	}
	if err := gzw.Close(); err != nil {
		return 0, fmt.Errorf("closing gzip member: %v", err)
	}

	n, err := w.w.Write(buffer.Bytes())
	w.offset += uint64(n)
	if err != nil {
		return 0, fmt.Errorf("writing gzip member: %v", err)
	}
	return start, nil
}

// ReadMemberAt decompresses the single gzip member starting at offset
// in r.  Bytes from any following member are not returned.
func ReadMemberAt(r io.ReaderAt, offset uint64) ([]byte, error) {
	section := io.NewSectionReader(r, int64(offset), 1<<62)
	gzr, err := gzip.NewReader(section)
	if err != nil {
		return nil, fmt.Errorf("initializing gzip reader: %v", err)
	}
	defer gzr.Close()
	gzr.Multistream(false)

	var buffer bytes.Buffer
	if _, err := io.Copy(&buffer, gzr); err != nil {
		return nil, fmt.Errorf("decompressing member: %v", err)
	}
	return buffer.Bytes(), nil
}
