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

// Package gcsio opens input files that live either on the local
// filesystem or in Google Cloud Storage (gs:// URLs).
package gcsio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Supported authentication modes for storage access.
const (
	// AuthDefault uses application default credentials.
	AuthDefault = "default"
	// AuthPublic uses no authorization and can only read
	// publicly-readable objects.
	AuthPublic = "public"
	// AuthToken uses a static OAuth2 bearer token.
	AuthToken = "token"
)

// Opener opens local paths and gs:// URLs.  The storage client is
// created lazily on the first gs:// open and cached for efficiency.
type Opener struct {
	auth  string
	token string

	initialize sync.Once
	client     *storage.Client
	err        error
}

// NewOpener returns an Opener using the given authentication mode.
// The token is only used with AuthToken.
func NewOpener(auth, token string) (*Opener, error) {
	switch auth {
	case AuthDefault, AuthPublic:
	case AuthToken:
		if token == "" {
			return nil, fmt.Errorf("auth mode %q requires a token", auth)
		}
	default:
		return nil, fmt.Errorf("unknown auth mode %q", auth)
	}
	return &Opener{auth: auth, token: token}, nil
}

// Open opens name for reading.  Names starting with gs:// are read
// from Cloud Storage; everything else is opened as a local file.
func (o *Opener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !strings.HasPrefix(name, "gs://") {
		return os.Open(name)
	}

	bucket, object, err := ParseGSURL(name)
	if err != nil {
		return nil, err
	}

	o.initialize.Do(func() {
		o.client, o.err = newClient(ctx, o.auth, o.token)
	})
	if o.err != nil {
		return nil, fmt.Errorf("creating storage client: %v", o.err)
	}

	r, err := o.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, newStorageError(name, err)
	}
	return r, nil
}

func newClient(ctx context.Context, auth, token string) (*storage.Client, error) {
	switch auth {
	case AuthPublic:
		return storage.NewClient(ctx, option.WithHTTPClient(http.DefaultClient))
	case AuthToken:
		source := oauth2.StaticTokenSource(&oauth2.Token{TokenType: "Bearer", AccessToken: token})
		return storage.NewClient(ctx, option.WithTokenSource(source))
	}
	return storage.NewClient(ctx)
}

// ParseGSURL splits a gs://bucket/object URL into its components.
func ParseGSURL(name string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(name, "gs://")
	slash := strings.IndexByte(trimmed, '/')
	if slash <= 0 || slash == len(trimmed)-1 {
		return "", "", fmt.Errorf("invalid object URL %q (want gs://bucket/object)", name)
	}
	return trimmed[:slash], trimmed[slash+1:], nil
}

func newStorageError(name string, err error) error {
	if err == storage.ErrObjectNotExist {
		return fmt.Errorf("%s: object does not exist", name)
	}
	if err, ok := err.(*googleapi.Error); ok {
		switch err.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: invalid authentication: %v", name, err)
		case http.StatusForbidden:
			return fmt.Errorf("%s: permission denied: %v", name, err)
		}
	}
	return fmt.Errorf("%s: %v", name, err)
}
