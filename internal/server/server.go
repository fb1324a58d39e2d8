// Package server exposes the contents of a label tile store over HTTP
// so that genome browsers can display label tracks.
package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/googlegenomics/labelgen/internal/genomics"
	"github.com/googlegenomics/labelgen/internal/tilestore"
)

// Server serves label tracks from a tile store.
type Server struct {
	store *tilestore.Store
}

// New returns a Server backed by store.
func New(store *tilestore.Store) *Server {
	return &Server{store: store}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(requestID())

	v1 := router.Group("/v1")
	v1.GET("/tasks", s.listTasks)
	v1.GET("/labels/:task", s.serveLabels)
	return router
}

// requestID tags every request with a uuid so server logs can be
// correlated with client reports.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Header("X-Request-ID", id)
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Printf("Request %s failed with status %d", id, c.Writer.Status())
		}
	}
}

func (s *Server) listTasks(c *gin.Context) {
	meta := s.store.Meta()
	c.JSON(http.StatusOK, gin.H{
		"tasks":  meta.Tasks,
		"tiling": meta.Tiling,
	})
}

type binRow struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
	Label int8   `json:"label"`
}

func (s *Server) serveLabels(c *gin.Context) {
	task := c.Param("task")
	if !s.store.HasTask(task) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown task %q", task)})
		return
	}

	region, err := genomics.ParseRegion(c.Query("chrom"), c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "bedgraph" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json or bedgraph"})
		return
	}

	bins, err := s.store.Bins(region.Chrom)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	from, to := bins.Covering(region.Start, region.End)
	labels, err := s.store.ReadRange(task, region.Chrom, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Boundary bins are clipped to the requested region.
	rows := make([]binRow, len(labels))
	for i := range labels {
		start, end := bins.Bin(from + uint32(i))
		if start < region.Start {
			start = region.Start
		}
		if region.End > 0 && end > region.End {
			end = region.End
		}
		rows[i] = binRow{Start: start, End: end, Label: labels[i]}
	}

	if format == "bedgraph" {
		c.String(http.StatusOK, bedGraph(region.Chrom, rows))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task":  task,
		"chrom": region.Chrom,
		"bins":  rows,
	})
}

// bedGraph renders bins as run-merged bedGraph intervals.  Bins can
// overlap, so every interval ends where the next run starts and only
// the final run keeps its last bin's full extent.
func bedGraph(chrom string, rows []binRow) string {
	if len(rows) == 0 {
		return ""
	}
	var builder strings.Builder
	runStart, runLabel := rows[0].Start, rows[0].Label
	for _, row := range rows[1:] {
		if row.Label == runLabel {
			continue
		}
		fmt.Fprintf(&builder, "%s\t%d\t%d\t%d\n", chrom, runStart, row.Start, runLabel)
		runStart, runLabel = row.Start, row.Label
	}
	fmt.Fprintf(&builder, "%s\t%d\t%d\t%d\n", chrom, runStart, rows[len(rows)-1].End, runLabel)
	return builder.String()
}
