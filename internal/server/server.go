// Package server exposes the workbench over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"genelab/internal/logging"
	"genelab/internal/metrics"
	"genelab/internal/simerr"
	"genelab/internal/workbench"
	"genelab/internal/writers"
	"genelab/pkg/api"
)

// NewRouter wires every endpoint. rec may be nil; /metrics then serves an
// empty registry.
func NewRouter(wb *workbench.Workbench, rec *metrics.Recorder, log logr.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	var requests atomic.Int64
	v1 := r.Group("/v1")
	v1.POST("/jobs", NewJobHandler(wb, "", &requests))
	v1.POST("/crispr/sites", NewJobHandler(wb, workbench.KindSites, &requests))
	v1.POST("/crispr/edit", NewJobHandler(wb, workbench.KindEdit, &requests))
	v1.POST("/pcr/design", NewJobHandler(wb, workbench.KindPrimers, &requests))
	v1.POST("/pcr/run", NewJobHandler(wb, workbench.KindPCR, &requests))
	v1.POST("/sequencing/run", NewJobHandler(wb, workbench.KindSequence, &requests))
	v1.POST("/gel/run", NewJobHandler(wb, workbench.KindGel, &requests))
	v1.POST("/workflow", NewJobHandler(wb, workbench.KindWorkflow, &requests))
	v1.GET("/sequencing/technologies", NewTechnologiesHandler(wb))
	v1.GET("/gel/ladders", NewLaddersHandler(wb))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(rec.Handler()))
	return r
}

// requestLogger puts a per-request logger into the request context and logs
// each request at DEBUG once it completes.
func requestLogger(log logr.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		l := log.WithValues("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(), l))
		c.Next()
		l.V(logging.DEBUG).Info("request", "status", c.Writer.Status(), "duration", time.Since(start))
	}
}

// NewJobHandler builds a gin handler that decodes a workbench.Job from the
// request body and runs it. A non-empty kind is forced onto the job, so the
// per-engine routes need no "kind" field. Query flags: reads, amplicon.
// Seeds not given in the body are derived from the configured base seed and
// a per-router request counter.
func NewJobHandler(wb *workbench.Workbench, kind workbench.Kind, counter *atomic.Int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var job workbench.Job
		if err := c.ShouldBindJSON(&job); err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorV1{Error: "decode job: " + err.Error(), Kind: "invalid_input"})
			return
		}
		if kind != "" {
			job.Kind = kind
		}
		if job.ID == "" {
			job.ID = string(job.Kind)
		}
		n := int(counter.Add(1) - 1)
		out := wb.Run(c.Request.Context(), job, wb.SeedFor(job, n))

		if out.Err != nil {
			status, k := classify(out.Err)
			c.JSON(status, api.ErrorV1{Error: out.Err.Error(), Kind: k})
			return
		}
		opt := writers.Options{Reads: flag(c, "reads"), Amplicon: flag(c, "amplicon")}
		c.JSON(http.StatusOK, writers.ToAPI(out, opt))
	}
}

func flag(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(name, "false"))
	return err == nil && v
}

// classify maps an outcome error to an HTTP status and ErrorV1 kind.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, simerr.ErrInvalidRegion):
		return http.StatusBadRequest, "invalid_region"
	case errors.Is(err, simerr.ErrInvalidSequence):
		return http.StatusBadRequest, "invalid_sequence"
	case errors.Is(err, simerr.ErrUnsupportedPamPattern):
		return http.StatusBadRequest, "unsupported_pam"
	case errors.Is(err, simerr.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, workbench.ErrNoTargetSite):
		return http.StatusUnprocessableEntity, "no_target_site"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	}
	return http.StatusInternalServerError, "internal"
}

// NewTechnologiesHandler lists the sequencing profiles the workbench knows.
func NewTechnologiesHandler(wb *workbench.Workbench) gin.HandlerFunc {
	return func(c *gin.Context) {
		names := wb.Sequencing.ProfileNames()
		out := make([]gin.H, 0, len(names))
		for _, n := range names {
			p, _ := wb.Sequencing.Profile(n)
			out = append(out, gin.H{
				"name":        p.Name,
				"read_length": p.ReadLength,
				"paired_end":  p.PairedEnd,
				"error_rate":  p.ErrorRate,
				"avg_quality": p.AvgQuality,
				"description": p.Description,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

// NewLaddersHandler returns the configured ladders by name.
func NewLaddersHandler(wb *workbench.Workbench) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, wb.Gel.Config().Ladders)
	}
}

// Serve runs h on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log := logging.FromContext(ctx)
	log.Info("listening", "addr", addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
