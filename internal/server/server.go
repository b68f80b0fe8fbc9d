// Package server exposes the voice detection pipeline over HTTP. The JSON
// surface is deliberately small: one detection endpoint, a batch variant and
// a few read-only discovery routes.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/auricle-labs/auricle/pkg/voicedetect"
)

// maxBatchItems bounds one batch request.
const maxBatchItems = 10

// maxBodyBytes bounds a request body. 300 s of 16-bit stereo at 48 kHz is
// roughly 58 MB of PCM; base64 adds a third.
const maxBodyBytes = 80 << 20

// Server wires a detector into a gin router. It holds no per-request state.
type Server struct {
	detector *voicedetect.Detector
	logger   *slog.Logger
	started  time.Time
}

// New builds a Server around a detector. A nil logger discards nothing: the
// default slog logger is used.
func New(detector *voicedetect.Detector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		detector: detector,
		logger:   logger,
		started:  time.Now(),
	}
}

// Router assembles the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	})

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.GET("/languages", s.handleLanguages)
	r.POST("/detect", s.handleDetect)
	r.POST("/detect/batch", s.handleDetectBatch)
	return r
}

// Run serves the router on addr until the listener fails.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening", "addr", addr)
	return srv.ListenAndServe()
}
