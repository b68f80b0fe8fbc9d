package server

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/auricle-labs/auricle/pkg/audio/wav"
	"github.com/auricle-labs/auricle/pkg/voicedetect"
)

// Version is the service version reported by the discovery endpoints. It is
// overridden at build time via -ldflags.
var Version = "dev"

// kindValidation marks request-shape failures caught before the pipeline
// runs. Pipeline failures carry their own kinds.
const kindValidation voicedetect.ErrorKind = "validation_error"

type detectRequest struct {
	AudioData       string `json:"audio_data" binding:"required"`
	Language        string `json:"language"`
	IncludeFeatures bool   `json:"include_features"`
}

type batchRequest struct {
	Items []detectRequest `json:"items" binding:"required"`
}

type batchItem struct {
	Index  int                          `json:"index"`
	Result *voicedetect.DetectionResult `json:"result,omitempty"`
	Error  *errorBody                   `json:"error,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// statusFor maps pipeline error kinds to HTTP statuses: client-fixable input
// problems are 400, everything else is 500.
func statusFor(kind voicedetect.ErrorKind) int {
	switch kind {
	case voicedetect.KindDecode, voicedetect.KindDuration, voicedetect.KindSilence, kindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toErrorBody(err error) *errorBody {
	kind := voicedetect.KindOf(err)
	if kind == "" {
		kind = "internal_error"
	}
	return &errorBody{Kind: string(kind), Message: err.Error()}
}

func (s *Server) abortError(c *gin.Context, err error) {
	kind := voicedetect.KindOf(err)
	status := http.StatusInternalServerError
	if kind != "" {
		status = statusFor(kind)
	}
	body := toErrorBody(err)
	s.logger.Warn("request failed",
		"request_id", requestID(c),
		"kind", body.Kind,
		"status", status,
	)
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// runDetect decodes one request's audio and runs the pipeline. Shared by the
// single and batch endpoints.
func (s *Server) runDetect(req *detectRequest) (*voicedetect.DetectionResult, error) {
	if req.AudioData == "" {
		return nil, verr("audio_data is required")
	}
	if req.Language != "" && !voicedetect.IsSupportedLanguage(req.Language) {
		return nil, verr("unsupported language %q", req.Language)
	}

	raw, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil {
		return nil, verr("audio_data is not valid base64: %v", err)
	}
	audio, err := wav.Decode(raw)
	if err != nil {
		return nil, &voicedetect.Error{Kind: voicedetect.KindDecode, Message: err.Error()}
	}

	return s.detector.Detect(audio.Samples, audio.SampleRate, audio.Channels, req.Language, req.IncludeFeatures)
}

func (s *Server) handleDetect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, verr("invalid request body: %v", err))
		return
	}

	result, err := s.runDetect(&req)
	if err != nil {
		s.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleDetectBatch runs up to maxBatchItems detections concurrently. Items
// are isolated: one bad sample never fails its neighbors.
func (s *Server) handleDetectBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, verr("invalid request body: %v", err))
		return
	}
	if len(req.Items) == 0 {
		s.abortError(c, verr("batch is empty"))
		return
	}
	if len(req.Items) > maxBatchItems {
		s.abortError(c, verr("batch has %d items, maximum is %d", len(req.Items), maxBatchItems))
		return
	}

	items := make([]batchItem, len(req.Items))
	var wg sync.WaitGroup
	for i := range req.Items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items[i].Index = i
			result, err := s.runDetect(&req.Items[i])
			if err != nil {
				items[i].Error = toErrorBody(err)
				return
			}
			items[i].Result = result
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i := range items {
		if items[i].Result != nil {
			succeeded++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"results":   items,
		"total":     len(items),
		"succeeded": succeeded,
	})
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "auricle",
		"version": Version,
		"endpoints": gin.H{
			"detect":    "POST /detect",
			"batch":     "POST /detect/batch",
			"health":    "GET /health",
			"languages": "GET /languages",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"version":        Version,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages": voicedetect.SupportedLanguages,
		"default":   voicedetect.DefaultLanguage,
	})
}

func verr(format string, args ...any) error {
	return &voicedetect.Error{Kind: kindValidation, Message: fmt.Sprintf(format, args...)}
}
