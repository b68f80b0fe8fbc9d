package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/auricle-labs/auricle/pkg/audio/wav"
	"github.com/auricle-labs/auricle/pkg/voicedetect"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := New(voicedetect.NewDetector(), slog.New(slog.DiscardHandler))
	return s.Router()
}

// toneWAV renders a pure sine as a base64 PCM16 WAV.
func toneWAV(freq, seconds float64, rate int) string {
	n := int(seconds * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return base64.StdEncoding.EncodeToString(wav.EncodePCM16(samples, rate, 1))
}

func silentWAV(seconds float64, rate int) string {
	samples := make([]float64, int(seconds*float64(rate)))
	return base64.StdEncoding.EncodeToString(wav.EncodePCM16(samples, rate, 1))
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v (%s)", err, w.Body.String())
	}
	return body.Error.Kind
}

func TestDetectEndpoint(t *testing.T) {
	r := newTestRouter()
	w := doJSON(t, r, http.MethodPost, "/detect", gin.H{
		"audio_data": toneWAV(200, 2.0, 16000),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var res voicedetect.DetectionResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Classification != voicedetect.ClassificationAI {
		t.Errorf("classification = %q, want %q", res.Classification, voicedetect.ClassificationAI)
	}
	if res.LanguageDetected != voicedetect.DefaultLanguage {
		t.Errorf("language = %q, want %q", res.LanguageDetected, voicedetect.DefaultLanguage)
	}
	if res.DetailedAnalysis != nil {
		t.Error("detailed analysis present without include_features")
	}
}

func TestDetectIncludeFeatures(t *testing.T) {
	r := newTestRouter()
	w := doJSON(t, r, http.MethodPost, "/detect", gin.H{
		"audio_data":       toneWAV(200, 1.0, 16000),
		"language":         "tamil",
		"include_features": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res voicedetect.DetectionResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.LanguageDetected != "tamil" {
		t.Errorf("language = %q, want tamil", res.LanguageDetected)
	}
	if res.DetailedAnalysis == nil {
		t.Fatal("detailed analysis missing")
	}
	if len(res.DetailedAnalysis.Features) != len(voicedetect.RequiredFeatures) {
		t.Errorf("got %d features, want %d", len(res.DetailedAnalysis.Features), len(voicedetect.RequiredFeatures))
	}
}

func TestDetectBadRequests(t *testing.T) {
	r := newTestRouter()
	tests := []struct {
		name     string
		body     any
		wantKind string
	}{
		{"missing audio", gin.H{"language": "english"}, "validation_error"},
		{"bad base64", gin.H{"audio_data": "not-base64!!"}, "validation_error"},
		{"not wav", gin.H{"audio_data": base64.StdEncoding.EncodeToString([]byte("hello"))}, "decode_error"},
		{"unsupported language", gin.H{"audio_data": toneWAV(200, 1.0, 16000), "language": "french"}, "validation_error"},
		{"too short", gin.H{"audio_data": toneWAV(200, 0.2, 16000)}, "duration_error"},
		{"silent", gin.H{"audio_data": silentWAV(1.0, 16000)}, "silence_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/detect", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			if got := errorKind(t, w); got != tt.wantKind {
				t.Errorf("kind = %q, want %q", got, tt.wantKind)
			}
		})
	}
}

// One bad item must not fail its batch neighbors.
func TestBatchIsolation(t *testing.T) {
	r := newTestRouter()
	w := doJSON(t, r, http.MethodPost, "/detect/batch", gin.H{
		"items": []gin.H{
			{"audio_data": toneWAV(200, 1.0, 16000)},
			{"audio_data": silentWAV(1.0, 16000)},
			{"audio_data": toneWAV(220, 1.0, 16000), "language": "hindi"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Results []struct {
			Index  int                          `json:"index"`
			Result *voicedetect.DetectionResult `json:"result"`
			Error  *struct {
				Kind string `json:"kind"`
			} `json:"error"`
		} `json:"results"`
		Total     int `json:"total"`
		Succeeded int `json:"succeeded"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Total != 3 || body.Succeeded != 2 {
		t.Errorf("total = %d, succeeded = %d, want 3 and 2", body.Total, body.Succeeded)
	}
	if body.Results[0].Result == nil || body.Results[0].Error != nil {
		t.Error("item 0 should succeed")
	}
	if body.Results[1].Error == nil || body.Results[1].Error.Kind != "silence_error" {
		t.Errorf("item 1 error = %+v, want silence_error", body.Results[1].Error)
	}
	if body.Results[2].Result == nil || body.Results[2].Result.LanguageDetected != "hindi" {
		t.Error("item 2 should succeed with hindi echoed")
	}
}

func TestBatchLimits(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/detect/batch", gin.H{"items": []gin.H{}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d, want 400", w.Code)
	}

	tone := toneWAV(200, 0.6, 16000)
	items := make([]gin.H, maxBatchItems+1)
	for i := range items {
		items[i] = gin.H{"audio_data": tone}
	}
	w = doJSON(t, r, http.MethodPost, "/detect/batch", gin.H{"items": items})
	if w.Code != http.StatusBadRequest {
		t.Errorf("oversized batch status = %d, want 400", w.Code)
	}
	if got := errorKind(t, w); got != "validation_error" {
		t.Errorf("kind = %q, want validation_error", got)
	}
}

func TestDiscoveryEndpoints(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/languages", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("languages status = %d", w.Code)
	}
	var langs struct {
		Languages []voicedetect.Language `json:"languages"`
		Default   string                 `json:"default"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &langs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(langs.Languages) != 5 {
		t.Errorf("got %d languages, want 5", len(langs.Languages))
	}
	if langs.Default != voicedetect.DefaultLanguage {
		t.Errorf("default = %q, want %q", langs.Default, voicedetect.DefaultLanguage)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("root status = %d", w.Code)
	}
}
