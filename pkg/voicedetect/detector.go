package voicedetect

import (
	"math"
	"time"
)

// Classification labels.
const (
	ClassificationAI    = "ai_generated"
	ClassificationHuman = "human_generated"
)

// DetailedAnalysis carries the full feature vector and the triggered
// indicator texts, returned only when the caller asks for it.
type DetailedAnalysis struct {
	Features        FeatureVector `json:"features"`
	AIIndicators    []string      `json:"ai_indicators"`
	HumanIndicators []string      `json:"human_indicators"`
}

// DetectionResult is the immutable outcome of one detection request.
type DetectionResult struct {
	Classification       string            `json:"classification"`
	ConfidenceScore      float64           `json:"confidence_score"`
	Explanation          string            `json:"explanation"`
	LanguageDetected     string            `json:"language_detected"`
	ProcessingTimeMS     float64           `json:"processing_time_ms"`
	AudioDurationSeconds float64           `json:"audio_duration_seconds"`
	DetailedAnalysis     *DetailedAnalysis `json:"detailed_analysis,omitempty"`
}

// Detector runs the full pipeline: normalization, feature extraction, rule
// scoring and explanation. It holds only immutable tables after construction
// and is safe for unbounded concurrent use; each call is independent.
type Detector struct {
	extractor   *Extractor
	table       *ThresholdTable
	adjustments *AdjustmentTable
}

// NewDetector builds a Detector with the built-in rule and language tables.
func NewDetector() *Detector {
	return &Detector{
		extractor:   NewExtractor(),
		table:       DefaultThresholdTable(),
		adjustments: DefaultAdjustmentTable(),
	}
}

// NewDetectorWithTables builds a Detector from explicit tables, typically
// loaded from configuration. A nil adjustments table means no per-language
// shifts.
func NewDetectorWithTables(table *ThresholdTable, adjustments *AdjustmentTable) (*Detector, error) {
	if table == nil {
		return nil, newError(KindConfiguration, "threshold table is required")
	}
	return &Detector{
		extractor:   NewExtractor(),
		table:       table,
		adjustments: adjustments,
	}, nil
}

// Detect classifies decoded PCM. The language hint is echoed back in the
// result; an empty hint falls back to DefaultLanguage. includeFeatures adds
// the DetailedAnalysis block.
func (d *Detector) Detect(samples []float64, sampleRate, channels int, language string, includeFeatures bool) (*DetectionResult, error) {
	start := time.Now()

	sig, err := Normalize(samples, sampleRate, channels)
	if err != nil {
		return nil, err
	}
	return d.detectSignal(sig, language, includeFeatures, start)
}

// DetectSignal classifies an already normalized signal.
func (d *Detector) DetectSignal(sig *AudioSignal, language string, includeFeatures bool) (*DetectionResult, error) {
	return d.detectSignal(sig, language, includeFeatures, time.Now())
}

func (d *Detector) detectSignal(sig *AudioSignal, language string, includeFeatures bool, start time.Time) (*DetectionResult, error) {
	if language == "" {
		language = DefaultLanguage
	}

	fv, err := d.extractor.Extract(sig)
	if err != nil {
		return nil, err
	}

	probability, aiInds, humanInds := d.table.Score(fv, d.adjustments.For(language))

	// A probability of exactly 0.5 resolves to ai_generated.
	classification := ClassificationHuman
	if probability >= 0.5 {
		classification = ClassificationAI
	}
	confidence := math.Max(probability, 1-probability)

	result := &DetectionResult{
		Classification:       classification,
		ConfidenceScore:      roundTo(confidence, 4),
		Explanation:          explain(classification, confidence, aiInds, humanInds, language, sig.Duration),
		LanguageDetected:     language,
		ProcessingTimeMS:     roundTo(float64(time.Since(start).Microseconds())/1000, 2),
		AudioDurationSeconds: roundTo(sig.Duration, 2),
	}

	if includeFeatures {
		result.DetailedAnalysis = &DetailedAnalysis{
			Features:        roundedFeatures(fv),
			AIIndicators:    indicatorTexts(aiInds),
			HumanIndicators: indicatorTexts(humanInds),
		}
	}
	return result, nil
}

func indicatorTexts(indicators []Indicator) []string {
	out := make([]string, len(indicators))
	for i, ind := range indicators {
		out[i] = ind.Text
	}
	return out
}

func roundedFeatures(fv FeatureVector) FeatureVector {
	out := fv.Clone()
	for k, v := range out {
		out[k] = roundTo(v, 4)
	}
	return out
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
