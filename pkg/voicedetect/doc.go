// Package voicedetect classifies a spoken-voice signal as AI-generated or
// human-generated.
//
// The pipeline is a deterministic chain of pure transforms: decoded PCM is
// normalized to a 16 kHz mono signal, a fixed set of acoustic features is
// extracted over 25 ms frames with a 10 ms hop, and a declarative rule table
// scores the feature vector into an AI probability with per-language
// threshold adjustments. A short natural-language explanation is assembled
// from the triggered indicators.
//
// There is no trained model anywhere in the pipeline; every threshold and
// weight is plain data, inspectable and overridable through Config. The
// Detector holds only immutable tables after construction and is safe for
// unbounded concurrent use.
package voicedetect
