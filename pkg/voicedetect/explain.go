package voicedetect

import (
	"fmt"
	"sort"
	"strings"
)

// maxExplainedIndicators bounds the narrative length.
const maxExplainedIndicators = 3

// explainPriority orders indicator categories by how much weight a reader
// should give them: prosody first, temporal cues last.
var explainPriority = map[Category]int{
	CategoryProsodic: 0,
	CategorySpectral: 1,
	CategoryHarmonic: 2,
	CategoryTemporal: 3,
}

// explain renders the classification into a deterministic narrative. The
// same inputs always produce the same string.
func explain(classification string, confidence float64, aiIndicators, humanIndicators []Indicator, language string, duration float64) string {
	isAI := classification == ClassificationAI

	var label string
	var dominant []Indicator
	if isAI {
		label = "AI-generated"
		dominant = dominantIndicators(aiIndicators)
	} else {
		label = "human-generated"
		dominant = dominantIndicators(humanIndicators)
	}

	reasons := make([]string, len(dominant))
	for i, ind := range dominant {
		reasons[i] = ind.Text
	}
	if len(reasons) == 0 {
		if isAI {
			reasons = []string{"an overall synthetic signal profile"}
		} else {
			reasons = []string{"natural prosodic variation", "organic spectral characteristics"}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The audio sample is classified as %s with %.1f%% confidence. ", label, confidence*100)
	fmt.Fprintf(&b, "Analysis of the %.1f-second %s speech revealed: %s. ", duration, languageName(language), joinReasons(reasons))
	if isAI {
		b.WriteString("These patterns are typical of synthetic voice generation systems.")
	} else {
		b.WriteString("These characteristics are consistent with natural human speech production.")
	}
	return b.String()
}

// dominantIndicators sorts by category priority (stable, so table order
// breaks ties) and caps the list.
func dominantIndicators(indicators []Indicator) []Indicator {
	out := make([]Indicator, len(indicators))
	copy(out, indicators)
	sort.SliceStable(out, func(i, j int) bool {
		return explainPriority[out[i].Category] < explainPriority[out[j].Category]
	})
	if len(out) > maxExplainedIndicators {
		out = out[:maxExplainedIndicators]
	}
	return out
}

// joinReasons renders "a", "a and b", or "a, b and c".
func joinReasons(reasons []string) string {
	switch len(reasons) {
	case 0:
		return ""
	case 1:
		return reasons[0]
	default:
		return strings.Join(reasons[:len(reasons)-1], ", ") + " and " + reasons[len(reasons)-1]
	}
}
