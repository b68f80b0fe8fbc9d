package voicedetect

import (
	"fmt"
	"math"
)

// Category groups rules for weighted combination.
type Category string

const (
	CategorySpectral Category = "spectral"
	CategoryProsodic Category = "prosodic"
	CategoryTemporal Category = "temporal"
	CategoryHarmonic Category = "harmonic_statistical"
)

// Direction states which way a satisfied rule leans.
type Direction string

const (
	DirectionAI    Direction = "ai-like"
	DirectionHuman Direction = "human-like"
)

// categoryOrder fixes the iteration order for score combination, keeping
// floating-point summation bit-for-bit reproducible.
var categoryOrder = []Category{CategorySpectral, CategoryProsodic, CategoryTemporal, CategoryHarmonic}

// Comparator relates a feature value to a rule threshold.
type Comparator string

const (
	CompareGreater Comparator = ">"
	CompareLess    Comparator = "<"
)

// Rule is one row of the decision table. The table is plain data: changing
// detection behavior means editing rows, not control flow.
type Rule struct {
	Name       string
	Feature    string
	Comparator Comparator
	Threshold  float64
	Category   Category
	Weight     float64
	Indicator  string
	Direction  Direction
}

// Indicator is a triggered rule's text together with its category, which
// drives the explanation priority order.
type Indicator struct {
	Text     string
	Category Category
}

// ThresholdTable is the immutable rule set evaluated against every feature
// vector. It is built once at startup and shared by unlimited concurrent
// readers.
type ThresholdTable struct {
	rules           []Rule
	categoryWeights map[Category]float64
}

// defaultCategoryWeights combine per-category partial scores into the
// overall probability. Prosody carries the most evidence: jitter and shimmer
// are the strongest separators between synthesized and organic voice.
var defaultCategoryWeights = map[Category]float64{
	CategorySpectral: 0.30,
	CategoryProsodic: 0.40,
	CategoryTemporal: 0.15,
	CategoryHarmonic: 0.15,
}

// defaultRules pair each feature threshold with an ai-like and a human-like
// row so either outcome surfaces an indicator. A value exactly at the
// threshold triggers neither and counts as neutral.
var defaultRules = []Rule{
	{Name: "flat_spectrum", Feature: "spectral_flatness", Comparator: CompareGreater, Threshold: 0.15, Category: CategorySpectral, Weight: 2.0, Indicator: "high spectral uniformity", Direction: DirectionAI},
	{Name: "organic_spectrum", Feature: "spectral_flatness", Comparator: CompareLess, Threshold: 0.15, Category: CategorySpectral, Weight: 2.0, Indicator: "organic spectral texture", Direction: DirectionHuman},

	{Name: "low_jitter", Feature: "jitter", Comparator: CompareLess, Threshold: 0.005, Category: CategoryProsodic, Weight: 2.2, Indicator: "minimal pitch variation", Direction: DirectionAI},
	{Name: "natural_jitter", Feature: "jitter", Comparator: CompareGreater, Threshold: 0.005, Category: CategoryProsodic, Weight: 2.2, Indicator: "natural pitch variation", Direction: DirectionHuman},
	{Name: "low_shimmer", Feature: "shimmer", Comparator: CompareLess, Threshold: 0.05, Category: CategoryProsodic, Weight: 2.0, Indicator: "highly consistent amplitude", Direction: DirectionAI},
	{Name: "natural_shimmer", Feature: "shimmer", Comparator: CompareGreater, Threshold: 0.05, Category: CategoryProsodic, Weight: 2.0, Indicator: "natural amplitude variation", Direction: DirectionHuman},

	{Name: "stable_zcr", Feature: "zcr_std", Comparator: CompareLess, Threshold: 0.02, Category: CategoryTemporal, Weight: 1.8, Indicator: "stable zero-crossing rate", Direction: DirectionAI},
	{Name: "variable_zcr", Feature: "zcr_std", Comparator: CompareGreater, Threshold: 0.02, Category: CategoryTemporal, Weight: 1.8, Indicator: "variable articulation", Direction: DirectionHuman},

	{Name: "strong_harmonics", Feature: "harmonic_ratio", Comparator: CompareGreater, Threshold: 0.75, Category: CategoryHarmonic, Weight: 1.5, Indicator: "unusually strong harmonic structure", Direction: DirectionAI},
	{Name: "mixed_harmonics", Feature: "harmonic_ratio", Comparator: CompareLess, Threshold: 0.75, Category: CategoryHarmonic, Weight: 1.5, Indicator: "mixed harmonic and noise content", Direction: DirectionHuman},
	{Name: "uniform_cepstrum", Feature: "mfcc_variance", Comparator: CompareLess, Threshold: 2.5, Category: CategoryHarmonic, Weight: 1.5, Indicator: "uniform cepstral envelope", Direction: DirectionAI},
	{Name: "varied_cepstrum", Feature: "mfcc_variance", Comparator: CompareGreater, Threshold: 2.5, Category: CategoryHarmonic, Weight: 1.5, Indicator: "varied cepstral envelope", Direction: DirectionHuman},
	{Name: "flat_energy", Feature: "energy_entropy", Comparator: CompareLess, Threshold: 3.5, Category: CategoryHarmonic, Weight: 1.0, Indicator: "flat energy contour", Direction: DirectionAI},
	{Name: "dynamic_energy", Feature: "energy_entropy", Comparator: CompareGreater, Threshold: 3.5, Category: CategoryHarmonic, Weight: 1.0, Indicator: "dynamic energy distribution", Direction: DirectionHuman},
}

// DefaultThresholdTable returns the built-in rule set.
func DefaultThresholdTable() *ThresholdTable {
	t, err := NewThresholdTable(defaultRules, defaultCategoryWeights)
	if err != nil {
		// The built-in table is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return t
}

// NewThresholdTable validates and freezes a rule set. Validation failures
// are configuration errors and block engine construction.
func NewThresholdTable(rules []Rule, categoryWeights map[Category]float64) (*ThresholdTable, error) {
	if len(rules) == 0 {
		return nil, newError(KindConfiguration, "rule table is empty")
	}

	features := make(map[string]bool, len(RequiredFeatures))
	for _, f := range RequiredFeatures {
		features[f] = true
	}
	names := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.Name == "" {
			return nil, newError(KindConfiguration, "rule with empty name")
		}
		if names[r.Name] {
			return nil, newError(KindConfiguration, "duplicate rule name %q", r.Name)
		}
		names[r.Name] = true
		if !features[r.Feature] {
			return nil, newError(KindConfiguration, "rule %q references unknown feature %q", r.Name, r.Feature)
		}
		if r.Comparator != CompareGreater && r.Comparator != CompareLess {
			return nil, newError(KindConfiguration, "rule %q has invalid comparator %q", r.Name, r.Comparator)
		}
		if r.Direction != DirectionAI && r.Direction != DirectionHuman {
			return nil, newError(KindConfiguration, "rule %q has invalid direction %q", r.Name, r.Direction)
		}
		if r.Weight <= 0 {
			return nil, newError(KindConfiguration, "rule %q has non-positive weight %v", r.Name, r.Weight)
		}
		if _, ok := categoryWeights[r.Category]; !ok {
			return nil, newError(KindConfiguration, "rule %q uses category %q with no weight", r.Name, r.Category)
		}
	}

	sum := 0.0
	for c, w := range categoryWeights {
		if !c.valid() {
			return nil, newError(KindConfiguration, "unknown category %q", c)
		}
		if w < 0 {
			return nil, newError(KindConfiguration, "category %q has negative weight", c)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, newError(KindConfiguration, "category weights sum to %v, want 1.0", sum)
	}

	frozen := make([]Rule, len(rules))
	copy(frozen, rules)
	weights := make(map[Category]float64, len(categoryWeights))
	for c, w := range categoryWeights {
		weights[c] = w
	}
	return &ThresholdTable{rules: frozen, categoryWeights: weights}, nil
}

// Rules returns a copy of the rule rows, mainly for inspection and tests.
func (t *ThresholdTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Score evaluates the table against a feature vector. For each category the
// AI-leaning partial is the triggered ai-like weight plus half the weight of
// rules that triggered neither way; partials are combined with the category
// weights, the language bias is added, and the result is clamped to [0, 1].
func (t *ThresholdTable) Score(fv FeatureVector, adj Adjustment) (probability float64, aiIndicators, humanIndicators []Indicator) {
	type partial struct{ ai, human, total float64 }
	partials := make(map[Category]*partial, len(t.categoryWeights))
	for c := range t.categoryWeights {
		partials[c] = &partial{}
	}

	for _, r := range t.rules {
		p := partials[r.Category]
		p.total += r.Weight

		threshold := r.Threshold + adj.ThresholdShifts[r.Name]
		value := fv[r.Feature]

		triggered := false
		switch r.Comparator {
		case CompareGreater:
			triggered = value > threshold
		case CompareLess:
			triggered = value < threshold
		}
		if !triggered {
			continue
		}

		ind := Indicator{Text: r.Indicator, Category: r.Category}
		if r.Direction == DirectionAI {
			p.ai += r.Weight
			aiIndicators = append(aiIndicators, ind)
		} else {
			p.human += r.Weight
			humanIndicators = append(humanIndicators, ind)
		}
	}

	probability = 0.0
	for _, c := range categoryOrder {
		w, ok := t.categoryWeights[c]
		if !ok {
			continue
		}
		p := partials[c]
		score := 0.5
		if p.total > 0 {
			neutral := p.total - p.ai - p.human
			score = (p.ai + 0.5*neutral) / p.total
		}
		probability += w * score
	}

	probability += adj.ProbabilityBias
	probability = math.Min(math.Max(probability, 0), 1)
	return probability, aiIndicators, humanIndicators
}

func (c Category) valid() bool {
	switch c {
	case CategorySpectral, CategoryProsodic, CategoryTemporal, CategoryHarmonic:
		return true
	}
	return false
}

func parseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
