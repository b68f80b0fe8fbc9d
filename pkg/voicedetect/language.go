package voicedetect

// DefaultLanguage is assumed when the caller supplies no hint. The result's
// language field echoes the hint; no acoustic language identification takes
// place.
const DefaultLanguage = "english"

// Language describes one supported language code.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

// SupportedLanguages enumerates the accepted language hints.
var SupportedLanguages = []Language{
	{Code: "tamil", Name: "Tamil", NativeName: "தமிழ்"},
	{Code: "english", Name: "English", NativeName: "English"},
	{Code: "hindi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "malayalam", Name: "Malayalam", NativeName: "മലയാളം"},
	{Code: "telugu", Name: "Telugu", NativeName: "తెలుగు"},
}

// IsSupportedLanguage reports whether code is in the enumerated set.
func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// languageName returns the display name for a code, falling back to the code
// itself.
func languageName(code string) string {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

// Adjustment shifts rule thresholds and biases the final probability for one
// language. The zero value is the identity adjustment.
type Adjustment struct {
	// ThresholdShifts maps rule names to signed offsets added to the
	// rule's threshold before comparison.
	ThresholdShifts map[string]float64
	// ProbabilityBias is added to the combined probability before
	// clamping.
	ProbabilityBias float64
}

// AdjustmentTable maps language codes to adjustments. Immutable after
// construction; unknown or empty codes resolve to the identity adjustment
// rather than an error.
type AdjustmentTable struct {
	byLanguage map[string]Adjustment
}

// phonemeWeights capture how much each language's phoneme inventory tends to
// spread the zero-crossing distribution relative to English. They widen the
// zcr_std threshold pair proportionally.
var phonemeWeights = map[string]float64{
	"tamil":     1.10,
	"english":   1.00,
	"hindi":     1.05,
	"malayalam": 1.10,
	"telugu":    1.08,
}

// DefaultAdjustmentTable derives per-language threshold shifts from the
// phoneme weights. English is the identity.
func DefaultAdjustmentTable() *AdjustmentTable {
	byLang := make(map[string]Adjustment, len(phonemeWeights))
	for code, w := range phonemeWeights {
		shift := (w - 1.0) * 0.02 // scale against the zcr_std base threshold
		if shift == 0 {
			byLang[code] = Adjustment{}
			continue
		}
		byLang[code] = Adjustment{
			ThresholdShifts: map[string]float64{
				"stable_zcr":   shift,
				"variable_zcr": shift,
			},
		}
	}
	return &AdjustmentTable{byLanguage: byLang}
}

// NewAdjustmentTable freezes an explicit language->adjustment mapping.
func NewAdjustmentTable(byLanguage map[string]Adjustment) *AdjustmentTable {
	frozen := make(map[string]Adjustment, len(byLanguage))
	for code, adj := range byLanguage {
		shifts := make(map[string]float64, len(adj.ThresholdShifts))
		for k, v := range adj.ThresholdShifts {
			shifts[k] = v
		}
		frozen[code] = Adjustment{ThresholdShifts: shifts, ProbabilityBias: adj.ProbabilityBias}
	}
	return &AdjustmentTable{byLanguage: frozen}
}

// For returns the adjustment for a language code, or the identity when the
// code is unknown.
func (t *AdjustmentTable) For(code string) Adjustment {
	if t == nil {
		return Adjustment{}
	}
	return t.byLanguage[code]
}
