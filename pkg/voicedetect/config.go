package voicedetect

import (
	"os"

	"github.com/goccy/go-yaml"
)

// RuleConfig is the YAML form of one rule row.
type RuleConfig struct {
	Name       string  `yaml:"name"`
	Feature    string  `yaml:"feature"`
	Comparator string  `yaml:"comparator"`
	Threshold  float64 `yaml:"threshold"`
	Category   string  `yaml:"category"`
	Weight     float64 `yaml:"weight"`
	Indicator  string  `yaml:"indicator"`
	Direction  string  `yaml:"direction"`
}

// LanguageConfig is the YAML form of one language adjustment.
type LanguageConfig struct {
	ThresholdShifts map[string]float64 `yaml:"threshold_shifts"`
	ProbabilityBias float64            `yaml:"probability_bias"`
}

// Config optionally overrides the built-in rule and language tables. Empty
// sections keep the defaults. It is read once at startup; the detector never
// consults files afterwards.
type Config struct {
	Rules           []RuleConfig              `yaml:"rules"`
	CategoryWeights map[string]float64        `yaml:"category_weights"`
	Languages       map[string]LanguageConfig `yaml:"languages"`
}

// LoadConfig reads and parses a YAML config file. All failures are
// configuration errors: fatal at startup, never mid-request.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(KindConfiguration, err, "reading config file")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, wrapError(KindConfiguration, err, "parsing config file")
	}
	return &cfg, nil
}

// Detector builds a Detector from the config, validating every override.
func (c *Config) Detector() (*Detector, error) {
	table := DefaultThresholdTable()
	if len(c.Rules) > 0 || len(c.CategoryWeights) > 0 {
		rules, err := c.rules()
		if err != nil {
			return nil, err
		}
		weights, err := c.categoryWeights()
		if err != nil {
			return nil, err
		}
		table, err = NewThresholdTable(rules, weights)
		if err != nil {
			return nil, err
		}
	}

	adjustments := DefaultAdjustmentTable()
	if len(c.Languages) > 0 {
		byLang := make(map[string]Adjustment, len(c.Languages))
		for code, lc := range c.Languages {
			if !IsSupportedLanguage(code) {
				return nil, newError(KindConfiguration, "adjustment for unsupported language %q", code)
			}
			byLang[code] = Adjustment{
				ThresholdShifts: lc.ThresholdShifts,
				ProbabilityBias: lc.ProbabilityBias,
			}
		}
		adjustments = NewAdjustmentTable(byLang)
	}

	return NewDetectorWithTables(table, adjustments)
}

func (c *Config) rules() ([]Rule, error) {
	if len(c.Rules) == 0 {
		return defaultRules, nil
	}
	rules := make([]Rule, len(c.Rules))
	for i, rc := range c.Rules {
		category, err := parseCategory(rc.Category)
		if err != nil {
			return nil, wrapError(KindConfiguration, err, "rule "+rc.Name)
		}
		rules[i] = Rule{
			Name:       rc.Name,
			Feature:    rc.Feature,
			Comparator: Comparator(rc.Comparator),
			Threshold:  rc.Threshold,
			Category:   category,
			Weight:     rc.Weight,
			Indicator:  rc.Indicator,
			Direction:  Direction(rc.Direction),
		}
	}
	return rules, nil
}

func (c *Config) categoryWeights() (map[Category]float64, error) {
	if len(c.CategoryWeights) == 0 {
		return defaultCategoryWeights, nil
	}
	weights := make(map[Category]float64, len(c.CategoryWeights))
	for name, w := range c.CategoryWeights {
		category, err := parseCategory(name)
		if err != nil {
			return nil, wrapError(KindConfiguration, err, "category weights")
		}
		weights[category] = w
	}
	return weights, nil
}
