package voicedetect

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "detect.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	d, err := cfg.Detector()
	if err != nil {
		t.Fatalf("Detector: %v", err)
	}
	if got := len(d.table.Rules()); got != 14 {
		t.Errorf("empty config should keep the built-in table, got %d rules", got)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
rules:
  - name: strict_jitter
    feature: jitter
    comparator: "<"
    threshold: 0.002
    category: prosodic
    weight: 3.0
    indicator: very stable pitch
    direction: ai-like
category_weights:
  prosodic: 1.0
languages:
  tamil:
    threshold_shifts:
      strict_jitter: 0.001
    probability_bias: 0.05
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	d, err := cfg.Detector()
	if err != nil {
		t.Fatalf("Detector: %v", err)
	}

	rules := d.table.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Name != "strict_jitter" || rules[0].Threshold != 0.002 || rules[0].Weight != 3.0 {
		t.Errorf("rule = %+v", rules[0])
	}

	adj := d.adjustments.For("tamil")
	if adj.ThresholdShifts["strict_jitter"] != 0.001 {
		t.Errorf("shift = %v, want 0.001", adj.ThresholdShifts["strict_jitter"])
	}
	if adj.ProbabilityBias != 0.05 {
		t.Errorf("bias = %v, want 0.05", adj.ProbabilityBias)
	}
	// Languages not named in the config get the identity adjustment.
	if en := d.adjustments.For("english"); len(en.ThresholdShifts) != 0 {
		t.Errorf("english adjustment = %+v, want identity", en)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "rules: [\n"},
		{"unknown feature", `
rules:
  - name: r1
    feature: sparkle
    comparator: "<"
    threshold: 1
    category: prosodic
    weight: 1.0
    indicator: x
    direction: ai-like
category_weights:
  prosodic: 1.0
`},
		{"unknown category", `
rules:
  - name: r1
    feature: jitter
    comparator: "<"
    threshold: 1
    category: vibes
    weight: 1.0
    indicator: x
    direction: ai-like
category_weights:
  prosodic: 1.0
`},
		{"unsupported language", `
languages:
  french:
    probability_bias: 0.1
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				_, err = cfg.Detector()
			}
			if KindOf(err) != KindConfiguration {
				t.Errorf("kind = %q, want %q (err: %v)", KindOf(err), KindConfiguration, err)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if KindOf(err) != KindConfiguration {
		t.Errorf("kind = %q, want %q", KindOf(err), KindConfiguration)
	}
}
