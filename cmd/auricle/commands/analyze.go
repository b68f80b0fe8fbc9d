package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/auricle-labs/auricle/pkg/audio/wav"
	"github.com/auricle-labs/auricle/pkg/voicedetect"
)

var analyzeFlags struct {
	language string
	features bool
	config   string
	asJSON   bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.wav> [more.wav ...]",
	Short: "Classify one or more WAV files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeFlags.language != "" && !voicedetect.IsSupportedLanguage(analyzeFlags.language) {
			return fmt.Errorf("unsupported language %q (see `auricle languages`)", analyzeFlags.language)
		}
		detector, err := buildDetector(analyzeFlags.config)
		if err != nil {
			return err
		}

		var firstErr error
		for _, path := range args {
			if err := analyzeFile(detector, path); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		return firstErr
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFlags.language, "language", "", "language hint (default english)")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.features, "features", false, "include the extracted feature values")
	analyzeCmd.Flags().StringVar(&analyzeFlags.config, "config", "", "detection config YAML (optional)")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.asJSON, "json", false, "print the raw JSON result")
}

func analyzeFile(detector *voicedetect.Detector, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	audio, err := wav.Decode(data)
	if err != nil {
		return err
	}

	res, err := detector.Detect(audio.Samples, audio.SampleRate, audio.Channels,
		analyzeFlags.language, analyzeFlags.features)
	if err != nil {
		return err
	}

	if analyzeFlags.asJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	printResult(path, res)
	return nil
}

var (
	aiStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f87"))
	humanStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	featureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87d7ff"))
)

func printResult(path string, res *voicedetect.DetectionResult) {
	verdict := humanStyle.Render("HUMAN")
	if res.Classification == voicedetect.ClassificationAI {
		verdict = aiStyle.Render("AI")
	}

	fmt.Printf("%s  %s  %s\n", labelStyle.Render(path), verdict,
		dimStyle.Render(fmt.Sprintf("%.1f%% confidence", res.ConfidenceScore*100)))
	fmt.Printf("  %s %s\n", labelStyle.Render("language:"), res.LanguageDetected)
	fmt.Printf("  %s %.2fs audio, %.2fms processing\n", labelStyle.Render("timing:  "),
		res.AudioDurationSeconds, res.ProcessingTimeMS)
	fmt.Printf("  %s\n", dimStyle.Render(res.Explanation))

	if res.DetailedAnalysis != nil {
		names := make([]string, 0, len(res.DetailedAnalysis.Features))
		for name := range res.DetailedAnalysis.Features {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("  %s\n", labelStyle.Render("features:"))
		for _, name := range names {
			fmt.Printf("    %s %v\n", featureStyle.Render(name+":"), res.DetailedAnalysis.Features[name])
		}
	}
	fmt.Println()
}
