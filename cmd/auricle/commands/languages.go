package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auricle-labs/auricle/pkg/voicedetect"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported language hints",
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range voicedetect.SupportedLanguages {
			marker := " "
			if l.Code == voicedetect.DefaultLanguage {
				marker = "*"
			}
			fmt.Printf("%s %-10s %s (%s)\n", marker, l.Code, l.Name, l.NativeName)
		}
		fmt.Println("\n* default")
	},
}
