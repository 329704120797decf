package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyittinehtaung/pth-client/internal/service/upload"
)

var flagAnalyzeURLs []string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Check text or links for scam indicators",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" && len(flagAnalyzeURLs) == 0 {
			return fmt.Errorf("provide text or at least one --url")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		report, err := newClient(cfg).Analyze(cmd.Context(), text, flagAnalyzeURLs)
		if err != nil {
			return err
		}
		fmt.Println(upload.FormatReport(report))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringArrayVar(&flagAnalyzeURLs, "url", nil, "URL to check (repeatable)")
	rootCmd.AddCommand(analyzeCmd)
}
