package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pyittinehtaung/pth-client/internal/service/upload"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Analyze a screenshot for scam indicators",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		report, err := newClient(cfg).Upload(cmd.Context(), args[0], f)
		if err != nil {
			return err
		}
		fmt.Println(upload.FormatReport(report))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
