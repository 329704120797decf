package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable and healthy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := newClient(cfg).Health(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("backend is healthy")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
