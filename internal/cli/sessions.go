package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyittinehtaung/pth-client/internal/service/session"
	"github.com/pyittinehtaung/pth-client/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List persisted conversation sessions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		adapter, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer adapter.Close()

		sessions := session.NewStore(adapter)
		sessions.Init(cmd.Context())

		for i, sess := range sessions.Sessions() {
			marker := " "
			if sess.ID == sessions.ActiveID() {
				marker = "*"
			}
			fmt.Printf("%s %2d  %s  %-40s  %d messages\n",
				marker, i+1, sess.CreatedAt.Format("2006-01-02 15:04"), sess.Title, len(sess.Messages))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
