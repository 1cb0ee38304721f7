package cli

import (
	"log"

	"trivia-quiz-service/internal/config"
	"github.com/spf13/cobra"
)

// NewResetCmd erases the persisted quiz session from the configured
// store without starting the server.
func NewResetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the persisted quiz session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			store := buildSessionStore(cfg)
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			log.Printf("persisted session cleared")
			return nil
		},
	}
}
