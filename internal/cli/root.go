package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	sessionPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	// Local .env files hold per-deployment overrides; missing is fine.
	_ = godotenv.Load()

	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}
	envSession := os.Getenv("SESSION_PATH")

	cmd := &cobra.Command{
		Use:           "quiztour",
		Short:         "Command-line client for the quiz tournament platform",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&sessionPath, "session", envSession, "path to the session file (overrides config)")
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newResetPasswordCmd())
	cmd.AddCommand(newTournamentsCmd())
	cmd.AddCommand(newPlayCmd())
	cmd.AddCommand(newStatsCmd())
	return cmd
}
