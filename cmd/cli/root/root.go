package root

import (
	"github.com/spf13/cobra"

	"github.com/crucial707/educompanion/cmd/cli/config"
)

var apiURL string

// RootCmd is the `edu` command every subcommand hangs off.
var RootCmd = &cobra.Command{
	Use:   "edu",
	Short: "EduCompanion CLI",
	Long: `Command line client for the EduCompanion API.

Log in once with "edu login"; the session cookie is kept in
~/.educompanion_session (or EDU_SESSION_FILE) for later commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.SetAPIURL(apiURL)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (default $EDU_API_URL or http://localhost:8080)")
}

func GetRoot() *cobra.Command {
	return RootCmd
}
