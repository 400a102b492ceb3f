package ask

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucial707/educompanion/cmd/cli/client"
)

// InitAsk registers the "ask" command on the root command.
func InitAsk(rootCmd *cobra.Command) {
	rootCmd.AddCommand(askCmd())
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask the AI tutor a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Answer string `json:"answer"`
			}
			question := strings.Join(args, " ")
			if err := client.New().Do("POST", "/api/ask", map[string]string{"question": question}, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Answer)
			return nil
		},
	}
}
