package progress

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/crucial707/educompanion/cmd/cli/client"
	"github.com/crucial707/educompanion/cmd/cli/output"
)

// InitProgress registers the "progress" command group on the root command.
func InitProgress(rootCmd *cobra.Command) {
	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "Read or replace your learning progress",
	}
	progressCmd.AddCommand(getCmd(), setCmd())
	rootCmd.AddCommand(progressCmd)
}

// ==========================
// Get
// ==========================
func getCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show your progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Progress map[string]any `json:"progress"`
			}
			if err := client.New().Do("GET", "/api/user/progress", nil, &resp); err != nil {
				return err
			}

			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), resp.Progress)
			}

			keys := make([]string, 0, len(resp.Progress))
			for k := range resp.Progress {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			rows := make([][]any, 0, len(keys))
			for _, k := range keys {
				v, err := json.Marshal(resp.Progress[k])
				if err != nil {
					return err
				}
				rows = append(rows, []any{k, string(v)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Key", "Value"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// ==========================
// Set
// ==========================
func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <json-object>",
		Short: `Replace your progress, e.g. edu progress set '{"math":{"level":2}}'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var progress map[string]any
			if err := json.Unmarshal([]byte(args[0]), &progress); err != nil || progress == nil {
				return fmt.Errorf("progress must be a JSON object")
			}

			if err := client.New().Do("POST", "/api/user/progress", map[string]any{"progress": progress}, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Progress updated.")
			return nil
		},
	}
}
