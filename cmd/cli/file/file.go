package file

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/educompanion/cmd/cli/client"
	"github.com/crucial707/educompanion/cmd/cli/output"
)

// InitFile registers the "file" command group on the root command.
func InitFile(rootCmd *cobra.Command) {
	fileCmd := &cobra.Command{
		Use:   "file",
		Short: "Read or replace your EduCompanion document",
	}
	fileCmd.AddCommand(getCmd(), setCmd())
	rootCmd.AddCommand(fileCmd)
}

// ==========================
// Get
// ==========================
func getCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print your document",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				File struct {
					Content   string    `json:"content"`
					UpdatedAt time.Time `json:"updated_at"`
				} `json:"file"`
			}
			if err := client.New().Do("GET", "/api/user/file", nil, &resp); err != nil {
				return err
			}

			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), resp.File.Content)
				return nil
			}
			output.RenderTable(cmd.OutOrStdout(),
				[]string{"Updated", "Content"},
				[][]any{{resp.File.UpdatedAt.Local().Format(time.RFC3339), resp.File.Content}})
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the content")
	return cmd
}

// ==========================
// Set
// ==========================
func setCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "set [content]",
		Short: "Replace your document with content or the contents of --from",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			switch {
			case from != "" && len(args) > 0:
				return errors.New("pass content or --from, not both")
			case from != "":
				data, err := os.ReadFile(from)
				if err != nil {
					return err
				}
				content = string(data)
			case len(args) == 1:
				content = args[0]
			default:
				return errors.New("content or --from is required")
			}

			if err := client.New().Do("POST", "/api/user/file", map[string]string{"content": content}, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "File updated successfully.")
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Read the content from this file")
	return cmd
}
