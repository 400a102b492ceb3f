package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/crucial707/educompanion/cmd/cli/client"
	"github.com/crucial707/educompanion/cmd/cli/config"
	"github.com/crucial707/educompanion/cmd/cli/output"
)

// InitAuth registers account commands (register, login, logout, whoami) on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(registerCmd(), loginCmd(), logoutCmd(), whoamiCmd())
}

// ==========================
// Register
// ==========================
func registerCmd() *cobra.Command {
	var username, email, grade, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an EduCompanion account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" {
				return errors.New("--username and --email are required")
			}
			if password == "" {
				var err error
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}

			payload := map[string]string{
				"username": username,
				"password": password,
				"email":    email,
				"grade":    grade,
			}
			if err := client.New().Do("POST", "/api/register", payload, nil); err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "User registered successfully! You can now login.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to register")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&grade, "grade", "", "School grade (optional)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("--username is required")
			}
			if password == "" {
				var err error
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}

			var resp struct {
				User config.User `json:"user"`
			}
			err := client.New().Do("POST", "/api/login", map[string]string{
				"username": username,
				"password": password,
			}, &resp)
			if err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}

			sess, err := config.LoadSession()
			if err != nil {
				return err
			}
			sess.User = &resp.User
			if err := config.SaveSession(sess); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Login successful. Welcome, %s!\n", resp.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The server clears unconditionally; a failure here still drops the local copy.
			apiErr := client.New().Do("POST", "/api/logout", nil, nil)

			existed, err := config.ClearSession()
			if err != nil {
				return err
			}
			if !existed {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}
			if apiErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: server logout failed: %v\n", apiErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully.")
			return nil
		},
	}
}

// ==========================
// Who Am I
// ==========================
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := config.LoadSession()
			if err != nil {
				return err
			}
			if sess.User == nil {
				return errors.New("not logged in")
			}
			output.RenderTable(cmd.OutOrStdout(),
				[]string{"Username", "Email", "Grade"},
				[][]any{{sess.User.Username, sess.User.Email, sess.User.Grade}})
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and reads a plain line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}
