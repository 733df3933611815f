package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// StatusCommand represents the status command
type StatusCommand struct {
	root *RootCommand
	cmd  *cobra.Command
}

// NewStatusCommand creates a new status command
func NewStatusCommand(root *RootCommand) *StatusCommand {
	s := &StatusCommand{
		root: root,
	}

	s.cmd = &cobra.Command{
		Use:   "status",
		Short: "Show the local session",
		Long: `Show the stored user and the claims of the stored access token.

The server is not contacted; an expired access token is refreshed on the next call.

Examples:
  authr status
  authr status -o json`,
		Args: cobra.NoArgs,
		RunE: s.Run,
	}

	return s
}

// Command returns the underlying cobra command
func (s *StatusCommand) Command() *cobra.Command {
	return s.cmd
}

// Run executes the status command
func (s *StatusCommand) Run(cmd *cobra.Command, args []string) error {
	status, err := s.root.Container().AuthService().Status()
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		return outputJSON(status)
	}

	if !status.LoggedIn || status.User == nil {
		fmt.Println("Not logged in.")
		fmt.Println("\nLog in with: authr login <username>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Server:\t%s\n", status.APIURL)
	fmt.Fprintf(w, "User:\t%s\n", status.User.Username)
	if status.User.Email != "" {
		fmt.Fprintf(w, "Email:\t%s\n", status.User.Email)
	}
	if len(status.User.Roles) > 0 {
		fmt.Fprintf(w, "Roles:\t%s\n", strings.Join(status.User.Roles, ", "))
	}
	if status.Claims != nil && !status.Claims.ExpiresAt.IsZero() {
		state := "valid"
		if status.Expired {
			state = "expired, refreshed on next request"
		}
		fmt.Fprintf(w, "Access token:\t%s (%s)\n", status.Claims.ExpiresAt.Format(time.RFC3339), state)
	}
	return w.Flush()
}
