package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// RegisterCommand represents the register command
type RegisterCommand struct {
	root     *RootCommand
	cmd      *cobra.Command
	password string
}

// NewRegisterCommand creates a new register command
func NewRegisterCommand(root *RootCommand) *RegisterCommand {
	r := &RegisterCommand{
		root: root,
	}

	r.cmd = &cobra.Command{
		Use:   "register [username] [email]",
		Short: "Create an account on an authr server",
		Long: `Create an account and log in with it.

Missing values are asked for interactively.

Example:
  authr register alice alice@example.com`,
		Args: cobra.MaximumNArgs(2),
		RunE: r.Run,
	}
	r.cmd.Flags().StringVarP(&r.password, "password", "p", "", "Password (prompted when omitted)")

	return r
}

// Command returns the underlying cobra command
func (r *RegisterCommand) Command() *cobra.Command {
	return r.cmd
}

// Run executes the register command
func (r *RegisterCommand) Run(cmd *cobra.Command, args []string) error {
	var username, email string
	if len(args) > 0 {
		username = args[0]
	}
	if len(args) > 1 {
		email = args[1]
	}
	if err := askIfEmpty(&username, &survey.Input{Message: "Username:"}); err != nil {
		return err
	}
	if err := askIfEmpty(&email, &survey.Input{Message: "Email:"}); err != nil {
		return err
	}
	password := r.password
	if password == "" {
		var confirm string
		if err := askIfEmpty(&password, &survey.Password{Message: "Password:"}); err != nil {
			return err
		}
		if err := askIfEmpty(&confirm, &survey.Password{Message: "Repeat password:"}); err != nil {
			return err
		}
		if confirm != password {
			return fmt.Errorf("passwords do not match")
		}
	}

	user, err := r.root.Container().AuthService().Register(cmd.Context(), username, email, password)
	if err != nil {
		return err
	}
	if user.AccessToken == "" {
		fmt.Printf("✓ Registered %s. Log in with: authr login %s\n", username, username)
		return nil
	}
	if err := rememberAPIURL(r.root); err != nil {
		return err
	}
	fmt.Printf("✓ Registered and logged in as %s\n", user.Username)
	return nil
}
