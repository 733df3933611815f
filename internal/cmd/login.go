package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// LoginCommand represents the login command
type LoginCommand struct {
	root     *RootCommand
	cmd      *cobra.Command
	password string
}

// NewLoginCommand creates a new login command
func NewLoginCommand(root *RootCommand) *LoginCommand {
	l := &LoginCommand{
		root: root,
	}

	l.cmd = &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate with an authr server",
		Long: `Authenticate with an authr server using username and password.

Missing username or password are asked for interactively.
After successful authentication, the issued tokens are stored locally.

Example:
  authr login alice
  authr login alice -p secret --api-url http://localhost:8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: l.Run,
	}
	l.cmd.Flags().StringVarP(&l.password, "password", "p", "", "Password (prompted when omitted)")

	return l
}

// Command returns the underlying cobra command
func (l *LoginCommand) Command() *cobra.Command {
	return l.cmd
}

// Run executes the login command
func (l *LoginCommand) Run(cmd *cobra.Command, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	}
	if err := askIfEmpty(&username, &survey.Input{Message: "Username:"}); err != nil {
		return err
	}
	password := l.password
	if err := askIfEmpty(&password, &survey.Password{Message: "Password:"}); err != nil {
		return err
	}

	container := l.root.Container()
	user, err := container.AuthService().Login(cmd.Context(), username, password)
	if err != nil {
		return err
	}
	if err := rememberAPIURL(l.root); err != nil {
		return err
	}

	fmt.Printf("✓ Logged in as %s\n", user.Username)
	return nil
}

// askIfEmpty prompts for value unless it is already set
func askIfEmpty(value *string, prompt survey.Prompt) error {
	if *value != "" {
		return nil
	}
	return survey.AskOne(prompt, value, survey.WithValidator(survey.Required))
}

// rememberAPIURL stores the server the credentials belong to
func rememberAPIURL(root *RootCommand) error {
	container := root.Container()
	if container.ConfigManager() == nil || container.Client() == nil {
		return nil
	}
	if err := container.ConfigManager().SaveAPIURL(container.Client().BaseURL()); err != nil {
		return fmt.Errorf("failed to save API URL: %w", err)
	}
	return nil
}
