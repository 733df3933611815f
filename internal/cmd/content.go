package cmd

import (
	"fmt"
	"sort"
	"strings"

	iface "github.com/authr-project/authr-cli/internal/service/interface"
	"github.com/spf13/cobra"
)

// ContentCommands groups the commands calling protected endpoints
type ContentCommands struct {
	root *RootCommand

	boardCmd    *cobra.Command
	whoamiCmd   *cobra.Command
	sessionsCmd *cobra.Command
	todoCmd     *cobra.Command
}

// NewContentCommands creates board, whoami, sessions and todo commands
func NewContentCommands(root *RootCommand) *ContentCommands {
	c := &ContentCommands{
		root: root,
	}

	c.boardCmd = &cobra.Command{
		Use:       "board <" + strings.Join(iface.Boards, "|") + ">",
		Short:     "Fetch a content board",
		ValidArgs: iface.Boards,
		Long: `Fetch one of the test boards of the authr server.

"all" is public, the other boards require a logged in user.

Examples:
  authr board all
  authr board mod -o json`,
		Args: cobra.ExactArgs(1),
		RunE: c.runBoard,
	}

	c.whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session as seen by the server",
		Args:  cobra.NoArgs,
		RunE:  c.runWhoami,
	}

	c.sessionsCmd = &cobra.Command{
		Use:   "sessions",
		Short: "Show active sessions",
		Args:  cobra.NoArgs,
		RunE:  c.runSessions,
	}

	c.todoCmd = &cobra.Command{
		Use:   "todo",
		Short: "Manage todos",
	}
	c.todoCmd.AddCommand(&cobra.Command{
		Use:   "create <title> [body]",
		Short: "Create a todo",
		Long: `Create a todo owned by the logged in user.

Example:
  authr todo create groceries "milk, eggs"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: c.runTodoCreate,
	})

	return c
}

// Commands returns the top level commands of the group
func (c *ContentCommands) Commands() []*cobra.Command {
	return []*cobra.Command{c.boardCmd, c.whoamiCmd, c.sessionsCmd, c.todoCmd}
}

func (c *ContentCommands) service() iface.ContentService {
	return c.root.Container().ContentService()
}

func (c *ContentCommands) runBoard(cmd *cobra.Command, args []string) error {
	content, err := c.service().Board(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printContent(cmd, content)
}

func (c *ContentCommands) runWhoami(cmd *cobra.Command, args []string) error {
	content, err := c.service().Whoami(cmd.Context())
	if err != nil {
		return err
	}
	return printContent(cmd, content)
}

func (c *ContentCommands) runSessions(cmd *cobra.Command, args []string) error {
	content, err := c.service().Sessions(cmd.Context())
	if err != nil {
		return err
	}
	return printContent(cmd, content)
}

func (c *ContentCommands) runTodoCreate(cmd *cobra.Command, args []string) error {
	var body string
	if len(args) > 1 {
		body = args[1]
	}
	todo, err := c.service().CreateTodo(cmd.Context(), args[0], body)
	if err != nil {
		return err
	}
	if outputFormat(cmd) == "json" {
		return outputJSON(todo)
	}
	fmt.Printf("✓ Created todo %q for user %s\n", todo.Title, todo.UserID)
	return nil
}

// printContent prints the message followed by remaining fields in key order
func printContent(cmd *cobra.Command, content iface.Content) error {
	if outputFormat(cmd) == "json" {
		return outputJSON(content)
	}
	fmt.Println(content.Message())
	keys := make([]string, 0, len(content))
	for k := range content {
		if k == "message" || k == "code" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %v\n", k, content[k])
	}
	return nil
}
