package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"chessmatch/internal/client/api"
	"chessmatch/internal/client/display"
)

type Session interface {
	GetAPIBaseURL() string
	SetAPIBaseURL(string)
	GetClient() *api.Client
	IsVerbose() bool
	GetColor() string
	SetColor(string)
	GetPieces() []string
	SetPieces([]string)
	GetLimit() int
	SetLimit(int)
	GetEloBand() (*int, *int)
	SetEloBand(*int, *int)
	GetLastResults() []string
	SetLastResults([]string)
	SearchRequest(fen string) *api.SimilarRequest
}

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  Session
	commands map[string]*Command
	out      io.Writer
}

func NewRegistry(session Session) *Registry {
	return NewRegistryWithOutput(session, os.Stdout)
}

// NewRegistryWithOutput creates a registry that writes command output to out
func NewRegistryWithOutput(session Session, out io.Writer) *Registry {
	r := &Registry{
		session:  session,
		commands: make(map[string]*Command),
		out:      out,
	}

	// Register all commands
	r.registerSearchCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     r.exitHandler,
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line, reporting failures instead of returning them
func (r *Registry) Execute(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmdName := parts[0]
	args := parts[1:]

	cmd, exists := r.commands[cmdName]
	if !exists {
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", display.Red, cmdName, display.Reset)
		fmt.Fprintf(r.out, "Type 'help' for available commands\n")
		return
	}

	r.session.GetClient().SetVerbose(r.session.IsVerbose())

	if err := cmd.Handler(r.session, args); err != nil {
		fmt.Fprintf(r.out, "%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
}

func (r *Registry) helpHandler(s Session, args []string) error {
	if len(args) > 0 {
		// Show help for specific command
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(r.out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(r.out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(r.out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Fprintf(r.out, "\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)

	groups := []struct {
		title string
		names []string
	}{
		{"Search Commands", []string{"search", "decode", "position", "game"}},
		{"Search Settings", []string{"color", "pieces", "limit", "elo"}},
		{"Utility Commands", []string{"health", "url", "raw", "clear", "help", "exit"}},
	}

	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		fmt.Fprintf(r.out, "%s%s:%s\n", display.Yellow, g.title, display.Reset)
		for _, name := range g.names {
			cmd, exists := r.commands[name]
			if !exists {
				continue
			}
			shortPart := ""
			if cmd.ShortName != "" {
				shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
			}
			fmt.Fprintf(r.out, "  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
		}
	}

	fmt.Fprintf(r.out, "\nType 'help <command>' for detailed usage\n")
	fmt.Fprintf(r.out, "Add '-v' to any command for verbose output\n")
	return nil
}

func (r *Registry) exitHandler(s Session, args []string) error {
	fmt.Fprintf(r.out, "%sGoodbye!%s\n", display.Cyan, display.Reset)
	os.Exit(0)
	return nil
}
