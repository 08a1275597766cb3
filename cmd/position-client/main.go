// Package main implements an interactive client for the position search API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chessmatch/internal/client/commands"
	"chessmatch/internal/client/display"
	"chessmatch/internal/client/session"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080", "Position server base URL")
	history := flag.String("history", ".chessmatch_history", "Readline history file, empty to disable")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		display.DisableColors()
	}

	s := session.New(*apiURL)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("match"),
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sPosition Search Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		// Check for verbose flag
		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		registry.Execute(line)
	}
}

// buildPrompt shows the active search settings, e.g. "match [white pawn,king 1200-1800]"
func buildPrompt(s *session.Session) string {
	colorText := display.Blue + "white" + display.Reset
	if s.Color == "black" {
		colorText = display.Red + "black" + display.Reset
	}

	parts := []string{colorText}
	if len(s.Pieces) > 0 {
		parts = append(parts, display.Magenta+strings.Join(s.Pieces, ",")+display.Reset)
	}
	if s.MinElo != nil && s.MaxElo != nil {
		parts = append(parts, fmt.Sprintf("%s%d-%d%s", display.White, *s.MinElo, *s.MaxElo, display.Reset))
	}
	if s.Limit > 0 {
		parts = append(parts, fmt.Sprintf("top %d", s.Limit))
	}

	return display.Prompt("match" + display.Yellow + " [" + display.Reset + strings.Join(parts, " ") + display.Yellow + "]")
}
