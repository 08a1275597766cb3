package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"chessmatch/internal/client/display"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server and storage health",
		Usage:       "health",
		Handler:     r.healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Set API base URL",
		Usage:       "url [apiUrl]",
		Handler:     r.urlHandler,
	})

	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send raw API request",
		Usage:       "raw <method> <path> [json-body]",
		Handler:     r.rawRequestHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
}

func (r *Registry) healthHandler(s Session, args []string) error {
	resp, err := s.GetClient().Health()
	if err != nil {
		return err
	}

	storageColor := display.Green
	if resp.Storage != "ok" {
		storageColor = display.Red
	}

	fmt.Fprintf(r.out, "%sServer Health:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(r.out, "  Status:  %s\n", resp.Status)
	fmt.Fprintf(r.out, "  Time:    %s\n", time.Unix(resp.Time, 0).Format("2006-01-02 15:04:05"))
	if resp.Storage != "" {
		fmt.Fprintf(r.out, "  Storage: %s%s%s\n", storageColor, resp.Storage, display.Reset)
	}

	return nil
}

func (r *Registry) urlHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Current API URL: %s\n", s.GetAPIBaseURL())
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	s.SetAPIBaseURL(url)

	fmt.Fprintf(r.out, "%sAPI URL set to: %s%s\n", display.Cyan, url, display.Reset)
	return nil
}

func (r *Registry) rawRequestHandler(s Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <method> <path> [json-body]")
	}

	method := strings.ToUpper(args[0])
	path := args[1]

	body := ""
	if len(args) > 2 {
		body = strings.Join(args[2:], " ")
	}

	return s.GetClient().RawRequest(method, path, body)
}

func clearHandler(s Session, args []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
