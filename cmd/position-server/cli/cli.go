package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"chessmatch/internal/board"
	"chessmatch/internal/ingest"
	"chessmatch/internal/server/service"
	"chessmatch/internal/storage"

	"golang.org/x/term"
)

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
)

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	return run(context.Background(), args, os.Stdout)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, load, query, search, history")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:], out)
	case "delete":
		return runDelete(args[1:], out)
	case "load":
		return runLoad(ctx, args[1:], out)
	case "query":
		return runQuery(ctx, args[1:], out)
	case "search":
		return runSearch(ctx, args[1:], out)
	case "history":
		return runHistory(ctx, args[1:], out)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// isTerminal reports whether out is an interactive terminal
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func highlight(out io.Writer, color, text string) string {
	if !isTerminal(out) {
		return text
	}
	return color + text + colorReset
}

// openStore opens an existing database and applies pending migrations
func openStore(path string) (*storage.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := store.InitDB(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func runInit(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	version, err := store.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	fmt.Fprintf(out, "Database initialized at: %s (schema %s)\n", *path, version)
	return nil
}

func runDelete(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(out, "Database deleted: %s\n", *path)
	return nil
}

func runLoad(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	file := fs.String("file", "", "JSONL game file, - for stdin (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *file == "" {
		return fmt.Errorf("input file required")
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	var in io.Reader = os.Stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	stats, err := ingest.LoadJSONL(ctx, in, store)
	if err != nil {
		return fmt.Errorf("load failed after %d game(s): %w", stats.Games, err)
	}

	total, err := store.CountPositions(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Loaded %d game(s), %d position(s), skipped %d record(s)\n",
		stats.Games, stats.Positions, stats.Skipped)
	fmt.Fprintf(out, "Corpus now holds %d position(s)\n", total)
	return nil
}

func runQuery(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	gameID := fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	player := fs.String("player", "", "Player name to filter (optional, * for all)")
	minElo := fs.Int("min-elo", 0, "Both ratings at least this (optional)")
	maxElo := fs.Int("max-elo", 0, "Both ratings at most this (optional)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(ctx, storage.GameFilter{
		GameID: *gameID,
		Player: *player,
		MinElo: *minElo,
		MaxElo: *maxElo,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	// Print results in tabular format
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tWhite\tBlack\tResult\tECO\tDate")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s (%d)\t%s (%d)\t%s\t%s\t%s\n",
			shortID(g.ID),
			orNone(g.WhiteName), g.WhiteElo,
			orNone(g.BlackName), g.BlackElo,
			g.Result, g.ECO, g.Date,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

func runSearch(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	fen := fs.String("fen", "", "Reference position FEN (required)")
	colorName := fs.String("color", "white", "Side whose pieces are compared")
	pieceList := fs.String("pieces", "", "Comma separated piece kinds, e.g. pawn,knight")
	limit := fs.Int("limit", 0, "Maximum results (default from server config)")
	minElo := fs.Int("min-elo", -1, "Lower rating bound (default 500)")
	maxElo := fs.Int("max-elo", -1, "Upper rating bound (default 2500)")
	record := fs.Bool("record", true, "Append the search to the search log")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *fen == "" {
		return fmt.Errorf("fen required")
	}

	color, err := board.ParseColor(*colorName)
	if err != nil {
		return err
	}

	var pieces []board.PieceKind
	for _, name := range strings.Split(*pieceList, ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		k, err := board.ParsePieceKind(name)
		if err != nil {
			return err
		}
		pieces = append(pieces, k)
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, err := service.New(store, service.Config{RecordSearches: *record, MaxLimit: 1000})
	if err != nil {
		return err
	}

	req := svc.NewRequest(color, pieces...)
	if *limit > 0 {
		req.Limit = *limit
	}
	if *minElo >= 0 {
		req.MinElo = *minElo
	}
	if *maxElo >= 0 {
		req.MaxElo = *maxElo
	}

	report, err := svc.FindSimilarByFEN(ctx, *fen, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(report.Results) == 0 {
		fmt.Fprintln(out, "No similar positions found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Rank\tScore\tGame ID\tMove\tWhite\tBlack\tFEN")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range report.Results {
		white, black := "-", "-"
		if r.Game != nil {
			white = fmt.Sprintf("%s (%d)", orNone(r.Game.WhiteName), r.Game.WhiteElo)
			black = fmt.Sprintf("%s (%d)", orNone(r.Game.BlackName), r.Game.BlackElo)
		}
		fen := ""
		if r.Position != nil {
			fen = r.Position.FEN
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			i+1,
			highlight(out, colorGreen, fmt.Sprintf("%.3f", r.Score)),
			shortID(r.GameID),
			r.MoveNumber,
			white, black, fen,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d result(s) from %d candidate(s)\n", len(report.Results), report.Candidates)
	return nil
}

func runHistory(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	limit := fs.Int("limit", 20, "Number of searches to show")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.QuerySearches(ctx, *limit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No searches recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "When\tColor\tFeatures\tElo\tResults\tCandidates\tTime\tFEN")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d-%d\t%d\t%d\t%dms\t%s\n",
			r.SearchedUTC.Format("2006-01-02 15:04:05"),
			r.Color,
			highlight(out, colorCyan, orNone(r.Features)),
			r.MinElo, r.MaxElo,
			r.Results, r.Candidates, r.DurationMS,
			r.FEN,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nShowing %d search(es)\n", len(records))
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:8] + "..."
	}
	return id
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
