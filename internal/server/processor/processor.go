package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"
	"unicode"

	"chessmatch/internal/board"
	"chessmatch/internal/matching"
	"chessmatch/internal/server/core"
	"chessmatch/internal/server/service"
)

// FEN validation regex
var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb] [KQkq-]+ [a-h1-8-]+ \d+ \d+$`)

// Processor handles command execution between the transport and the service
type Processor struct {
	svc   *service.Service
	queue *SearchQueue
}

// New creates a processor whose searches run on workers goroutines
func New(svc *service.Service, workers, queueSize int) *Processor {
	return &Processor{
		svc:   svc,
		queue: NewSearchQueue(svc.FindSimilarByFEN, workers, queueSize),
	}
}

func (p *Processor) Execute(ctx context.Context, cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdFindSimilar:
		return p.handleFindSimilar(ctx, cmd)
	case CmdDecodePosition:
		return p.handleDecodePosition(cmd)
	case CmdGetPosition:
		return p.handleGetPosition(ctx, cmd)
	case CmdGetGame:
		return p.handleGetGame(ctx, cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// isFENSafe rejects control characters and anything not shaped like a FEN
func (p *Processor) isFENSafe(fen string) bool {
	for _, r := range fen {
		if unicode.IsControl(r) && r != ' ' {
			return false
		}
	}

	return fenPattern.MatchString(fen)
}

// handleFindSimilar converts the request and runs it on the search queue
func (p *Processor) handleFindSimilar(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.SimilarRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	if !p.isFENSafe(args.FEN) {
		return p.errorResponse("invalid FEN format or characters", core.ErrInvalidFEN)
	}

	req, err := p.buildRequest(args.Request)
	if err != nil {
		return p.errorFrom(err)
	}

	report, err := p.queue.Run(ctx, args.FEN, req)
	if err != nil {
		return p.errorFrom(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    core.NewSimilarResponse(report),
	}
}

// buildRequest derives a matching request, absent fields take the service defaults
func (p *Processor) buildRequest(sr core.SearchRequest) (matching.Request, error) {
	color, err := board.ParseColor(sr.Color)
	if err != nil {
		return matching.Request{}, &matching.InvalidRequestError{Field: "color", Reason: err.Error()}
	}

	pieces := make([]board.PieceKind, 0, len(sr.SelectedPieces))
	for _, name := range sr.SelectedPieces {
		k, err := board.ParsePieceKind(name)
		if err != nil {
			return matching.Request{}, &matching.InvalidRequestError{Field: "selectedPieces", Reason: err.Error()}
		}
		pieces = append(pieces, k)
	}

	req := p.svc.NewRequest(color, pieces...)
	if sr.Limit != 0 {
		req.Limit = sr.Limit
	}
	if sr.MinElo != nil {
		req.MinElo = *sr.MinElo
	}
	if sr.MaxElo != nil {
		req.MaxElo = *sr.MaxElo
	}
	return req, nil
}

func (p *Processor) handleDecodePosition(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.DecodeRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	pos, err := p.svc.DecodePosition(args.FEN)
	if err != nil {
		return p.errorFrom(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    core.NewPositionResponse(&pos),
	}
}

func (p *Processor) handleGetPosition(ctx context.Context, cmd Command) ProcessorResponse {
	pos, err := p.svc.GetPosition(ctx, cmd.ID)
	if err != nil {
		return p.errorFrom(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    core.NewPositionResponse(pos),
	}
}

func (p *Processor) handleGetGame(ctx context.Context, cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(ctx, cmd.ID)
	if err != nil {
		return p.errorFrom(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    core.NewGameResponse(g),
	}
}

// errorFrom maps service errors onto API error codes
func (p *Processor) errorFrom(err error) ProcessorResponse {
	var (
		malformed   *board.MalformedInputError
		invalid     *matching.InvalidRequestError
		unavailable *matching.StoreUnavailableError
	)

	switch {
	case errors.As(err, &malformed):
		return p.errorDetails("invalid FEN", core.ErrInvalidFEN, malformed.Reason)
	case errors.As(err, &invalid):
		return p.errorDetails("invalid request", core.ErrInvalidRequest, invalid.Error())
	case errors.Is(err, matching.ErrNotFound):
		return p.errorResponse("not found", core.ErrNotFound)
	case errors.As(err, &unavailable):
		log.Printf("Search failed: %v", err)
		return p.errorResponse("storage unavailable", core.ErrStoreUnavailable)
	case errors.Is(err, ErrQueueFull), errors.Is(err, ErrQueueShutdown):
		return p.errorDetails("server busy", core.ErrResourceLimit, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return p.errorDetails("request cancelled", core.ErrInternalError, err.Error())
	default:
		log.Printf("Unexpected processor error: %v", err)
		return p.errorResponse(fmt.Sprintf("internal error: %v", err), core.ErrInternalError)
	}
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return p.errorDetails(message, code, "")
}

func (p *Processor) errorDetails(message, code, details string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error:   message,
			Code:    code,
			Details: details,
		},
	}
}

// Close drains the search queue
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}
