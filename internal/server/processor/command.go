package processor

import (
	"chessmatch/internal/server/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdFindSimilar CommandType = iota
	CmdDecodePosition
	CmdGetPosition
	CmdGetGame
)

// Command is a unified structure for all processor operations
type Command struct {
	Type CommandType
	ID   string // Position or game id for lookups
	Args any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewFindSimilarCommand(req core.SimilarRequest) Command {
	return Command{
		Type: CmdFindSimilar,
		Args: req,
	}
}

func NewDecodePositionCommand(req core.DecodeRequest) Command {
	return Command{
		Type: CmdDecodePosition,
		Args: req,
	}
}

func NewGetPositionCommand(positionID string) Command {
	return Command{
		Type: CmdGetPosition,
		ID:   positionID,
	}
}

func NewGetGameCommand(gameID string) Command {
	return Command{
		Type: CmdGetGame,
		ID:   gameID,
	}
}
