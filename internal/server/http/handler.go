package http

import (
	"fmt"
	"strings"
	"time"

	"chessmatch/internal/server/core"
	"chessmatch/internal/server/processor"
	"chessmatch/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// Options tunes the app; zero values take the defaults
type Options struct {
	DevMode   bool
	RateLimit int // req/sec per client
	AccessLog bool
}

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, opts Options) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	maxReq := opts.RateLimit
	if maxReq <= 0 {
		maxReq = rateLimitRate
	}
	if opts.DevMode {
		maxReq *= 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/positions/similar", h.FindSimilar)
	api.Post("/positions/decode", h.DecodePosition)
	api.Get("/positions/:positionId", h.GetPosition)
	api.Get("/games/:gameId", h.GetGame)

	return app
}

// contentTypeValidator ensures POST requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps an error code to its HTTP status
func statusFor(code string) int {
	switch code {
	case core.ErrInvalidFEN, core.ErrInvalidRequest:
		return fiber.StatusBadRequest
	case core.ErrNotFound:
		return fiber.StatusNotFound
	case core.ErrStoreUnavailable, core.ErrResourceLimit:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func respond(c *fiber.Ctx, resp processor.ProcessorResponse) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.JSON(resp.Data)
}

// validatedBody returns the body stored by validationMiddleware. A nil body
// means the error response has already been written.
func validatedBody[T any](c *fiber.Ctx) (*T, error) {
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		})
	}

	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrInternalError,
		})
	}
	return body, nil
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(core.HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Unix(),
		Storage: h.svc.GetStorageHealth().String(),
	})
}

// FindSimilar ranks stored positions against the request FEN
func (h *HTTPHandler) FindSimilar(c *fiber.Ctx) error {
	req, err := validatedBody[core.SimilarRequest](c)
	if req == nil {
		return err
	}

	return respond(c, h.proc.Execute(c.UserContext(), processor.NewFindSimilarCommand(*req)))
}

// DecodePosition returns the encoded form of a FEN without touching storage
func (h *HTTPHandler) DecodePosition(c *fiber.Ctx) error {
	req, err := validatedBody[core.DecodeRequest](c)
	if req == nil {
		return err
	}

	return respond(c, h.proc.Execute(c.UserContext(), processor.NewDecodePositionCommand(*req)))
}

// GetPosition retrieves a stored position
func (h *HTTPHandler) GetPosition(c *fiber.Ctx) error {
	positionID := c.Params("positionId")

	if !isValidUUID(positionID) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid position ID format",
			Code:    core.ErrInvalidRequest,
			Details: "position ID must be a valid UUID",
		})
	}

	return respond(c, h.proc.Execute(c.UserContext(), processor.NewGetPositionCommand(positionID)))
}

// GetGame retrieves stored game metadata
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	if !isValidGameID(gameID) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid game ID format",
			Code:    core.ErrInvalidRequest,
			Details: "game ID must be 1-64 letters, digits, '-' or '_'",
		})
	}

	return respond(c, h.proc.Execute(c.UserContext(), processor.NewGetGameCommand(gameID)))
}
