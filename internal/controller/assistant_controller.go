package controller

import (
	"bufio"
	"errors"

	"github.com/sam-evolv/property-assistant-sub010/internal/dto"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/serverutils"
	"github.com/sam-evolv/property-assistant-sub010/internal/service"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/stream"
	"github.com/sam-evolv/property-assistant-sub010/pkg/store"

	"github.com/gofiber/fiber/v2"
)

const ContentTypeNDJSON = "application/x-ndjson"

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Layers(ctx *fiber.Ctx) error
	Exchanges(ctx *fiber.Ctx) error
}

type assistantController struct {
	service   service.IAssistantService
	jwtSecret string
	logger    logger.ILogger
}

func NewAssistantController(service service.IAssistantService, jwtSecret string, log logger.ILogger) IAssistantController {
	return &assistantController{
		service:   service,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Use(serverutils.ScopeMiddleware(c.jwtSecret))
	h.Post("/chat", c.Chat)
	h.Get("/layers", c.Layers)
	h.Get("/exchanges", c.Exchanges)
}

// Chat streams the answer as NDJSON. Every error returned from here is sent
// as a normal JSON response, since nothing has been written yet; once the
// body stream starts, failures travel as Error frames.
func (c *assistantController) Chat(ctx *fiber.Ctx) error {
	scope, err := serverutils.ScopeFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	fs, err := c.service.Ask(ctx.UserContext(), scope, &req)
	if err != nil {
		return mapAskError(err)
	}

	ctx.Set(fiber.HeaderContentType, ContentTypeNDJSON)
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if err := stream.WriteNDJSON(w, w.Flush, fs); err != nil {
			// Usually the client went away; the stream is already closed.
			c.logger.Debug("ASSISTANT", "Stream write stopped", map[string]interface{}{
				"tenant_id": scope.TenantID,
				"error":     err.Error(),
			})
		}
	})
	return nil
}

func mapAskError(err error) error {
	switch {
	case errors.Is(err, service.ErrDevelopmentNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Development not found")
	case errors.Is(err, service.ErrInvalidDevelopment):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid development id")
	case errors.Is(err, service.ErrScopeUnverified):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Development data is temporarily unavailable")
	case errors.Is(err, store.ErrMissingTenant):
		return serverutils.ErrUnauthorized
	default:
		return err
	}
}

func (c *assistantController) Layers(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get assistant layers", c.service.Layers()))
}

func (c *assistantController) Exchanges(ctx *fiber.Ctx) error {
	scope, err := serverutils.ScopeFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.GetExchangesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Exchanges(ctx.UserContext(), scope, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get assistant exchanges", res))
}
