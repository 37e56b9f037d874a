package controller

import (
	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/pkg/serverutils"
	"haley-companion-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatSessionController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type chatSessionController struct {
	service   service.IChatSessionService
	requester *serverutils.Requester
}

func NewChatSessionController(service service.IChatSessionService, requester *serverutils.Requester) IChatSessionController {
	return &chatSessionController{service: service, requester: requester}
}

func (c *chatSessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Get("/", c.List)
	h.Post("/", c.Create)
	h.Put("/:id", c.Rename)
	h.Delete("/:id", c.Delete)
}

func (c *chatSessionController) List(ctx *fiber.Ctx) error {
	userId, err := c.requester.Resolve(ctx, ctx.Query("userId"))
	if err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Sessions", res))
}

func (c *chatSessionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	userId, err := c.requester.Resolve(ctx, req.UserId)
	if err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Session created", res))
}

func (c *chatSessionController) Rename(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "id", "session")
	if err != nil {
		return err
	}
	userId, err := c.requester.Resolve(ctx, ctx.Query("userId"))
	if err != nil {
		return err
	}

	var req dto.UpdateSessionRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Rename(ctx.UserContext(), id, userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session updated", res))
}

func (c *chatSessionController) Delete(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "id", "session")
	if err != nil {
		return err
	}
	userId, err := c.requester.Resolve(ctx, ctx.Query("userId"))
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), id, userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}
