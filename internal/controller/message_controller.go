package controller

import (
	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/pkg/serverutils"
	"haley-companion-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IMessageController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type messageController struct {
	service   service.IMessageService
	requester *serverutils.Requester
}

func NewMessageController(service service.IMessageService, requester *serverutils.Requester) IMessageController {
	return &messageController{service: service, requester: requester}
}

func (c *messageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/messages")
	h.Get("/", c.List)
	h.Post("/", c.Create)
	h.Delete("/:id", c.Delete)
}

// List answers ?userId=&limit=&offset= with the user's history and
// ?sessionId= with one conversation.
func (c *messageController) List(ctx *fiber.Ctx) error {
	var q dto.ListMessagesQuery
	if err := ctx.QueryParser(&q); err != nil {
		return apperror.Validation("limit and offset must be integers")
	}

	filter := service.MessageFilter{Limit: q.Limit, Offset: q.Offset}

	userId, err := c.requester.ResolveOptional(ctx, q.UserId)
	if err != nil {
		return err
	}
	filter.UserId = userId

	if q.SessionId != "" {
		sessionId, err := uuid.Parse(q.SessionId)
		if err != nil {
			return apperror.Validation("sessionId must be a valid UUID")
		}
		filter.SessionId = &sessionId
	}

	res, err := c.service.List(ctx.UserContext(), filter)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Messages", res))
}

func (c *messageController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateMessageRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	userId, err := c.requester.ResolveOptional(ctx, req.UserId)
	if err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Message created", res))
}

func (c *messageController) Delete(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "id", "message")
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
	return ctx.JSON(serverutils.SuccessResponse[any]("Message deleted", nil))
}
