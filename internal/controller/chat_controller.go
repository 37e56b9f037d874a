package controller

import (
	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/pkg/serverutils"
	"haley-companion-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
}

type chatController struct {
	service   service.IChatService
	requester *serverutils.Requester
}

func NewChatController(service service.IChatService, requester *serverutils.Requester) IChatController {
	return &chatController{service: service, requester: requester}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("/send", c.Send)
}

// Send stores a user turn if the daily quota allows it. A refused turn is
// answered with 429 and nothing is stored.
func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	userId, err := c.requester.Resolve(ctx, req.UserId)
	if err != nil {
		return err
	}

	res, err := c.service.Send(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Message sent", res))
}
