package controller

import (
	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/pkg/serverutils"
	"haley-companion-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatLimitController interface {
	RegisterRoutes(r fiber.Router)
	GetQuota(ctx *fiber.Ctx) error
	Increment(ctx *fiber.Ctx) error
	SetPlan(ctx *fiber.Ctx) error
}

type chatLimitController struct {
	service   service.IQuotaService
	requester *serverutils.Requester
}

func NewChatLimitController(service service.IQuotaService, requester *serverutils.Requester) IChatLimitController {
	return &chatLimitController{service: service, requester: requester}
}

func (c *chatLimitController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat-limits")
	h.Get("/:userId", c.GetQuota)
	h.Post("/:userId/increment", c.Increment)
	h.Put("/:userId/plan", c.SetPlan)
}

func (c *chatLimitController) user(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := serverutils.ParseUUIDParam(ctx, "userId", "user")
	if err != nil {
		return uuid.Nil, err
	}
	return c.requester.Resolve(ctx, id.String())
}

func (c *chatLimitController) GetQuota(ctx *fiber.Ctx) error {
	userId, err := c.user(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetQuotaState(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Quota state", res))
}

// Increment counts one message against the quota. It checks and counts in
// one step, so a user at the cap gets 429 instead of an over-count.
func (c *chatLimitController) Increment(ctx *fiber.Ctx) error {
	userId, err := c.user(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Consume(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Message counted", &dto.IncrementResponse{
		Success: true,
		Quota:   res,
	}))
}

func (c *chatLimitController) SetPlan(ctx *fiber.Ctx) error {
	userId, err := c.user(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdatePlanRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.SetPlan(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan updated", res))
}
