// FILE: internal/controller/user_controller.go
package controller

import (
	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/pkg/serverutils"
	"haley-companion-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetById(ctx *fiber.Ctx) error
	GetByEmail(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type userController struct {
	service   service.IUserService
	requester *serverutils.Requester
}

func NewUserController(service service.IUserService, requester *serverutils.Requester) IUserController {
	return &userController{service: service, requester: requester}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/users")
	h.Get("/", c.GetByEmail)
	h.Post("/", c.Create)
	h.Get("/:id", c.GetById)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
}

// self resolves the :id path parameter against the authenticated user.
func (c *userController) self(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := serverutils.ParseUUIDParam(ctx, "id", "user")
	if err != nil {
		return uuid.Nil, err
	}
	return c.requester.Resolve(ctx, id.String())
}

func (c *userController) GetById(ctx *fiber.Ctx) error {
	userId, err := c.self(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetById(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User found", res))
}

func (c *userController) GetByEmail(ctx *fiber.Ctx) error {
	email := ctx.Query("email")
	if email == "" {
		return apperror.Validation("email query parameter is required")
	}

	res, err := c.service.GetByEmail(ctx.UserContext(), email)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User found", res))
}

func (c *userController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("User created", res))
}

func (c *userController) Update(ctx *fiber.Ctx) error {
	userId, err := c.self(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateUserRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User updated", res))
}

func (c *userController) Delete(ctx *fiber.Ctx) error {
	userId, err := c.self(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("User deleted", nil))
}
