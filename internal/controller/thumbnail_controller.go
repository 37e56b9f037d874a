package controller

import (
	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/pkg/serverutils"
	"haley-companion-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IThumbnailController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	IncrementViews(ctx *fiber.Ctx) error
	SignedURL(ctx *fiber.Ctx) error
}

type thumbnailController struct {
	service      service.IThumbnailService
	requester    *serverutils.Requester
	viewsLimiter fiber.Handler
}

// NewThumbnailController guards the anonymous view counter with viewsLimiter
// when one is given.
func NewThumbnailController(service service.IThumbnailService, requester *serverutils.Requester, viewsLimiter fiber.Handler) IThumbnailController {
	return &thumbnailController{service: service, requester: requester, viewsLimiter: viewsLimiter}
}

func (c *thumbnailController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/thumbnails")
	h.Get("/", c.List)
	h.Post("/", c.Create)
	h.Post("/signed-url", c.SignedURL)
	h.Put("/:uuid", c.Update)
	if c.viewsLimiter != nil {
		h.Post("/:uuid/views", c.viewsLimiter, c.IncrementViews)
	} else {
		h.Post("/:uuid/views", c.IncrementViews)
	}
}

func (c *thumbnailController) List(ctx *fiber.Ctx) error {
	var q dto.ListThumbnailsQuery
	if err := ctx.QueryParser(&q); err != nil {
		return apperror.Validation("public must be true or false")
	}

	if q.Public {
		res, err := c.service.ListPublic(ctx.UserContext())
		if err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Public thumbnails", res))
	}

	userId, err := c.requester.Resolve(ctx, q.UserId)
	if err != nil {
		return err
	}
	res, err := c.service.ListByUser(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Thumbnails", res))
}

func (c *thumbnailController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateThumbnailRequest
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
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Thumbnail created", res))
}

func (c *thumbnailController) Update(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "uuid", "thumbnail")
	if err != nil {
		return err
	}

	var req dto.UpdateThumbnailRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	userId, err := c.requester.Resolve(ctx, req.UserId)
	if err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), id, userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Thumbnail updated", res))
}

func (c *thumbnailController) IncrementViews(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "uuid", "thumbnail")
	if err != nil {
		return err
	}

	if err := c.service.IncrementViews(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("View counted", nil))
}

func (c *thumbnailController) SignedURL(ctx *fiber.Ctx) error {
	var req dto.SignedURLRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	userId, err := c.requester.Resolve(ctx, req.UserId)
	if err != nil {
		return err
	}

	res, err := c.service.SignedUploadURL(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Upload URL signed", res))
}
