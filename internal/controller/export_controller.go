package controller

import (
	"fmt"

	"haley-companion-be/internal/pkg/serverutils"
	"haley-companion-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IExportController interface {
	RegisterRoutes(r fiber.Router)
	ExportMessages(ctx *fiber.Ctx) error
}

type exportController struct {
	service   service.IExportService
	requester *serverutils.Requester
}

func NewExportController(service service.IExportService, requester *serverutils.Requester) IExportController {
	return &exportController{service: service, requester: requester}
}

func (c *exportController) RegisterRoutes(r fiber.Router) {
	r.Get("/export-messages/:userId", c.ExportMessages)
}

// ExportMessages answers with a file download rather than the JSON envelope.
func (c *exportController) ExportMessages(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "userId", "user")
	if err != nil {
		return err
	}
	userId, err := c.requester.Resolve(ctx, id.String())
	if err != nil {
		return err
	}

	file, err := c.service.Export(ctx.UserContext(), userId, ctx.Query("format"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, file.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return ctx.Send(file.Body)
}
