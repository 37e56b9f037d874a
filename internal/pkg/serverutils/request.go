package serverutils

import (
	"haley-companion-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ParseBody decodes the JSON body into out and validates it.
func ParseBody(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return apperror.Validation("Invalid request body")
	}
	return ValidateRequest(out)
}

// ParseUUIDParam reads a uuid path parameter. A malformed id cannot exist, so
// it reports not found under the given resource name.
func ParseUUIDParam(ctx *fiber.Ctx, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.NotFound(resource)
	}
	return id, nil
}
