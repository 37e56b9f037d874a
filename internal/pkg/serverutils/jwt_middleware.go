package serverutils

import (
	"strings"
	"time"

	"haley-companion-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIdLocal = "user_id"

// Requester binds the acting user to a request. With a bearer token the
// token's user wins and any user id supplied in the path, query or body must
// match it. Without one the supplied id is trusted unless auth is required.
type Requester struct {
	secret   []byte
	required bool
}

func NewRequester(secret string, required bool) *Requester {
	return &Requester{secret: []byte(secret), required: required}
}

func (r *Requester) parse(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid claims")
	}

	userId, _ := claims["user_id"].(string)
	if userId == "" {
		userId, _ = claims["sub"].(string)
	}
	if _, err := uuid.Parse(userId); err != nil {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid claims")
	}
	return userId, nil
}

// JwtMiddleware stores the token's user id in ctx.Locals("user_id").
func (r *Requester) JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") || len(r.secret) == 0 {
		if r.required {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
		}
		return ctx.Next()
	}

	if err := r.Authenticate(ctx, strings.TrimPrefix(authHeader, "Bearer ")); err != nil {
		return err
	}
	return ctx.Next()
}

// Authenticate binds the user of tokenStr to the request. Websocket clients
// pass the token as a query parameter since browsers cannot set headers there.
func (r *Requester) Authenticate(ctx *fiber.Ctx, tokenStr string) error {
	if len(r.secret) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "Token auth is not configured")
	}
	userId, err := r.parse(tokenStr)
	if err != nil {
		return err
	}
	ctx.Locals(userIdLocal, userId)
	return nil
}

// Resolve returns the user the request acts for.
func (r *Requester) Resolve(ctx *fiber.Ctx, supplied string) (uuid.UUID, error) {
	id, err := r.ResolveOptional(ctx, supplied)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, apperror.Validation("userId is required")
	}
	return *id, nil
}

// ResolveOptional is Resolve for operations where the user is optional; it
// returns nil when no user was supplied and no token is present.
func (r *Requester) ResolveOptional(ctx *fiber.Ctx, supplied string) (*uuid.UUID, error) {
	if tokenUser, ok := ctx.Locals(userIdLocal).(string); ok && tokenUser != "" {
		id, err := uuid.Parse(tokenUser)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid claims")
		}
		if supplied != "" && !strings.EqualFold(supplied, tokenUser) {
			return nil, apperror.Forbidden("userId does not match the authenticated user")
		}
		return &id, nil
	}

	if r.required {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}
	if supplied == "" {
		return nil, nil
	}

	id, err := uuid.Parse(supplied)
	if err != nil {
		return nil, apperror.Validation("userId must be a valid UUID")
	}
	return &id, nil
}

// IssueToken signs an HS256 token for userId.
func IssueToken(secret string, userId uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
