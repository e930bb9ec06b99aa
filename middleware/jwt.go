package middleware

import (
	"fmt"
	"strings"

	"nwd/config"
	"nwd/database"
	"nwd/models"
	"nwd/services/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// JWTMiddleware verifies the session token issued by the external identity
// provider. The token is verified locally with the shared service key; the
// provider itself is only contacted when linking accounts. On success the
// provider subject and the resolved person id are stored on the request.
func JWTMiddleware(c *fiber.Ctx) error {
	// Get the token from the Authorization header
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Missing or invalid Authorization header",
		})
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Invalid Authorization header format",
		})
	}

	// Extract the token part
	tokenString := authHeader[len("Bearer "):]

	// Parse and validate the token
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Check if the token method is valid
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.AuthServiceKey), nil
	})

	// If there's an error parsing the token
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Invalid or expired token",
		})
	}

	// The subject claim carries the provider account id (a UUID)
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Invalid token payload",
		})
	}
	subject, _ := claims["sub"].(string)
	if _, err := uuid.Parse(subject); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Invalid token subject",
		})
	}

	// Resolve the provider account to a person
	var person models.Person
	if err := database.Database.Db.Where("auth_user_id = ? AND is_deleted = false", subject).First(&person).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "No person linked to this account",
		})
	}

	c.Locals("authUserId", subject)
	c.Locals("personId", person.ID)

	// If valid, continue to the next handler
	return c.Next()
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse maps a typed service error to an HTTP response
func ErrorResponse(c *fiber.Ctx, err error) error {
	appErr, ok := err.(*apperrors.Error)
	if !ok {
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}

	switch appErr.Kind {
	case apperrors.KindNotFound:
		return JsonResponse(c, fiber.StatusNotFound, false, appErr.Message, nil)
	case apperrors.KindForbidden:
		return JsonResponse(c, fiber.StatusForbidden, false, appErr.Message, nil)
	case apperrors.KindConflict:
		return JsonResponse(c, fiber.StatusConflict, false, appErr.Message, nil)
	case apperrors.KindInvalidState:
		// Distinct status so the front-end can route to its dedicated
		// recovery view instead of offering a retry
		return JsonResponse(c, fiber.StatusUnprocessableEntity, false, appErr.Message, fiber.Map{"kind": appErr.Kind})
	case apperrors.KindValidation:
		if appErr.Fields != nil {
			return ValidationErrorResponse(c, appErr.Fields)
		}
		return JsonResponse(c, fiber.StatusBadRequest, false, appErr.Message, nil)
	default:
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}
}
