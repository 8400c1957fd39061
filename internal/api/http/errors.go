package httpapi

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-rider/internal/geocode"
	"github.com/i474232898/weather-rider/internal/route"
	"github.com/i474232898/weather-rider/internal/store"
	"github.com/i474232898/weather-rider/internal/weather"
)

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var fe *fiber.Error
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve),
		errors.Is(err, geocode.ErrEmptyQuery),
		errors.Is(err, geocode.ErrInvalidCoordinates),
		errors.Is(err, route.ErrMissingCoordinates):
		return fiber.StatusBadRequest
	case errors.Is(err, weather.ErrCityNotFound), errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, weather.ErrInvalidAPIKey), errors.Is(err, weather.ErrProviderUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler is the central JSON error response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := statusOf(err)
	if code >= fiber.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// pageError picks the status and the rider-facing message for the HTML page.
func pageError(err error) (int, string) {
	code := statusOf(err)
	switch {
	case errors.Is(err, geocode.ErrEmptyQuery):
		return code, "Please enter a city name"
	case errors.Is(err, weather.ErrCityNotFound):
		return code, "City not found. Please check the spelling and try again."
	case errors.Is(err, weather.ErrInvalidAPIKey):
		return code, "The weather service rejected our API key. Please try again later."
	case code == fiber.StatusBadRequest:
		return code, err.Error()
	}
	log.Printf("ERROR: ride page: %v", err)
	return code, "Could not load the weather right now. Please try again later."
}
