package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusbot/app/service/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/oops"
)

const genericErrorMessage = "Sorry, something went wrong. Please try again later."

type errorResponse struct {
	Error string `json:"error"`
}

// requestLogger renders chain errors itself so the logged status is the one sent.
func requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()

	level := slog.LevelDebug
	if status >= fiber.StatusInternalServerError {
		level = slog.LevelWarn
	}

	slog.Log(c.UserContext(), level, "HTTP request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start),
	)

	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(errorResponse{Error: fiberErr.Message})
	}

	if oopsErr, ok := oops.AsOops(err); ok {
		switch fmt.Sprint(oopsErr.Code()) {
		case catalog.CodeNotFound:
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "Not found"})
		case catalog.CodeInvalid:
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: oopsErr.Error()})
		case catalog.CodeConflict:
			return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: "Already exists"})
		}
	}

	slog.Error("Request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: genericErrorMessage})
}
