package utils

import (
	"errors"

	httpError "payment-service/src/pkg/http-error"

	"github.com/gofiber/fiber/v2"
)

type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
}

// Response writes a success envelope.
func Response(data interface{}, message string, code int, ctx *fiber.Ctx) error {
	return ctx.Status(code).JSON(response{
		Success: true,
		Data:    data,
		Message: message,
		Code:    code,
	})
}

// ResponseError writes an error envelope, using the status carried by a CommonError.
func ResponseError(err error, ctx *fiber.Ctx) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var common httpError.CommonError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &common):
		code = common.Code
		message = common.Message
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return ctx.Status(code).JSON(response{
		Success: false,
		Data:    nil,
		Message: message,
		Code:    code,
	})
}
