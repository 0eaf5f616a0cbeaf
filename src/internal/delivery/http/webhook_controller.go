package http

import (
	"encoding/json"

	"payment-service/src/internal/model"
	"payment-service/src/internal/usecase"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type WebhookController struct {
	Log     log.Log
	UseCase *usecase.WebhookUseCase
}

func NewWebhookController(useCase *usecase.WebhookUseCase, logger log.Log) *WebhookController {
	return &WebhookController{
		Log:     logger,
		UseCase: useCase,
	}
}

func (c *WebhookController) PaymentCallback(ctx *fiber.Ctx) error {
	request := new(model.WebhookRequest)
	if err := json.Unmarshal(ctx.Body(), request); err != nil {
		c.Log.Error("WebhookController.PaymentCallback", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(fiber.NewError(fiber.StatusBadRequest, err.Error()), ctx)
	}
	result := c.UseCase.HandleWebhook(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Payment Callback", fiber.StatusOK, ctx)
}
