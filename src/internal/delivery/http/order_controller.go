package http

import (
	"payment-service/src/internal/model"
	"payment-service/src/internal/usecase"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type OrderController struct {
	Log     log.Log
	UseCase *usecase.OrderUseCase
}

func NewOrderController(useCase *usecase.OrderUseCase, logger log.Log) *OrderController {
	return &OrderController{
		Log:     logger,
		UseCase: useCase,
	}
}

func (c *OrderController) CreateOrder(ctx *fiber.Ctx) error {
	request := new(model.CreateOrderRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("OrderController.CreateOrder", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(fiber.NewError(fiber.StatusBadRequest, err.Error()), ctx)
	}
	result := c.UseCase.CreateOrder(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Create Order", fiber.StatusCreated, ctx)
}

func (c *OrderController) GetOrder(ctx *fiber.Ctx) error {
	orderID, err := utils.ParseInt64(ctx.Params("orderId"))
	if err != nil {
		return utils.ResponseError(fiber.NewError(fiber.StatusBadRequest, "orderId must be a number"), ctx)
	}
	result := c.UseCase.GetOrder(ctx.UserContext(), &model.GetOrderRequest{OrderID: orderID})
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Get Order", fiber.StatusOK, ctx)
}
