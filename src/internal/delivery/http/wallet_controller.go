package http

import (
	"payment-service/src/internal/model"
	"payment-service/src/internal/usecase"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletController struct {
	Log     log.Log
	UseCase *usecase.WalletUseCase
}

func NewWalletController(useCase *usecase.WalletUseCase, logger log.Log) *WalletController {
	return &WalletController{
		Log:     logger,
		UseCase: useCase,
	}
}

func (c *WalletController) CreateWallet(ctx *fiber.Ctx) error {
	request := new(model.CreateWalletRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("WalletController.CreateWallet", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(fiber.NewError(fiber.StatusBadRequest, err.Error()), ctx)
	}
	result := c.UseCase.PostWallet(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Create Wallet", fiber.StatusCreated, ctx)
}

func (c *WalletController) GetWallet(ctx *fiber.Ctx) error {
	request := &model.GetWalletRequest{
		WalletID: ctx.Params("walletId"),
	}
	result := c.UseCase.GetWalletDetail(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Get Wallet", fiber.StatusOK, ctx)
}

func (c *WalletController) GetWalletByUser(ctx *fiber.Ctx) error {
	userID, err := utils.ParseInt64(ctx.Params("userId"))
	if err != nil {
		return utils.ResponseError(fiber.NewError(fiber.StatusBadRequest, "userId must be a number"), ctx)
	}
	result := c.UseCase.GetUserWallet(ctx.UserContext(), &model.GetWalletByUserRequest{UserID: userID})
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Get User Wallet", fiber.StatusOK, ctx)
}

func (c *WalletController) ListTransactions(ctx *fiber.Ctx) error {
	request := &model.ListTransactionsRequest{
		WalletID: ctx.Params("walletId"),
		Limit:    ctx.QueryInt("limit", 20),
		Offset:   ctx.QueryInt("offset", 0),
	}
	result := c.UseCase.GetTransactionHistory(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Transaction History", fiber.StatusOK, ctx)
}

func (c *WalletController) RegisterDeposit(ctx *fiber.Ctx) error {
	request := new(model.DepositRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("WalletController.RegisterDeposit", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(fiber.NewError(fiber.StatusBadRequest, err.Error()), ctx)
	}
	result := c.UseCase.PostDeposit(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Register Deposit", fiber.StatusCreated, ctx)
}
