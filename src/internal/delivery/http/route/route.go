package route

import (
	"payment-service/src/internal/delivery/http"
	"payment-service/src/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteConfig mounts whichever controllers are set; a nil controller means
// that side of the saga is disabled in this process.
type RouteConfig struct {
	App               *fiber.App
	WalletController  *http.WalletController
	WebhookController *http.WebhookController
	OrderController   *http.OrderController
}

func (c *RouteConfig) Setup() {
	c.App.Use(middleware.NewLogger())
	c.App.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	c.SetupWalletRoute()
	c.SetupOrderRoute()
}

func (c *RouteConfig) SetupWalletRoute() {
	if c.WalletController != nil {
		c.App.Post("/wallets/v1", c.WalletController.CreateWallet)
		c.App.Post("/wallets/v1/deposits", c.WalletController.RegisterDeposit)
		c.App.Get("/wallets/v1/users/:userId", c.WalletController.GetWalletByUser)
		c.App.Get("/wallets/v1/:walletId", c.WalletController.GetWallet)
		c.App.Get("/wallets/v1/:walletId/transactions", c.WalletController.ListTransactions)
	}
	if c.WebhookController != nil {
		c.App.Post("/payments/v1/webhook", c.WebhookController.PaymentCallback)
	}
}

func (c *RouteConfig) SetupOrderRoute() {
	if c.OrderController != nil {
		c.App.Post("/orders/v1", c.OrderController.CreateOrder)
		c.App.Get("/orders/v1/:orderId", c.OrderController.GetOrder)
	}
}
