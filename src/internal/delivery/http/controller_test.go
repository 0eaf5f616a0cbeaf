package http_test

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"payment-service/src/internal/delivery/http"
	"payment-service/src/internal/delivery/http/route"
	"payment-service/src/internal/usecase"
	"payment-service/src/pkg/log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	webhooks := usecase.NewWebhookUseCase(log.Nop(), validator.New(), usecase.HMACVerifier{ChecksumKey: "secret"}, nil)
	routes := route.RouteConfig{
		App:               app,
		WebhookController: http.NewWebhookController(webhooks, log.Nop()),
	}
	routes.Setup()
	return app
}

func decode(t *testing.T, resp *nethttp.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	app := newApp()

	req := httptest.NewRequest(nethttp.MethodPost, "/payments/v1/webhook", strings.NewReader(`{"data":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, decode(t, resp)["success"])
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app := newApp()

	body := `{"code":"00","desc":"success","success":true,"data":{"orderCode":555,"amount":100},"signature":"deadbeef"}`
	req := httptest.NewRequest(nethttp.MethodPost, "/payments/v1/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, float64(401), decode(t, resp)["code"])
}

func TestDisabledSideIsNotRouted(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/orders/v1/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
