package usecase

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"
	"payment-service/src/pkg/log"
	"payment-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// Verifier authenticates a gateway callback.
type Verifier interface {
	Verify(request *model.WebhookRequest) bool
}

// HMACVerifier checks the gateway checksum: the data object's keys sorted,
// rendered as k=v joined by &, signed with HMAC-SHA256 and hex encoded.
type HMACVerifier struct {
	ChecksumKey string
}

func (v HMACVerifier) Verify(request *model.WebhookRequest) bool {
	if v.ChecksumKey == "" || request == nil || request.Signature == "" || len(request.RawData) == 0 {
		return false
	}
	expected, err := v.Sign(request.RawData)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(request.Signature)))
}

// Sign returns the hex signature for a raw JSON data object.
func (v HMACVerifier) Sign(rawData []byte) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(rawData))
	decoder.UseNumber()
	var data map[string]interface{}
	if err := decoder.Decode(&data); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+checksumValue(data[k]))
	}

	mac := hmac.New(sha256.New, []byte(v.ChecksumKey))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

func checksumValue(value interface{}) string {
	switch val := value.(type) {
	case nil:
		return ""
	case string:
		if val == "null" || val == "undefined" {
			return ""
		}
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// WebhookUseCase settles pending deposits from gateway callbacks. Callbacks
// may arrive any number of times; the wallet is credited once.
type WebhookUseCase struct {
	Log      log.Log
	Validate *validator.Validate
	Verifier Verifier
	Ledger   DepositLedger
}

func NewWebhookUseCase(logger log.Log, validate *validator.Validate, verifier Verifier, ledger DepositLedger) *WebhookUseCase {
	return &WebhookUseCase{
		Log:      logger,
		Validate: validate,
		Verifier: verifier,
		Ledger:   ledger,
	}
}

func (c *WebhookUseCase) Process(ctx context.Context, request *model.WebhookRequest) (*model.WebhookResponse, error) {
	if !c.Verifier.Verify(request) {
		webhookCallbacksTotal.WithLabelValues("invalid_signature").Inc()
		return nil, entity.ErrInvalidSignature
	}
	if err := c.Validate.Struct(&request.Data); err != nil {
		webhookCallbacksTotal.WithLabelValues("unknown_reference").Inc()
		return nil, fmt.Errorf("%w: %v", entity.ErrUnknownReference, err)
	}

	orderCode := request.Data.OrderCode
	tx, duplicate, err := c.Ledger.RecordIdempotent(ctx, orderCode, func(ctx context.Context) (*entity.Transaction, error) {
		if request.IsPaid() {
			return c.Ledger.SettleDeposit(ctx, orderCode, request.Data.Amount, request.Data.Reference)
		}
		reason := request.Data.Desc
		if reason == "" {
			reason = request.Desc
		}
		return c.Ledger.FailDeposit(ctx, orderCode, reason)
	})
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrUnknownReference):
			webhookCallbacksTotal.WithLabelValues("unknown_reference").Inc()
		case errors.Is(err, entity.ErrAmountMismatch):
			webhookCallbacksTotal.WithLabelValues("amount_mismatch").Inc()
		default:
			webhookCallbacksTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	outcome := strings.ToLower(string(tx.Status))
	if duplicate {
		outcome = "duplicate"
		if request.IsPaid() != (tx.Status == entity.TransactionSuccess) {
			c.Log.Error("WebhookUseCase.Process",
				fmt.Sprintf("callback paid=%t contradicts stored status %s", request.IsPaid(), tx.Status),
				"reconciliation-required", utils.ConvertString(orderCode))
			outcome = "reconciliation"
		}
	}
	webhookCallbacksTotal.WithLabelValues(outcome).Inc()

	return &model.WebhookResponse{
		OrderCode:     orderCode,
		TransactionID: tx.ID,
		Status:        string(tx.Status),
		Duplicate:     duplicate,
	}, nil
}

func (c *WebhookUseCase) HandleWebhook(ctx context.Context, request *model.WebhookRequest) utils.Result {
	var result utils.Result

	response, err := c.Process(ctx, request)
	if err != nil {
		c.Log.Error("HandleWebhook-Process", err.Error(), "orderCode", utils.ConvertString(request.Data.OrderCode))
		result.Error = ledgerHTTPError(err)
		return result
	}
	c.Log.Info("HandleWebhook", fmt.Sprintf("callback applied, status %s", response.Status), "orderCode", utils.ConvertString(response.OrderCode))
	result.Data = response
	return result
}
