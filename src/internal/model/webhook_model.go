package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// WebhookCodeSuccess is the gateway's "00" result code.
const WebhookCodeSuccess = "00"

// WebhookRequest is the payment gateway callback. RawData keeps the data
// object exactly as received, since the signature is computed over it.
type WebhookRequest struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Success   bool            `json:"success"`
	Data      WebhookData     `json:"data"`
	Signature string          `json:"signature" validate:"required"`
	RawData   json.RawMessage `json:"-"`
}

type WebhookData struct {
	OrderCode              int64           `json:"orderCode" validate:"required,gt=0"`
	Amount                 decimal.Decimal `json:"amount"`
	Description            string          `json:"description"`
	AccountNumber          string          `json:"accountNumber"`
	Reference              string          `json:"reference"`
	TransactionDateTime    string          `json:"transactionDateTime"`
	Currency               string          `json:"currency"`
	PaymentLinkID          string          `json:"paymentLinkId"`
	Code                   string          `json:"code"`
	Desc                   string          `json:"desc"`
	CounterAccountBankID   *string         `json:"counterAccountBankId"`
	CounterAccountBankName *string         `json:"counterAccountBankName"`
	CounterAccountName     *string         `json:"counterAccountName"`
	CounterAccountNumber   *string         `json:"counterAccountNumber"`
}

func (w *WebhookRequest) UnmarshalJSON(b []byte) error {
	type alias WebhookRequest
	aux := struct {
		*alias
		Data json.RawMessage `json:"data"`
	}{alias: (*alias)(w)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	w.RawData = aux.Data
	w.Data = WebhookData{}
	if len(aux.Data) == 0 || string(aux.Data) == "null" {
		return nil
	}
	return json.Unmarshal(aux.Data, &w.Data)
}

// IsPaid reports whether the gateway declared the payment successful.
func (w *WebhookRequest) IsPaid() bool {
	return w.Success && w.Code == WebhookCodeSuccess
}

type WebhookResponse struct {
	OrderCode     int64  `json:"orderCode"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Duplicate     bool   `json:"duplicate"`
}
