package converter

import (
	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"
)

func WalletToResponse(wallet *entity.Wallet) *model.WalletResponse {
	return &model.WalletResponse{
		ID:        wallet.ID,
		UserID:    wallet.UserID,
		Balance:   wallet.Balance,
		Currency:  wallet.Currency,
		CreatedAt: wallet.CreatedAt,
		UpdatedAt: wallet.UpdatedAt,
	}
}

func TransactionToResponse(tx *entity.Transaction) *model.TransactionResponse {
	return &model.TransactionResponse{
		ID:                    tx.ID,
		WalletID:              tx.WalletID,
		Amount:                tx.Amount,
		SignedAmount:          tx.SignedAmount(),
		Type:                  string(tx.Type),
		Status:                string(tx.Status),
		OrderID:               tx.OrderID,
		OrderCode:             tx.OrderCode,
		Provider:              tx.Provider,
		ExternalTransactionID: tx.ExternalTransactionID,
		Description:           tx.Description,
		CreatedAt:             tx.CreatedAt,
	}
}

func TransactionsToResponse(txs []entity.Transaction) []*model.TransactionResponse {
	responses := make([]*model.TransactionResponse, 0, len(txs))
	for i := range txs {
		responses = append(responses, TransactionToResponse(&txs[i]))
	}
	return responses
}
