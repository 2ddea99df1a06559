package models

import "github.com/shopspring/decimal"

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentBankCard     PaymentMethod = "BANK_CARD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentOther        PaymentMethod = "OTHER"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

type Payment struct {
	ID            ID              `json:"id"`
	Salon         ID              `json:"salon"`
	Appointment   ID              `json:"appointment,omitempty"`
	Client        ID              `json:"client,omitempty"`
	ClientName    string          `json:"client_name,omitempty"`
	ServiceName   string          `json:"service_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"payment_method"`
	Status        PaymentStatus   `json:"status"`
	PaymentDate   string          `json:"payment_date,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
}
