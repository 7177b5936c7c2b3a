// model/payment.go
package model

import "github.com/shopspring/decimal"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

type PaymentType string

const (
	// TypePayment charges the rental fee and moves a borrow from RESERVED to ACTIVE.
	TypePayment PaymentType = "PAYMENT"
	// TypeFine charges an overdue fine and settles a RETURNED_UNSETTLED borrow.
	TypeFine PaymentType = "FINE"
)

type Payment struct {
	ID         int64           `json:"id"`
	BorrowID   int64           `json:"borrow_id"`
	Status     PaymentStatus   `json:"status"`
	Type       PaymentType     `json:"type"`
	SessionURL string          `json:"session_url,omitempty"`
	SessionID  string          `json:"session_id,omitempty"`
	MoneyToPay decimal.Decimal `json:"money_to_pay"`
}
