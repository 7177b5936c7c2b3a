package striperepo

import "context"

type CheckoutSessionReq struct {
	// AmountMinor is the charge in minor currency units (cents).
	AmountMinor int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	// Reference ties the session back to our payment row.
	Reference string
}

type CheckoutSession struct {
	SessionID  string
	SessionURL string
}

type Repo interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionReq) (*CheckoutSession, error)
}
