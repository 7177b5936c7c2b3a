package paymentsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"librental/model"
	striperepo "librental/repository/stripe"
	borrowsvc "librental/service/borrow"
)

// Borrows is the slice of the state machine the coordinator drives from
// gateway callbacks.
type Borrows interface {
	ConfirmPayment(ctx context.Context, paymentID int64) error
	ConfirmFine(ctx context.Context, paymentID int64) error
	CancelPayment(ctx context.Context, paymentID int64) error
}

type PaymentRepo interface {
	Get(ctx context.Context, id int64) (*model.Payment, error)
	SetSession(ctx context.Context, id int64, sessionURL, sessionID string) error
	List(ctx context.Context, userID int64, staff bool) ([]model.Payment, error)
	OwnerID(ctx context.Context, paymentID int64) (int64, error)
}

type BorrowReader interface {
	Get(ctx context.Context, id int64) (*model.Borrow, error)
}

type BookReader interface {
	Get(ctx context.Context, id int64) (*model.Book, error)
}

type Notifier interface {
	Send(ctx context.Context, text string) error
}

// amounts go to the gateway in minor currency units
var minorUnits = decimal.NewFromInt(100)

// Coordinator owns the external checkout-session lifecycle: opening sessions
// for pending payments and translating gateway callbacks into state-machine
// transitions.
type Coordinator struct {
	payments PaymentRepo
	borrows  BorrowReader
	books    BookReader
	gateway  striperepo.Repo
	notify   Notifier
	log      *slog.Logger

	borrowSvc Borrows

	baseURL  string
	currency string
}

func NewCoordinator(payments PaymentRepo, borrows BorrowReader, books BookReader, gateway striperepo.Repo, notify Notifier, log *slog.Logger, baseURL, currency string) *Coordinator {
	return &Coordinator{
		payments: payments,
		borrows:  borrows,
		books:    books,
		gateway:  gateway,
		notify:   notify,
		log:      log,
		baseURL:  baseURL,
		currency: currency,
	}
}

// Bind attaches the state machine. Done after construction because the
// state machine also needs the coordinator for opening sessions.
func (c *Coordinator) Bind(b Borrows) { c.borrowSvc = b }

// Open creates a checkout session for a pending payment and persists the
// session reference. Re-invoking for a payment that already has a session
// returns the existing URL, which makes retrying a failed open harmless.
func (c *Coordinator) Open(ctx context.Context, paymentID int64) (string, error) {
	p, err := c.payments.Get(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", borrowsvc.Err(borrowsvc.ErrNotFound)
		}
		return "", err
	}
	if p.Status == model.PaymentPaid {
		return "", borrowsvc.Err(borrowsvc.ErrInvalidState)
	}
	if p.SessionURL != "" {
		return p.SessionURL, nil
	}

	b, err := c.borrows.Get(ctx, p.BorrowID)
	if err != nil {
		return "", err
	}
	book, err := c.books.Get(ctx, b.BookID)
	if err != nil {
		return "", err
	}

	sess, err := c.gateway.CreateCheckoutSession(ctx, striperepo.CheckoutSessionReq{
		AmountMinor: p.MoneyToPay.Mul(minorUnits).Round(0).IntPart(),
		Currency:    c.currency,
		ProductName: productName(p.Type, book.Title),
		SuccessURL:  c.callbackURL("success", p),
		CancelURL:   c.callbackURL("cancel", p),
		Reference:   fmt.Sprintf("payment:%d", p.ID),
	})
	if err != nil {
		// No state was touched; the payment stays PENDING and retryable.
		c.log.Error("checkout session failed", "payment_id", p.ID, "err", err)
		return "", borrowsvc.Err(borrowsvc.ErrGateway)
	}

	if err := c.payments.SetSession(ctx, p.ID, sess.SessionURL, sess.SessionID); err != nil {
		return "", err
	}
	return sess.SessionURL, nil
}

// HandleSuccess is the gateway success callback. Dispatches by payment type
// and fires a notification; the notification failing never fails the callback.
func (c *Coordinator) HandleSuccess(ctx context.Context, paymentID int64) error {
	p, err := c.payments.Get(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return borrowsvc.Err(borrowsvc.ErrNotFound)
		}
		return err
	}

	switch p.Type {
	case model.TypeFine:
		err = c.borrowSvc.ConfirmFine(ctx, p.ID)
	default:
		err = c.borrowSvc.ConfirmPayment(ctx, p.ID)
	}
	if err != nil {
		return err
	}

	text := fmt.Sprintf("Payment #%d (%s) for borrowing #%d was successful: %s",
		p.ID, p.Type, p.BorrowID, p.MoneyToPay.StringFixed(2))
	if nerr := c.notify.Send(ctx, text); nerr != nil {
		c.log.Warn("payment notification failed", "payment_id", p.ID, "err", nerr)
	}
	return nil
}

// HandleCancel is the gateway cancel callback. A cancelled rental payment
// rolls the reservation back. A cancelled fine session is deliberately a
// no-op: the fine is still owed and the payment stays PENDING, so the user
// can open a new session later.
func (c *Coordinator) HandleCancel(ctx context.Context, paymentID int64) error {
	p, err := c.payments.Get(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return borrowsvc.Err(borrowsvc.ErrNotFound)
		}
		return err
	}
	if p.Type == model.TypeFine {
		return nil
	}
	return c.borrowSvc.CancelPayment(ctx, p.ID)
}

func (c *Coordinator) List(ctx context.Context, userID int64, staff bool) ([]model.Payment, error) {
	return c.payments.List(ctx, userID, staff)
}

func (c *Coordinator) GetScoped(ctx context.Context, userID int64, staff bool, paymentID int64) (*model.Payment, error) {
	p, err := c.payments.Get(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, borrowsvc.Err(borrowsvc.ErrNotFound)
		}
		return nil, err
	}
	if !staff {
		owner, err := c.payments.OwnerID(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		if owner != userID {
			return nil, borrowsvc.Err(borrowsvc.ErrNotFound)
		}
	}
	return p, nil
}

func (c *Coordinator) callbackURL(outcome string, p *model.Payment) string {
	kind := "payment"
	if p.Type == model.TypeFine {
		kind = "fine"
	}
	return fmt.Sprintf("%s/v1/%s/%s/%d", c.baseURL, outcome, kind, p.ID)
}

func productName(t model.PaymentType, title string) string {
	if t == model.TypeFine {
		return "Overdue fine: " + title
	}
	return "Book rental: " + title
}
