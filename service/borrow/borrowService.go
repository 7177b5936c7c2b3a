package borrowsvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"librental/model"
	bookrepo "librental/repository/book"
	borrowrepo "librental/repository/borrow"
)

// TxRunner gives the state machine an explicit transaction scope with
// rollback guaranteed on every non-nil-error exit path.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// SessionOpener is the payment coordinator as seen from here: it turns a
// pending payment into a hosted checkout URL.
type SessionOpener interface {
	Open(ctx context.Context, paymentID int64) (string, error)
}

type BookRepo interface {
	ReserveCopy(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Book, error)
	ReleaseCopy(ctx context.Context, tx *sql.Tx, bookID int64) error
}

type BorrowRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, b *model.Borrow) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Borrow, error)
	Get(ctx context.Context, id int64) (*model.Borrow, error)
	List(ctx context.Context, f borrowrepo.ListFilter) ([]model.Borrow, error)
	SetStatus(ctx context.Context, tx *sql.Tx, id int64, status model.BorrowStatus) error
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returnedAt time.Time, status model.BorrowStatus) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
}

type PaymentRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Payment, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, id int64) error
	DeleteByBorrow(ctx context.Context, tx *sql.Tx, borrowID int64) error
}

// dto

type Created struct {
	BorrowID   int64           `json:"borrow_id"`
	PaymentID  int64           `json:"payment_id"`
	PaymentURL string          `json:"payment_url"`
	MoneyToPay decimal.Decimal `json:"money_to_pay"`
}

type Returned struct {
	BorrowID int64 `json:"borrow_id"`
	Settled  bool  `json:"settled"`

	// Set only when the return was overdue and a fine is now owed.
	FinePaymentID *int64           `json:"fine_payment_id,omitempty"`
	FineURL       string           `json:"fine_url,omitempty"`
	Fine          *decimal.Decimal `json:"fine,omitempty"`
}

type Service interface {
	// Create reserves a copy, opens the borrow in RESERVED and attaches a
	// pending rental payment plus its checkout session.
	Create(ctx context.Context, userID, bookID int64, expectedReturn time.Time) (*Created, error)

	// ConfirmPayment: gateway success for a PAYMENT. RESERVED -> ACTIVE. Idempotent.
	ConfirmPayment(ctx context.Context, paymentID int64) error

	// CancelPayment: gateway cancel for a PAYMENT. Releases the copy and
	// removes the borrow. Valid only while RESERVED.
	CancelPayment(ctx context.Context, paymentID int64) error

	// Return hands the book back. On time: release + SETTLED. Overdue: fine
	// payment created, RETURNED_UNSETTLED, copy retained until the fine clears.
	Return(ctx context.Context, userID, borrowID int64) (*Returned, error)

	// ConfirmFine: gateway success for a FINE. Releases the copy and settles
	// the borrow. Idempotent.
	ConfirmFine(ctx context.Context, paymentID int64) error

	Get(ctx context.Context, userID int64, staff bool, borrowID int64) (*model.Borrow, error)
	List(ctx context.Context, userID int64, staff bool, filterUser *int64, activeOnly bool) ([]model.Borrow, error)
}

// ----- Service implementation -----

type service struct {
	tx       TxRunner
	books    BookRepo
	borrows  BorrowRepo
	payments PaymentRepo
	sessions SessionOpener

	fineMultiplier decimal.Decimal
	now            func() time.Time
}

func New(tx TxRunner, books BookRepo, borrows BorrowRepo, payments PaymentRepo, sessions SessionOpener, fineMultiplier decimal.Decimal) Service {
	return &service{
		tx:             tx,
		books:          books,
		borrows:        borrows,
		payments:       payments,
		sessions:       sessions,
		fineMultiplier: fineMultiplier,
		now:            time.Now,
	}
}

func (s *service) Create(ctx context.Context, userID, bookID int64, expectedReturn time.Time) (*Created, error) {
	today := dateOnly(s.now())
	expectedReturn = dateOnly(expectedReturn)
	if !expectedReturn.After(today) {
		return nil, makeErr(ErrInvalidDate)
	}

	var (
		borrow  model.Borrow
		payment model.Payment
	)
	err := s.tx.RunTx(ctx, func(tx *sql.Tx) error {
		book, err := s.books.ReserveCopy(ctx, tx, bookID)
		if err != nil {
			if errors.Is(err, bookrepo.ErrNoStock) {
				return makeErr(ErrOutOfStock)
			}
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrBookNotFound)
			}
			return err
		}

		borrow = model.Borrow{
			BookID:             bookID,
			UserID:             userID,
			Status:             model.BorrowReserved,
			BorrowDate:         today,
			ExpectedReturnDate: expectedReturn,
		}
		if err := s.borrows.Insert(ctx, tx, &borrow); err != nil {
			return err
		}

		days := DaysBetween(today, expectedReturn)
		payment = model.Payment{
			BorrowID:   borrow.ID,
			Status:     model.PaymentPending,
			Type:       model.TypePayment,
			MoneyToPay: book.DailyFee.Mul(decimal.NewFromInt(days)),
		}
		return s.payments.Insert(ctx, tx, &payment)
	})
	if err != nil {
		return nil, err
	}

	// The reservation is committed; a gateway failure here must not undo it.
	// The payment stays PENDING without a session and Open can be retried.
	url, err := s.sessions.Open(ctx, payment.ID)
	if err != nil {
		return nil, makeErr(ErrGateway)
	}

	return &Created{
		BorrowID:   borrow.ID,
		PaymentID:  payment.ID,
		PaymentURL: url,
		MoneyToPay: payment.MoneyToPay,
	}, nil
}

func (s *service) ConfirmPayment(ctx context.Context, paymentID int64) error {
	return s.tx.RunTx(ctx, func(tx *sql.Tx) error {
		p, err := s.payments.GetForUpdate(ctx, tx, paymentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if p.Type != model.TypePayment {
			return makeErr(ErrInvalidState)
		}
		if p.Status == model.PaymentPaid {
			// Gateways retry callbacks; confirming twice is a no-op.
			return nil
		}

		b, err := s.borrows.GetForUpdate(ctx, tx, p.BorrowID)
		if err != nil {
			return err
		}
		if b.Status != model.BorrowReserved {
			return makeErr(ErrInvalidState)
		}

		if err := s.payments.MarkPaid(ctx, tx, p.ID); err != nil {
			return err
		}
		return s.borrows.SetStatus(ctx, tx, b.ID, model.BorrowActive)
	})
}

func (s *service) CancelPayment(ctx context.Context, paymentID int64) error {
	return s.tx.RunTx(ctx, func(tx *sql.Tx) error {
		p, err := s.payments.GetForUpdate(ctx, tx, paymentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if p.Type != model.TypePayment || p.Status == model.PaymentPaid {
			return makeErr(ErrInvalidState)
		}

		b, err := s.borrows.GetForUpdate(ctx, tx, p.BorrowID)
		if err != nil {
			return err
		}
		if b.Status != model.BorrowReserved {
			return makeErr(ErrInvalidState)
		}

		if err := s.books.ReleaseCopy(ctx, tx, b.BookID); err != nil {
			return err
		}
		if err := s.payments.DeleteByBorrow(ctx, tx, b.ID); err != nil {
			return err
		}
		return s.borrows.Delete(ctx, tx, b.ID)
	})
}

func (s *service) Return(ctx context.Context, userID, borrowID int64) (*Returned, error) {
	today := dateOnly(s.now())

	var (
		out         Returned
		finePayment *model.Payment
	)
	err := s.tx.RunTx(ctx, func(tx *sql.Tx) error {
		b, err := s.borrows.GetForUpdate(ctx, tx, borrowID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if b.UserID != userID {
			return makeErr(ErrNotOwner)
		}
		if b.ActualReturnDate != nil || b.Status == model.BorrowSettled || b.Status == model.BorrowReturnedUnsettled {
			return makeErr(ErrAlreadyReturned)
		}
		if b.Status != model.BorrowActive {
			// RESERVED: the rental was never paid, nothing to return yet.
			return makeErr(ErrInvalidState)
		}

		out.BorrowID = b.ID

		if today.After(b.ExpectedReturnDate) {
			fine := Fine(b.ExpectedReturnDate, today, s.fineMultiplier)
			p := model.Payment{
				BorrowID:   b.ID,
				Status:     model.PaymentPending,
				Type:       model.TypeFine,
				MoneyToPay: fine,
			}
			if err := s.payments.Insert(ctx, tx, &p); err != nil {
				return err
			}
			// Copy stays reserved until the fine is paid.
			if err := s.borrows.SetStatus(ctx, tx, b.ID, model.BorrowReturnedUnsettled); err != nil {
				return err
			}
			finePayment = &p
			out.FinePaymentID = &p.ID
			out.Fine = &p.MoneyToPay
			return nil
		}

		if err := s.books.ReleaseCopy(ctx, tx, b.BookID); err != nil {
			return err
		}
		if err := s.borrows.MarkReturned(ctx, tx, b.ID, today, model.BorrowSettled); err != nil {
			return err
		}
		out.Settled = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if finePayment != nil {
		// Best effort: the return itself is committed. A session can still be
		// opened later through the payment coordinator.
		if url, err := s.sessions.Open(ctx, finePayment.ID); err == nil {
			out.FineURL = url
		}
	}
	return &out, nil
}

func (s *service) ConfirmFine(ctx context.Context, paymentID int64) error {
	today := dateOnly(s.now())
	return s.tx.RunTx(ctx, func(tx *sql.Tx) error {
		p, err := s.payments.GetForUpdate(ctx, tx, paymentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if p.Type != model.TypeFine {
			return makeErr(ErrInvalidState)
		}
		if p.Status == model.PaymentPaid {
			return nil
		}

		b, err := s.borrows.GetForUpdate(ctx, tx, p.BorrowID)
		if err != nil {
			return err
		}
		if b.Status != model.BorrowReturnedUnsettled {
			return makeErr(ErrInvalidState)
		}

		if err := s.payments.MarkPaid(ctx, tx, p.ID); err != nil {
			return err
		}
		if err := s.books.ReleaseCopy(ctx, tx, b.BookID); err != nil {
			return err
		}
		return s.borrows.MarkReturned(ctx, tx, b.ID, today, model.BorrowSettled)
	})
}

func (s *service) Get(ctx context.Context, userID int64, staff bool, borrowID int64) (*model.Borrow, error) {
	b, err := s.borrows.Get(ctx, borrowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	// Non-owners get not-found, not forbidden, so borrow IDs don't leak.
	if !staff && b.UserID != userID {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

func (s *service) List(ctx context.Context, userID int64, staff bool, filterUser *int64, activeOnly bool) ([]model.Borrow, error) {
	f := borrowrepo.ListFilter{ActiveOnly: activeOnly}
	if staff {
		f.UserID = filterUser
	} else {
		f.UserID = &userID
	}
	return s.borrows.List(ctx, f)
}
