package paymentsvc

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"librental/model"
	striperepo "librental/repository/stripe"
	borrowsvc "librental/service/borrow"
)

var ctx = context.Background()

// ----- mocks -----

type paymentsMock struct {
	byID       map[int64]*model.Payment
	owner      int64
	sessions   int
	lastURL    string
	lastSessID string
}

func (m *paymentsMock) Get(ctx context.Context, id int64) (*model.Payment, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *paymentsMock) SetSession(ctx context.Context, id int64, sessionURL, sessionID string) error {
	p, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.SessionURL, p.SessionID = sessionURL, sessionID
	m.sessions++
	m.lastURL, m.lastSessID = sessionURL, sessionID
	return nil
}

func (m *paymentsMock) List(ctx context.Context, userID int64, staff bool) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range m.byID {
		if staff || m.owner == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *paymentsMock) OwnerID(ctx context.Context, paymentID int64) (int64, error) {
	if _, ok := m.byID[paymentID]; !ok {
		return 0, sql.ErrNoRows
	}
	return m.owner, nil
}

type borrowsMock struct{ b model.Borrow }

func (m *borrowsMock) Get(ctx context.Context, id int64) (*model.Borrow, error) {
	cp := m.b
	return &cp, nil
}

type booksMock struct{ b model.Book }

func (m *booksMock) Get(ctx context.Context, id int64) (*model.Book, error) {
	cp := m.b
	return &cp, nil
}

type gatewayMock struct {
	req  *striperepo.CheckoutSessionReq
	err  error
	n    int
	sess striperepo.CheckoutSession
}

func (m *gatewayMock) CreateCheckoutSession(ctx context.Context, req striperepo.CheckoutSessionReq) (*striperepo.CheckoutSession, error) {
	m.n++
	m.req = &req
	if m.err != nil {
		return nil, m.err
	}
	cp := m.sess
	return &cp, nil
}

type notifyMock struct {
	msgs []string
	err  error
}

func (m *notifyMock) Send(ctx context.Context, text string) error {
	m.msgs = append(m.msgs, text)
	return m.err
}

type stateMachineMock struct {
	confirmed, fined, cancelled []int64
	err                         error
}

func (m *stateMachineMock) ConfirmPayment(ctx context.Context, id int64) error {
	m.confirmed = append(m.confirmed, id)
	return m.err
}
func (m *stateMachineMock) ConfirmFine(ctx context.Context, id int64) error {
	m.fined = append(m.fined, id)
	return m.err
}
func (m *stateMachineMock) CancelPayment(ctx context.Context, id int64) error {
	m.cancelled = append(m.cancelled, id)
	return m.err
}

func fix(t *testing.T, p *model.Payment) (*Coordinator, *paymentsMock, *gatewayMock, *notifyMock, *stateMachineMock) {
	t.Helper()
	pm := &paymentsMock{byID: map[int64]*model.Payment{p.ID: p}, owner: 7}
	bm := &borrowsMock{b: model.Borrow{ID: p.BorrowID, BookID: 1, UserID: 7,
		ExpectedReturnDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}}
	km := &booksMock{b: model.Book{ID: 1, Title: "Dune"}}
	gw := &gatewayMock{sess: striperepo.CheckoutSession{SessionID: "cs_123", SessionURL: "https://checkout.test/cs_123"}}
	nm := &notifyMock{}
	sm := &stateMachineMock{}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	co := NewCoordinator(pm, bm, km, gw, nm, log, "http://localhost:8080", "usd")
	co.Bind(sm)
	return co, pm, gw, nm, sm
}

func pending(id int64, typ model.PaymentType, amount string) *model.Payment {
	return &model.Payment{
		ID:         id,
		BorrowID:   3,
		Status:     model.PaymentPending,
		Type:       typ,
		MoneyToPay: decimal.RequireFromString(amount),
	}
}

// ----- open -----

func TestOpen_CreatesSessionInMinorUnits(t *testing.T) {
	co, pm, gw, _, _ := fix(t, pending(10, model.TypePayment, "12.50"))

	url, err := co.Open(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, "https://checkout.test/cs_123", url)

	require.EqualValues(t, 1250, gw.req.AmountMinor)
	require.Equal(t, "usd", gw.req.Currency)
	require.Equal(t, "Book rental: Dune", gw.req.ProductName)
	require.Equal(t, "http://localhost:8080/v1/success/payment/10", gw.req.SuccessURL)
	require.Equal(t, "http://localhost:8080/v1/cancel/payment/10", gw.req.CancelURL)

	require.Equal(t, 1, pm.sessions)
	require.Equal(t, "cs_123", pm.lastSessID)
}

func TestOpen_FineUsesFineCallbacks(t *testing.T) {
	co, _, gw, _, _ := fix(t, pending(11, model.TypeFine, "10"))

	_, err := co.Open(ctx, 11)
	require.NoError(t, err)
	require.Equal(t, "Overdue fine: Dune", gw.req.ProductName)
	require.Equal(t, "http://localhost:8080/v1/success/fine/11", gw.req.SuccessURL)
	require.Equal(t, "http://localhost:8080/v1/cancel/fine/11", gw.req.CancelURL)
	require.EqualValues(t, 1000, gw.req.AmountMinor)
}

func TestOpen_ExistingSessionIsReturned(t *testing.T) {
	p := pending(10, model.TypePayment, "12.50")
	p.SessionURL = "https://checkout.test/old"
	p.SessionID = "cs_old"
	co, pm, gw, _, _ := fix(t, p)

	url, err := co.Open(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, "https://checkout.test/old", url)
	require.Zero(t, gw.n)
	require.Zero(t, pm.sessions)
}

func TestOpen_GatewayFailureIsRetryable(t *testing.T) {
	co, pm, gw, _, _ := fix(t, pending(10, model.TypePayment, "12.50"))
	gw.err = errors.New("stripe down")

	_, err := co.Open(ctx, 10)
	require.Equal(t, borrowsvc.ErrGateway, borrowsvc.Code(err))
	require.Zero(t, pm.sessions)

	// retry succeeds once the gateway recovers
	gw.err = nil
	url, err := co.Open(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, url)
}

func TestOpen_PaidPaymentRejected(t *testing.T) {
	p := pending(10, model.TypePayment, "12.50")
	p.Status = model.PaymentPaid
	co, _, _, _, _ := fix(t, p)

	_, err := co.Open(ctx, 10)
	require.Equal(t, borrowsvc.ErrInvalidState, borrowsvc.Code(err))
}

// ----- callbacks -----

func TestHandleSuccess_DispatchesByType(t *testing.T) {
	co, _, _, nm, sm := fix(t, pending(10, model.TypePayment, "12.50"))

	require.NoError(t, co.HandleSuccess(ctx, 10))
	require.Equal(t, []int64{10}, sm.confirmed)
	require.Empty(t, sm.fined)
	require.Len(t, nm.msgs, 1)
	require.Contains(t, nm.msgs[0], "12.50")
}

func TestHandleSuccess_Fine(t *testing.T) {
	co, _, _, _, sm := fix(t, pending(11, model.TypeFine, "10"))

	require.NoError(t, co.HandleSuccess(ctx, 11))
	require.Equal(t, []int64{11}, sm.fined)
	require.Empty(t, sm.confirmed)
}

func TestHandleSuccess_NotificationFailureSwallowed(t *testing.T) {
	co, _, _, nm, sm := fix(t, pending(10, model.TypePayment, "12.50"))
	nm.err = errors.New("telegram down")

	require.NoError(t, co.HandleSuccess(ctx, 10))
	require.Equal(t, []int64{10}, sm.confirmed)
}

func TestHandleSuccess_UnknownPayment(t *testing.T) {
	co, _, _, _, _ := fix(t, pending(10, model.TypePayment, "12.50"))

	err := co.HandleSuccess(ctx, 404)
	require.Equal(t, borrowsvc.ErrNotFound, borrowsvc.Code(err))
}

func TestHandleCancel_PaymentRollsBack(t *testing.T) {
	co, _, _, _, sm := fix(t, pending(10, model.TypePayment, "12.50"))

	require.NoError(t, co.HandleCancel(ctx, 10))
	require.Equal(t, []int64{10}, sm.cancelled)
}

func TestHandleCancel_FineIsNoOp(t *testing.T) {
	co, _, _, _, sm := fix(t, pending(11, model.TypeFine, "10"))

	require.NoError(t, co.HandleCancel(ctx, 11))
	require.Empty(t, sm.cancelled)
}

// ----- scoping -----

func TestGetScoped(t *testing.T) {
	co, _, _, _, _ := fix(t, pending(10, model.TypePayment, "12.50"))

	// owner
	p, err := co.GetScoped(ctx, 7, false, 10)
	require.NoError(t, err)
	require.EqualValues(t, 10, p.ID)

	// stranger
	_, err = co.GetScoped(ctx, 99, false, 10)
	require.Equal(t, borrowsvc.ErrNotFound, borrowsvc.Code(err))

	// staff
	_, err = co.GetScoped(ctx, 99, true, 10)
	require.NoError(t, err)
}
