package paymentrepo

import (
	"context"
	"database/sql"

	"librental/model"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Payment, error)
	Get(ctx context.Context, id int64) (*model.Payment, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, id int64) error
	SetSession(ctx context.Context, id int64, sessionURL, sessionID string) error
	DeleteByBorrow(ctx context.Context, tx *sql.Tx, borrowID int64) error

	// List returns every payment for staff, or only the caller's own.
	List(ctx context.Context, userID int64, staff bool) ([]model.Payment, error)
	// OwnerID resolves the borrowing user behind a payment.
	OwnerID(ctx context.Context, paymentID int64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (borrow_id, status, type, session_url, session_id, money_to_pay)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id`
	return tx.QueryRowContext(ctx, q,
		p.BorrowID, p.Status, p.Type, p.SessionURL, p.SessionID, p.MoneyToPay,
	).Scan(&p.ID)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Payment, error) {
	const q = `
SELECT id, borrow_id, status, type, session_url, session_id, money_to_pay
FROM payments
WHERE id = $1
FOR UPDATE`
	return scanPayment(tx.QueryRowContext(ctx, q, id))
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Payment, error) {
	const q = `
SELECT id, borrow_id, status, type, session_url, session_id, money_to_pay
FROM payments
WHERE id = $1`
	return scanPayment(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) MarkPaid(ctx context.Context, tx *sql.Tx, id int64) error {
	const q = `UPDATE payments SET status = 'PAID' WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) SetSession(ctx context.Context, id int64, sessionURL, sessionID string) error {
	const q = `
UPDATE payments
SET session_url = $2,
    session_id = $3
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, sessionURL, sessionID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) DeleteByBorrow(ctx context.Context, tx *sql.Tx, borrowID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE borrow_id = $1`, borrowID)
	return err
}

func (r *repo) List(ctx context.Context, userID int64, staff bool) ([]model.Payment, error) {
	q := `
SELECT p.id, p.borrow_id, p.status, p.type, p.session_url, p.session_id, p.money_to_pay
FROM payments p`
	var args []any
	if !staff {
		q += `
JOIN borrows br ON br.id = p.borrow_id
WHERE br.user_id = $1`
		args = append(args, userID)
	}
	q += `
ORDER BY p.id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.BorrowID, &p.Status, &p.Type, &p.SessionURL, &p.SessionID, &p.MoneyToPay); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repo) OwnerID(ctx context.Context, paymentID int64) (int64, error) {
	const q = `
SELECT br.user_id
FROM payments p
JOIN borrows br ON br.id = p.borrow_id
WHERE p.id = $1`
	var uid int64
	err := r.db.QueryRowContext(ctx, q, paymentID).Scan(&uid)
	return uid, err
}

func scanPayment(row *sql.Row) (*model.Payment, error) {
	var p model.Payment
	if err := row.Scan(&p.ID, &p.BorrowID, &p.Status, &p.Type, &p.SessionURL, &p.SessionID, &p.MoneyToPay); err != nil {
		return nil, err
	}
	return &p, nil
}
