package borrowrepo

import (
	"context"
	"database/sql"
	"time"

	"librental/model"
)

// ListFilter narrows List. Nil fields mean "no filter".
type ListFilter struct {
	UserID     *int64
	ActiveOnly bool
}

// OverdueRow is what the overdue scanner needs: who to nag about which book.
type OverdueRow struct {
	BorrowID           int64
	UserEmail          string
	BookTitle          string
	ExpectedReturnDate time.Time
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, b *model.Borrow) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Borrow, error)
	Get(ctx context.Context, id int64) (*model.Borrow, error)
	List(ctx context.Context, f ListFilter) ([]model.Borrow, error)
	SetStatus(ctx context.Context, tx *sql.Tx, id int64, status model.BorrowStatus) error
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returnedAt time.Time, status model.BorrowStatus) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error

	ListDueBy(ctx context.Context, cutoff time.Time) ([]OverdueRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, b *model.Borrow) error {
	const q = `
INSERT INTO borrows (book_id, user_id, status, borrow_date, expected_return_date)
VALUES ($1,$2,$3,$4,$5)
RETURNING id`
	return tx.QueryRowContext(ctx, q,
		b.BookID, b.UserID, b.Status, b.BorrowDate, b.ExpectedReturnDate,
	).Scan(&b.ID)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Borrow, error) {
	const q = `
SELECT id, book_id, user_id, status, borrow_date, expected_return_date, actual_return_date
FROM borrows
WHERE id = $1
FOR UPDATE`
	return scanBorrow(tx.QueryRowContext(ctx, q, id))
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Borrow, error) {
	const q = `
SELECT id, book_id, user_id, status, borrow_date, expected_return_date, actual_return_date
FROM borrows
WHERE id = $1`
	return scanBorrow(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) List(ctx context.Context, f ListFilter) ([]model.Borrow, error) {
	q := `
SELECT id, book_id, user_id, status, borrow_date, expected_return_date, actual_return_date
FROM borrows`
	var args []any
	where := ""
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = ` WHERE user_id = $1`
	}
	if f.ActiveOnly {
		if where == "" {
			where = ` WHERE actual_return_date IS NULL`
		} else {
			where += ` AND actual_return_date IS NULL`
		}
	}
	q += where + ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Borrow
	for rows.Next() {
		var b model.Borrow
		var ret sql.NullTime
		if err := rows.Scan(&b.ID, &b.BookID, &b.UserID, &b.Status, &b.BorrowDate, &b.ExpectedReturnDate, &ret); err != nil {
			return nil, err
		}
		if ret.Valid {
			t := ret.Time
			b.ActualReturnDate = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) SetStatus(ctx context.Context, tx *sql.Tx, id int64, status model.BorrowStatus) error {
	const q = `UPDATE borrows SET status = $2 WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returnedAt time.Time, status model.BorrowStatus) error {
	const q = `
UPDATE borrows
SET status = $3,
    actual_return_date = $2
WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, id, returnedAt, status)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM borrows WHERE id = $1`, id)
	return err
}

func (r *repo) ListDueBy(ctx context.Context, cutoff time.Time) ([]OverdueRow, error) {
	const q = `
SELECT br.id, u.email, b.title, br.expected_return_date
FROM borrows br
JOIN users u ON u.id = br.user_id
JOIN books b ON b.id = br.book_id
WHERE br.actual_return_date IS NULL
AND br.expected_return_date <= $1
ORDER BY br.expected_return_date, br.id`
	rows, err := r.db.QueryContext(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OverdueRow
	for rows.Next() {
		var o OverdueRow
		if err := rows.Scan(&o.BorrowID, &o.UserEmail, &o.BookTitle, &o.ExpectedReturnDate); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanBorrow(row *sql.Row) (*model.Borrow, error) {
	var b model.Borrow
	var ret sql.NullTime
	if err := row.Scan(&b.ID, &b.BookID, &b.UserID, &b.Status, &b.BorrowDate, &b.ExpectedReturnDate, &ret); err != nil {
		return nil, err
	}
	if ret.Valid {
		t := ret.Time
		b.ActualReturnDate = &t
	}
	return &b, nil
}
