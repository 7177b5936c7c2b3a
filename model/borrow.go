// model/borrow.go
package model

import "time"

type BorrowStatus string

const (
	// BorrowReserved: a copy is held, the rental payment is still pending.
	BorrowReserved BorrowStatus = "RESERVED"
	// BorrowActive: rental payment confirmed, the user has the book.
	BorrowActive BorrowStatus = "ACTIVE"
	// BorrowReturnedUnsettled: book is physically back but an overdue fine
	// is still owed. The copy stays reserved until the fine is paid.
	BorrowReturnedUnsettled BorrowStatus = "RETURNED_UNSETTLED"
	// BorrowSettled: terminal. Everything owed for this borrow has been paid.
	BorrowSettled BorrowStatus = "SETTLED"
)

type Borrow struct {
	ID                 int64        `json:"id"`
	BookID             int64        `json:"book_id"`
	UserID             int64        `json:"user_id"`
	Status             BorrowStatus `json:"status"`
	BorrowDate         time.Time    `json:"borrow_date"`
	ExpectedReturnDate time.Time    `json:"expected_return_date"`
	ActualReturnDate   *time.Time   `json:"actual_return_date,omitempty"`
}
