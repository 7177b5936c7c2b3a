package borrow

type CreateBorrowReq struct {
	BookID             int64  `json:"book_id" validate:"required,gt=0"`
	ExpectedReturnDate string `json:"expected_return_date" validate:"required,datetime=2006-01-02"`
}
