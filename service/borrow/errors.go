package borrowsvc

import "errors"

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrOutOfStock      ErrCode = "OUT_OF_STOCK"
	ErrInvalidDate     ErrCode = "INVALID_DATE"
	ErrNotOwner        ErrCode = "NOT_OWNER"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
	ErrInvalidState    ErrCode = "INVALID_STATE"
	ErrGateway         ErrCode = "GATEWAY_ERROR"
	ErrNotFound        ErrCode = "NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Err builds a coded error; used by the payment coordinator which shares
// this taxonomy.
func Err(c ErrCode) error { return makeErr(c) }
