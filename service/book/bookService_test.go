// service/book/book_service_test.go
package booksvc_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"librental/model"
	booksvc "librental/service/book"
)

type repoMock struct {
	createFn func(ctx context.Context, b *model.Book) error
	updateFn func(ctx context.Context, b *model.Book) error
	deleteFn func(ctx context.Context, id int64) error
	listFn   func(ctx context.Context) ([]model.Book, error)
	getFn    func(ctx context.Context, id int64) (*model.Book, error)
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) Update(ctx context.Context, b *model.Book) error { return m.updateFn(ctx, b) }
func (m *repoMock) Delete(ctx context.Context, id int64) error      { return m.deleteFn(ctx, id) }
func (m *repoMock) List(ctx context.Context) ([]model.Book, error)  { return m.listFn(ctx) }
func (m *repoMock) Get(ctx context.Context, id int64) (*model.Book, error) {
	return m.getFn(ctx, id)
}

func validBook() *model.Book {
	return &model.Book{
		Title:     "Dune",
		Author:    "Frank Herbert",
		Cover:     model.CoverSoft,
		Inventory: 3,
		DailyFee:  decimal.RequireFromString("1.50"),
	}
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	ctx := context.Background()

	b := validBook()
	b.Title = ""
	if err := s.Create(ctx, b); !errors.Is(err, booksvc.ErrBadInput) {
		t.Fatalf("expected ErrBadInput for empty title, got %v", err)
	}

	b = validBook()
	b.Cover = "PAPER"
	if err := s.Create(ctx, b); !errors.Is(err, booksvc.ErrBadInput) {
		t.Fatalf("expected ErrBadInput for bad cover, got %v", err)
	}

	b = validBook()
	b.Inventory = -1
	if err := s.Create(ctx, b); !errors.Is(err, booksvc.ErrBadInput) {
		t.Fatalf("expected ErrBadInput for negative inventory, got %v", err)
	}

	b = validBook()
	b.DailyFee = decimal.RequireFromString("-0.01")
	if err := s.Create(ctx, b); !errors.Is(err, booksvc.ErrBadInput) {
		t.Fatalf("expected ErrBadInput for negative fee, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			b.ID = 42
			return nil
		},
	}
	s := booksvc.New(m)
	b := validBook()
	if err := s.Create(context.Background(), b); err != nil || b.ID != 42 {
		t.Fatalf("got id=%v err=%v; want 42 nil", b.ID, err)
	}
}

func TestGet_NotFound(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := booksvc.New(m)
	if _, err := s.Get(context.Background(), 99); !errors.Is(err, booksvc.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateDelete_NotFound(t *testing.T) {
	m := &repoMock{
		updateFn: func(ctx context.Context, b *model.Book) error { return sql.ErrNoRows },
		deleteFn: func(ctx context.Context, id int64) error { return sql.ErrNoRows },
	}
	s := booksvc.New(m)
	if err := s.Update(context.Background(), validBook()); !errors.Is(err, booksvc.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(context.Background(), 99); !errors.Is(err, booksvc.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}
