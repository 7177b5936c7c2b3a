package overduesvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	borrowrepo "librental/repository/borrow"
)

type repoMock struct {
	rows   []borrowrepo.OverdueRow
	cutoff time.Time
	err    error
}

func (m *repoMock) ListDueBy(ctx context.Context, cutoff time.Time) ([]borrowrepo.OverdueRow, error) {
	m.cutoff = cutoff
	return m.rows, m.err
}

type notifyMock struct {
	sent []string
	err  error
}

func (m *notifyMock) Send(ctx context.Context, text string) error {
	m.sent = append(m.sent, text)
	return m.err
}

func scanner(r *repoMock, n *notifyMock) *Scanner {
	s := New(r, n, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestScan_EmptyDigest(t *testing.T) {
	r := &repoMock{}
	n := &notifyMock{}

	digest, err := scanner(r, n).Scan(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if digest != "No borrowings overdue today!" {
		t.Fatalf("digest = %q", digest)
	}
	if len(n.sent) != 1 || n.sent[0] != digest {
		t.Fatalf("digest not sent: %v", n.sent)
	}
	// horizon of 1 day: due today or tomorrow
	want := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if !r.cutoff.Equal(want) {
		t.Fatalf("cutoff = %v; want %v", r.cutoff, want)
	}
}

func TestScan_ListsBorrowers(t *testing.T) {
	r := &repoMock{rows: []borrowrepo.OverdueRow{
		{BorrowID: 1, UserEmail: "a@example.com", BookTitle: "Dune"},
		{BorrowID: 2, UserEmail: "b@example.com", BookTitle: "Neuromancer"},
	}}
	n := &notifyMock{}

	digest, err := scanner(r, n).Scan(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	want := "list of people that have to return book till tomorrow 23:59:\na@example.com\nb@example.com\ngood bye!"
	if digest != want {
		t.Fatalf("digest = %q; want %q", digest, want)
	}
}

func TestScan_NotifierFailureSwallowed(t *testing.T) {
	r := &repoMock{rows: []borrowrepo.OverdueRow{{UserEmail: "a@example.com"}}}
	n := &notifyMock{err: errors.New("telegram down")}

	digest, err := scanner(r, n).Scan(context.Background(), 1)
	if err != nil {
		t.Fatalf("notifier failure must not surface: %v", err)
	}
	if digest == "" {
		t.Fatal("digest still expected")
	}
}

func TestScan_RepoErrorSurfaces(t *testing.T) {
	r := &repoMock{err: errors.New("db down")}
	n := &notifyMock{}

	if _, err := scanner(r, n).Scan(context.Background(), 1); err == nil {
		t.Fatal("expected error")
	}
	if len(n.sent) != 0 {
		t.Fatal("nothing should be sent on error")
	}
}

func TestBorrowers_Restartable(t *testing.T) {
	rows := []borrowrepo.OverdueRow{
		{UserEmail: "a@example.com"},
		{UserEmail: "b@example.com"},
		{UserEmail: "c@example.com"},
	}
	seq := Borrowers(rows)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) {
		t.Fatalf("sequence not restartable: %v vs %v", first, second)
	}
	if !slices.Equal(first, []string{"a@example.com", "b@example.com", "c@example.com"}) {
		t.Fatalf("unexpected borrowers: %v", first)
	}

	// early break must not panic or drain the source
	for range seq {
		break
	}
	if got := slices.Collect(seq); len(got) != 3 {
		t.Fatalf("sequence drained after break: %v", got)
	}
}
