package overduesvc

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"time"

	borrowrepo "librental/repository/borrow"
)

type Repo interface {
	ListDueBy(ctx context.Context, cutoff time.Time) ([]borrowrepo.OverdueRow, error)
}

type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Scanner produces the daily borrower digest: everyone whose book is due
// within the horizon and not yet returned.
type Scanner struct {
	r   Repo
	n   Notifier
	log *slog.Logger
	now func() time.Time
}

func New(r Repo, n Notifier, log *slog.Logger) *Scanner {
	return &Scanner{r: r, n: n, log: log, now: time.Now}
}

// Scan reads overdue borrows, builds the digest and sends it. The digest
// text is returned either way; a delivery failure is logged, never surfaced.
func (s *Scanner) Scan(ctx context.Context, horizonDays int) (string, error) {
	y, m, d := s.now().UTC().Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, horizonDays)

	rows, err := s.r.ListDueBy(ctx, cutoff)
	if err != nil {
		return "", err
	}

	digest := Digest(Borrowers(rows))
	if err := s.n.Send(ctx, digest); err != nil {
		s.log.Warn("overdue digest send failed", "err", err)
	}
	return digest, nil
}

// Borrowers exposes the borrower identities behind the rows as a restartable
// sequence; ranging over it twice replays from the start.
func Borrowers(rows []borrowrepo.OverdueRow) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, r := range rows {
			if !yield(r.UserEmail) {
				return
			}
		}
	}
}

// Digest renders the notification text sent to the librarians' channel.
func Digest(borrowers iter.Seq[string]) string {
	var sb strings.Builder
	empty := true
	for email := range borrowers {
		if empty {
			sb.WriteString("list of people that have to return book till tomorrow 23:59:")
			empty = false
		}
		sb.WriteString("\n")
		sb.WriteString(email)
	}
	if empty {
		return "No borrowings overdue today!"
	}
	sb.WriteString("\ngood bye!")
	return sb.String()
}
