package telegramrepo

import "context"

// Repo delivers outbound notifications. Delivery is best effort: callers log
// failures and carry on, the borrowing flow never blocks on it.
type Repo interface {
	Send(ctx context.Context, text string) error
}
