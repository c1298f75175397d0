// Package notification derives the unread-conversation badge count. The
// messaging entities themselves live elsewhere; this is a count query only.
package notification

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Counter answers "how many conversations has this address not seen yet".
type Counter interface {
	UnreadCount(ctx context.Context, email string) (int, error)
}

type PgCounter struct {
	pool *pgxpool.Pool
}

func NewPgCounter(pool *pgxpool.Pool) *PgCounter {
	return &PgCounter{pool: pool}
}

// UnreadCount counts conversations the address belongs to but has not seen.
func (c *PgCounter) UnreadCount(ctx context.Context, email string) (int, error) {
	var count int
	err := c.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM conversations
		WHERE $1 = ANY(member_emails)
		  AND NOT ($1 = ANY(seen_by))
	`, email).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread conversations: %w", err)
	}
	return count, nil
}
