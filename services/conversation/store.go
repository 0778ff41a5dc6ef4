package conversation

import (
	"context"

	"tempobook/models"
)

// Store is the durable per-identity conversation log. Appends are unbounded
// history-wise up to a trim length; reads return a bounded recent window,
// oldest first.
type Store interface {
	Append(ctx context.Context, identity string, turn models.Turn) error
	Recent(ctx context.Context, identity string, maxCount int) ([]models.Turn, error)
	Clear(ctx context.Context, identity string) error
}
