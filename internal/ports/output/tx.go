package output

import (
	"context"
	"time"
)

// TxManager runs fn in a transaction carried by the context it passes to fn.
// Repositories called with that context join the transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// WithinSerializableTx is WithinTx at serializable isolation, retried on
	// serialization failures.
	WithinSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// TokenGenerator produces opaque high-entropy secrets.
type TokenGenerator interface {
	NewToken() (string, error)
}
