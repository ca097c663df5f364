package persistence

import "context"

// TxManager runs fn inside a unit of work. The transaction travels in txCtx;
// repositories resolve it from there. A nested call joins the outer unit of work.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error)
}
