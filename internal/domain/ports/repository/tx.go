package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// TransactionManager provides a thin abstraction to execute a function within a
// database transaction, passing the underlying transaction handle via `tx`.
//
// Every orchestration path that reads a Report/Asset/Job status and then writes
// a new one runs inside one WithTx scope so the read and the write are atomic
// with respect to other workers. The concrete type of `tx` is infra-defined
// (pgx.Tx for Postgres); repositories accept nil for the non-transactional path.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
