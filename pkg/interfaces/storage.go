package interfaces

import "context"

// StorageProvider executes named operations against an artifact store. The
// generator addresses storage through operation strings so filesystem, memory
// and remote backends share one contract.
type StorageProvider interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (Result, error)
}

// Rows iterates query results.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// Result reports the outcome of an Exec call.
type Result interface {
	RowsAffected() (int64, error)
}
