package viewpager

import "context"

// Row is a single view row. Doc is nil when documents were not included or
// the document no longer exists.
type Row[K, V, T any] struct {
	ID    string
	Key   K
	Value V
	Doc   *T
}

// ViewQueryResult is the outcome of a single view range query.
type ViewQueryResult[K, V, T any] struct {
	// Rows in scan order (descending when QueryParams.Descending is set).
	Rows []Row[K, V, T]
	// TotalRows is the number of rows in the whole view.
	TotalRows int64
	// Offset is the position of Rows[0] within the unbounded scan in the
	// same direction.
	Offset int64
}

// ViewExecutor runs a range query against a view.
//
// Implementations must order rows by (key, id) for a fixed direction and
// report Offset as if reading from the true beginning of the view in that
// direction.
type ViewExecutor[K, V, T any] interface {
	QueryView(ctx context.Context, params QueryParams) (*ViewQueryResult[K, V, T], error)
}

// ViewExecutorFunc adapts a function to ViewExecutor.
type ViewExecutorFunc[K, V, T any] func(ctx context.Context, params QueryParams) (*ViewQueryResult[K, V, T], error)

// QueryView - implements ViewExecutor.
func (f ViewExecutorFunc[K, V, T]) QueryView(ctx context.Context, params QueryParams) (*ViewQueryResult[K, V, T], error) {
	return f(ctx, params)
}
