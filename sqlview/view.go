// Package sqlview serves view range queries from a relational table through
// GORM. Each table row is one view row: (doc_id, view_key, value, doc).
package sqlview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/Alp4ka/viewpager"
)

const (
	DefaultTable = "view_rows"

	ColumnDocID = "doc_id"
	ColumnKey   = "view_key"
	ColumnValue = "value"
	ColumnDoc   = "doc"
)

// Record is the table model of a view row. K must map to a column type the
// database can order; V and T are stored as JSON.
type Record[K, V, T any] struct {
	DocID string `gorm:"column:doc_id;index:idx_view_key_doc_id,priority:2"`
	Key   K      `gorm:"column:view_key;index:idx_view_key_doc_id,priority:1"`
	Value V      `gorm:"column:value;serializer:json"`
	Doc   T      `gorm:"column:doc;serializer:json"`
}

type Options struct {
	// Table name, DefaultTable when empty.
	Table string
}

// View implements viewpager.ViewExecutor over a table.
type View[K, V, T any] struct {
	db    *gorm.DB
	table string
}

func New[K, V, T any](db *gorm.DB, opts Options) (*View[K, V, T], error) {
	if db == nil {
		return nil, fmt.Errorf("sqlview: nil gorm connection")
	}

	table := lo.Ternary(opts.Table == "", DefaultTable, opts.Table)
	if err := validateIdentifier(table); err != nil {
		return nil, fmt.Errorf("sqlview: invalid table: %w", err)
	}

	return &View[K, V, T]{
		db:    db,
		table: table,
	}, nil
}

// Migrate creates or updates the view table.
func (v *View[K, V, T]) Migrate(ctx context.Context) error {
	return v.db.WithContext(ctx).Table(v.table).AutoMigrate(&Record[K, V, T]{})
}

// Put stores view rows.
func (v *View[K, V, T]) Put(ctx context.Context, records ...Record[K, V, T]) error {
	if len(records) == 0 {
		return nil
	}

	return v.db.WithContext(ctx).Table(v.table).Create(&records).Error
}

// QueryView - implements viewpager.ViewExecutor.
//
// Total rows, offset and the page are read inside one transaction so the
// three numbers describe the same snapshot where the database isolation
// level allows it.
func (v *View[K, V, T]) QueryView(ctx context.Context, params viewpager.QueryParams) (*viewpager.ViewQueryResult[K, V, T], error) {
	direction := lo.Ternary(params.Descending, DirectionDESC, DirectionASC)
	orderings := viewOrderings(direction)
	if err := orderings.validate(); err != nil {
		return nil, err
	}

	var from, preceding tDNF
	if params.HasStartKey() {
		var key K
		if err := json.Unmarshal(params.StartKey, &key); err != nil {
			return nil, fmt.Errorf("cannot unmarshal start key: %w", err)
		}

		from, preceding = positionBounds(direction, key, params.StartKeyDocID)
	}

	var (
		records []Record[K, V, T]
		total   int64
		offset  int64
	)

	err := v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(v.table).Count(&total).Error; err != nil {
			return fmt.Errorf("cannot count view rows: %w", err)
		}

		if preceding != nil {
			if err := preceding.Apply(tx.Table(v.table)).Count(&offset).Error; err != nil {
				return fmt.Errorf("cannot count view offset: %w", err)
			}
		}

		query := orderings.Apply(from.Apply(tx.Table(v.table)))
		if params.Limit > 0 {
			query = query.Limit(params.Limit)
		}

		if err := query.Find(&records).Error; err != nil {
			return fmt.Errorf("cannot read view rows: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &viewpager.ViewQueryResult[K, V, T]{
		Rows: lo.Map(records, func(rec Record[K, V, T], _ int) viewpager.Row[K, V, T] {
			row := viewpager.Row[K, V, T]{
				ID:    rec.DocID,
				Key:   rec.Key,
				Value: rec.Value,
			}
			if params.IncludeDocs {
				row.Doc = lo.ToPtr(rec.Doc)
			}

			return row
		}),
		TotalRows: total,
		Offset:    offset,
	}, nil
}

var _ viewpager.ViewExecutor[string, any, any] = (*View[string, any, any])(nil)
