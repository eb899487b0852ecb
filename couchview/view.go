package couchview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/samber/lo"

	"github.com/Alp4ka/viewpager"
)

type (
	viewQuery struct {
		StartKey      string `url:"startkey,omitempty"`
		StartKeyDocID string `url:"startkey_docid,omitempty"`
		Limit         int    `url:"limit,omitempty"`
		Descending    bool   `url:"descending,omitempty"`
		IncludeDocs   bool   `url:"include_docs,omitempty"`
	}

	viewRow[K, V, T any] struct {
		ID    string `json:"id"`
		Key   K      `json:"key"`
		Value V      `json:"value"`
		Doc   *T     `json:"doc"`
	}

	viewResponse[K, V, T any] struct {
		TotalRows int64              `json:"total_rows"`
		Offset    int64              `json:"offset"`
		Rows      []viewRow[K, V, T] `json:"rows"`
	}
)

// View implements viewpager.ViewExecutor over a CouchDB view.
type View[K, V, T any] struct {
	client *Client
	path   string
}

// NewView binds a view of database db. viewID is either "design/view" for a
// design document view or a special view path such as "_all_docs".
func NewView[K, V, T any](client *Client, db, viewID string) (*View[K, V, T], error) {
	if client == nil {
		return nil, fmt.Errorf("couchview: nil client")
	}
	if db == "" || viewID == "" {
		return nil, fmt.Errorf("couchview: database and view id are required")
	}

	viewPath := viewID
	if design, name, ok := strings.Cut(viewID, "/"); ok {
		viewPath = fmt.Sprintf("_design/%s/_view/%s", url.PathEscape(design), url.PathEscape(name))
	}

	return &View[K, V, T]{
		client: client,
		path:   url.PathEscape(db) + "/" + viewPath,
	}, nil
}

// QueryView - implements viewpager.ViewExecutor.
func (v *View[K, V, T]) QueryView(ctx context.Context, params viewpager.QueryParams) (*viewpager.ViewQueryResult[K, V, T], error) {
	values, err := query.Values(viewQuery{
		StartKey:      lo.Ternary(params.HasStartKey(), string(params.StartKey), ""),
		StartKeyDocID: params.StartKeyDocID,
		Limit:         params.Limit,
		Descending:    params.Descending,
		IncludeDocs:   params.IncludeDocs,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot encode view query: %w", err)
	}

	body, err := v.client.get(ctx, v.path, values)
	if err != nil {
		return nil, err
	}

	var res viewResponse[K, V, T]
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("cannot unmarshal view result: %w", err)
	}

	return &viewpager.ViewQueryResult[K, V, T]{
		Rows: lo.Map(res.Rows, func(row viewRow[K, V, T], _ int) viewpager.Row[K, V, T] {
			return viewpager.Row[K, V, T](row)
		}),
		TotalRows: res.TotalRows,
		Offset:    res.Offset,
	}, nil
}

var _ viewpager.ViewExecutor[string, any, any] = (*View[string, any, any])(nil)
