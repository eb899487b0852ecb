package viewpager

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ViewPager reads pages of a view. It keeps no state between calls: all of
// the navigation state travels in the page tokens, so a single ViewPager can
// serve concurrent callers.
type ViewPager[K, V, T any] struct {
	executor ViewExecutor[K, V, T]
	logger   *zap.Logger
}

func NewViewPager[K, V, T any](executor ViewExecutor[K, V, T]) *ViewPager[K, V, T] {
	return &ViewPager[K, V, T]{
		executor: executor,
		logger:   zap.NewNop(),
	}
}

// WithLogger returns a copy of the pager that writes debug records to logger.
func (p *ViewPager[K, V, T]) WithLogger(logger *zap.Logger) *ViewPager[K, V, T] {
	ret := p.clone()
	if logger == nil {
		logger = zap.NewNop()
	}
	ret.logger = logger

	return ret
}

// WithExecutor returns a copy of the pager reading through executor.
func (p *ViewPager[K, V, T]) WithExecutor(executor ViewExecutor[K, V, T]) *ViewPager[K, V, T] {
	ret := p.clone()
	ret.executor = executor

	return ret
}

// QueryPage returns the page the token points at, or the first page when the
// token is empty.
func (p *ViewPager[K, V, T]) QueryPage(ctx context.Context, pageSize int, token string) (*Page[T], error) {
	if token == "" {
		return p.QueryCursor(ctx, pageSize, nil)
	}

	cursor, err := DecodeToken(token)
	if err != nil {
		return nil, err
	}

	p.log().Debug("page token decoded",
		zap.String("action", string(cursor.Action)),
		zap.ByteString("start_key", cursor.StartKey),
		zap.String("start_key_doc_id", cursor.StartKeyDocID),
		zap.ByteString("current_key", cursor.Current.Key),
		zap.String("current_key_doc_id", cursor.Current.DocID),
	)

	return p.QueryCursor(ctx, pageSize, cursor)
}

// Query serves an API pagination payload. The page size is normalized.
func (p *ViewPager[K, V, T]) Query(ctx context.Context, raw RawViewPager) (*Page[T], error) {
	return p.QueryPage(ctx, NormalizePageSize(raw.Limit), raw.PageToken)
}

// QueryCursor returns the page an already decoded cursor points at. A nil
// cursor selects the first page.
func (p *ViewPager[K, V, T]) QueryCursor(ctx context.Context, pageSize int, cursor *PageCursor) (*Page[T], error) {
	err := p.validate(pageSize)
	if err != nil {
		return nil, fmt.Errorf("cannot query page: %w", err)
	}

	if cursor == nil {
		return p.nextPage(ctx, pageSize, nil)
	}

	if err = cursor.validate(); err != nil {
		return nil, fmt.Errorf("cannot query page: %w: %v", ErrInvalidToken, err)
	}

	if cursor.Action == ActionPrevious {
		return p.previousPage(ctx, pageSize, cursor)
	}

	return p.nextPage(ctx, pageSize, cursor)
}

// nextPage reads forward from the cursor start key. The row following the
// page becomes the start key of the next token; the first row of the page
// becomes the anchor both neighbor tokens carry.
func (p *ViewPager[K, V, T]) nextPage(ctx context.Context, pageSize int, cursor *PageCursor) (*Page[T], error) {
	req := PageRequest{
		Direction: DirectionForward,
		PageSize:  pageSize,
	}
	if cursor != nil {
		req.StartKey = cursor.StartKey
		req.StartKeyDocID = cursor.StartKeyDocID
	}

	res, err := p.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	rows := res.Rows
	anchor, err := rowAnchor(rows[0])
	if err != nil {
		return nil, err
	}

	page := &Page[T]{TotalResults: res.TotalRows}

	if len(rows) > pageSize {
		page.NextToken, err = nextToken(rows[pageSize], anchor)
		if err != nil {
			return nil, err
		}
		page.HasNext = true
		rows = rows[:pageSize]
	}

	if cursor != nil && res.Offset > 0 {
		page.PreviousToken, err = previousToken(cursor.Current, anchor)
		if err != nil {
			return nil, err
		}
		page.HasPrevious = true
	}

	page.ResultList = documents(rows)
	page.ResultFrom = res.Offset + 1
	page.ResultTo = res.Offset + int64(len(rows))
	page.PageNumber = ceilDiv(page.ResultFrom, int64(pageSize))

	p.logPage(req, page)

	return page, nil
}

// previousPage reads backward (descending) from the cursor anchor and
// restores ascending order. The last row after reversal is the anchor of the
// page being left, so it is excluded and starts the next token.
func (p *ViewPager[K, V, T]) previousPage(ctx context.Context, pageSize int, cursor *PageCursor) (*Page[T], error) {
	req := PageRequest{
		Direction:     DirectionBackward,
		StartKey:      cursor.Current.Key,
		StartKeyDocID: cursor.Current.DocID,
		PageSize:      pageSize,
	}

	res, err := p.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	rows := slices.Clone(res.Rows)
	slices.Reverse(rows)
	fetched := int64(len(rows))

	anchor, err := rowAnchor(rows[0])
	if err != nil {
		return nil, err
	}

	page := &Page[T]{TotalResults: res.TotalRows}

	if len(rows) > 1 && len(rows) >= pageSize {
		page.NextToken, err = nextToken(rows[len(rows)-1], anchor)
		if err != nil {
			return nil, err
		}
		page.HasNext = true
		rows = rows[:len(rows)-1]
	}

	// Ascending zero-based position of the first fetched row. For a full read
	// (pageSize+1 rows) this is zero exactly when
	// offset == totalRows - pageSize - 1.
	firstIndex := res.TotalRows - res.Offset - fetched
	if firstIndex > 0 {
		page.PreviousToken, err = previousToken(cursor.Current, anchor)
		if err != nil {
			return nil, err
		}
		page.HasPrevious = true
	}

	page.ResultList = documents(rows)
	page.ResultFrom = max(firstIndex, 0) + 1
	page.ResultTo = max(firstIndex, 0) + int64(len(rows))
	page.PageNumber = max(ceilDiv(page.ResultTo, int64(pageSize)), 1)

	p.logPage(req, page)

	return page, nil
}

func (p *ViewPager[K, V, T]) fetch(ctx context.Context, req PageRequest) (*ViewQueryResult[K, V, T], error) {
	res, err := p.executor.QueryView(ctx, BuildParams(req))
	if err != nil {
		return nil, &ExecutorError{Err: err}
	}

	if res == nil || len(res.Rows) == 0 {
		return nil, fmt.Errorf("cannot read %s page: %w", req.Direction, ErrEmptyResult)
	}

	return res, nil
}

func (p *ViewPager[K, V, T]) validate(pageSize int) error {
	if p == nil || p.executor == nil {
		return fmt.Errorf("view pager has no executor")
	}

	if pageSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}

	return nil
}

func (p *ViewPager[K, V, T]) clone() *ViewPager[K, V, T] {
	if p == nil {
		return &ViewPager[K, V, T]{logger: zap.NewNop()}
	}

	ret := *p
	return &ret
}

func (p *ViewPager[K, V, T]) log() *zap.Logger {
	if p == nil || p.logger == nil {
		return zap.NewNop()
	}

	return p.logger
}

func (p *ViewPager[K, V, T]) logPage(req PageRequest, page *Page[T]) {
	p.log().Debug("view page fetched",
		zap.String("direction", string(req.Direction)),
		zap.Int("page_size", req.PageSize),
		zap.Int64("page_number", page.PageNumber),
		zap.Int64("result_from", page.ResultFrom),
		zap.Int64("result_to", page.ResultTo),
		zap.Int64("total_results", page.TotalResults),
		zap.Bool("has_next", page.HasNext),
		zap.Bool("has_previous", page.HasPrevious),
	)
}

func rowAnchor[K, V, T any](row Row[K, V, T]) (CursorAnchor, error) {
	key, err := json.Marshal(row.Key)
	if err != nil {
		return CursorAnchor{}, fmt.Errorf("cannot marshal key of row '%s': %w", row.ID, err)
	}

	return CursorAnchor{Key: key, DocID: row.ID}, nil
}

func nextToken[K, V, T any](start Row[K, V, T], anchor CursorAnchor) (string, error) {
	target, err := rowAnchor(start)
	if err != nil {
		return "", err
	}

	return EncodeToken(PageCursor{
		Action:        ActionNext,
		StartKey:      target.Key,
		StartKeyDocID: target.DocID,
		Current:       anchor,
	})
}

// previousToken keeps the inbound anchor as the start key so that a backward
// read lands exactly on the current page boundary.
func previousToken(inbound, anchor CursorAnchor) (string, error) {
	return EncodeToken(PageCursor{
		Action:        ActionPrevious,
		StartKey:      inbound.Key,
		StartKeyDocID: inbound.DocID,
		Current:       anchor,
	})
}

func documents[K, V, T any](rows []Row[K, V, T]) []T {
	return lo.Map(rows, func(row Row[K, V, T], _ int) T {
		return lo.FromPtr(row.Doc)
	})
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
