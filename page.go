package viewpager

// Page is one page of view results.
type Page[T any] struct {
	// ResultList documents of the page in ascending key order.
	ResultList []T `json:"resultList"`
	// HasNext is true if a following page exists.
	HasNext bool `json:"hasNext"`
	// HasPrevious is true if a preceding page exists.
	HasPrevious bool `json:"hasPrevious"`
	// NextToken token for the following page. Empty when HasNext is false.
	NextToken string `json:"nextToken,omitempty"`
	// PreviousToken token for the preceding page. Empty when HasPrevious is false.
	PreviousToken string `json:"previousToken,omitempty"`
	// ResultFrom 1-based position of the first element within the whole view.
	ResultFrom int64 `json:"resultFrom"`
	// ResultTo 1-based position of the last element within the whole view.
	ResultTo int64 `json:"resultTo"`
	// PageNumber 1-based page number.
	PageNumber int64 `json:"pageNumber"`
	// TotalResults number of rows in the view.
	TotalResults int64 `json:"totalResults"`
}

// IsFirst returns true if the page has no predecessor.
func (p *Page[T]) IsFirst() bool {
	return p == nil || !p.HasPrevious
}

// IsLast returns true if the page has no successor.
func (p *Page[T]) IsLast() bool {
	return p == nil || !p.HasNext
}
