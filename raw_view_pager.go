package viewpager

import "fmt"

// RawViewPager is intended for API payloads. For proper code generation, inline it:
//
//	type MyFilter struct {
//	    Paging RawViewPager `json:",inline"`
//	}
type RawViewPager struct {
	// Limit - maximum number of documents to return in the response.
	Limit int `json:"limit"`
	// PageToken - token obtained from Page.NextToken or Page.PreviousToken.
	// If empty, the first page with Limit documents is returned.
	PageToken string `json:"pageToken"`
}

// Decode normalizes Limit and validates PageToken. A nil cursor selects the
// first page.
func (r RawViewPager) Decode() (int, *PageCursor, error) {
	pageSize := NormalizePageSize(r.Limit)
	if r.PageToken == "" {
		return pageSize, nil, nil
	}

	cursor, err := DecodeToken(r.PageToken)
	if err != nil {
		return 0, nil, fmt.Errorf("cannot decode view pager: %w", err)
	}

	return pageSize, cursor, nil
}
