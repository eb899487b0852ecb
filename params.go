package viewpager

import "encoding/json"

// Direction defines the scan direction of a view read.
type Direction string

const (
	DirectionForward  Direction = "FORWARD"
	DirectionBackward Direction = "BACKWARD"
)

func (d Direction) Valid() bool {
	return d == DirectionForward || d == DirectionBackward
}

// PageRequest is the pagination state a single view read is derived from.
type PageRequest struct {
	Direction     Direction
	StartKey      json.RawMessage
	StartKeyDocID string
	PageSize      int
}

// QueryParams are the range query parameters handed to a ViewExecutor.
// A nil StartKey means the scan starts at the beginning of the view in the
// requested direction.
type QueryParams struct {
	StartKey      json.RawMessage
	StartKeyDocID string
	Limit         int
	Descending    bool
	IncludeDocs   bool
}

// HasStartKey returns true if the scan is bounded by a start position.
func (p QueryParams) HasStartKey() bool {
	return len(p.StartKey) != 0
}

// BuildParams translates pagination state into view query parameters. One
// extra row is always requested to detect whether a further page exists.
func BuildParams(req PageRequest) QueryParams {
	params := QueryParams{
		Limit:       req.PageSize + 1,
		IncludeDocs: true,
		Descending:  req.Direction == DirectionBackward,
	}

	if len(req.StartKey) != 0 {
		params.StartKey = req.StartKey
		params.StartKeyDocID = req.StartKeyDocID
	}

	return params
}
