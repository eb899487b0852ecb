package viewpager

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var _encoder = base64.RawURLEncoding

// Action selects the direction a PageCursor navigates to.
type Action string

const (
	ActionNext     Action = "n"
	ActionPrevious Action = "p"
)

func (a Action) Valid() bool {
	return a == ActionNext || a == ActionPrevious
}

// CursorAnchor is the (key, doc id) pair of the first row of the page that
// issued a token.
type CursorAnchor struct {
	Key   json.RawMessage
	DocID string
}

// PageCursor is the decoded form of a page token.
//
// StartKey/StartKeyDocID point at the first row of the target page for
// ActionNext. Current is the anchor of the page the token was issued by; an
// ActionPrevious cursor reads backward from it.
type PageCursor struct {
	Action        Action
	StartKey      json.RawMessage
	StartKeyDocID string
	Current       CursorAnchor
}

// Wire representation. Pointers detect missing fields on decode.
type (
	tokenAnchor struct {
		Key   json.RawMessage `json:"c_k"`
		DocID *string         `json:"c_k_d_i"`
	}

	tokenBody struct {
		StartKey      json.RawMessage `json:"s_k"`
		StartKeyDocID *string         `json:"s_k_d_i"`
		Current       *tokenAnchor    `json:"c"`
		Action        *Action         `json:"a"`
	}
)

// EncodeToken serializes the cursor to an opaque URL-safe token.
func EncodeToken(c PageCursor) (string, error) {
	if err := c.validate(); err != nil {
		return "", fmt.Errorf("cannot encode page token: %w", err)
	}

	jTok, err := json.Marshal(tokenBody{
		StartKey:      c.StartKey,
		StartKeyDocID: &c.StartKeyDocID,
		Current: &tokenAnchor{
			Key:   c.Current.Key,
			DocID: &c.Current.DocID,
		},
		Action: &c.Action,
	})
	if err != nil {
		return "", fmt.Errorf("cannot marshal page token: %w", err)
	}

	return _encoder.EncodeToString(jTok), nil
}

// DecodeToken parses a token produced by EncodeToken. Padded base64 input is
// accepted as well. Any failure matches ErrInvalidToken.
func DecodeToken(token string) (*PageCursor, error) {
	jsonData, err := _encoder.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64 encoded token: %v", ErrInvalidToken, err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.DisallowUnknownFields()

	var body tokenBody
	if err = dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal json encoded token: %v", ErrInvalidToken, err)
	}
	if _, err = dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after token body", ErrInvalidToken)
	}

	switch {
	case body.Action == nil:
		return nil, fmt.Errorf("%w: missing field 'a'", ErrInvalidToken)
	case body.StartKeyDocID == nil:
		return nil, fmt.Errorf("%w: missing field 's_k_d_i'", ErrInvalidToken)
	case body.Current == nil:
		return nil, fmt.Errorf("%w: missing field 'c'", ErrInvalidToken)
	case body.Current.DocID == nil:
		return nil, fmt.Errorf("%w: missing field 'c_k_d_i'", ErrInvalidToken)
	}

	c := &PageCursor{
		Action:        *body.Action,
		StartKey:      body.StartKey,
		StartKeyDocID: *body.StartKeyDocID,
		Current: CursorAnchor{
			Key:   body.Current.Key,
			DocID: *body.Current.DocID,
		},
	}
	if err = c.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return c, nil
}

// String - implements fmt.Stringer.
func (c *PageCursor) String() string {
	if c == nil {
		return ""
	}

	tok, err := EncodeToken(*c)
	if err != nil {
		panic(err)
	}

	return tok
}

// IsNext returns true if the cursor navigates forward.
func (c *PageCursor) IsNext() bool {
	return c != nil && c.Action == ActionNext
}

func (c *PageCursor) validate() error {
	if !c.Action.Valid() {
		return fmt.Errorf("invalid action '%s'", c.Action)
	}

	// JSON null is a legal view key; an absent key is not.
	if len(c.StartKey) == 0 {
		return fmt.Errorf("missing field 's_k'")
	}
	if len(c.Current.Key) == 0 {
		return fmt.Errorf("missing field 'c_k'")
	}

	return nil
}

var _ fmt.Stringer = (*PageCursor)(nil)
