package viewpager

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_BuildParams(t *testing.T) {
	tests := []struct {
		name string
		req  PageRequest
		want QueryParams
	}{
		{
			name: "first forward page has no start key",
			req:  PageRequest{Direction: DirectionForward, PageSize: 3},
			want: QueryParams{Limit: 4, IncludeDocs: true},
		},
		{
			name: "doc id without start key is dropped",
			req:  PageRequest{Direction: DirectionForward, StartKeyDocID: "d", PageSize: 3},
			want: QueryParams{Limit: 4, IncludeDocs: true},
		},
		{
			name: "forward with start key",
			req:  PageRequest{Direction: DirectionForward, StartKey: json.RawMessage(`"k"`), StartKeyDocID: "d", PageSize: 10},
			want: QueryParams{StartKey: json.RawMessage(`"k"`), StartKeyDocID: "d", Limit: 11, IncludeDocs: true},
		},
		{
			name: "backward reads descending",
			req:  PageRequest{Direction: DirectionBackward, StartKey: json.RawMessage(`["a",1]`), StartKeyDocID: "d", PageSize: 5},
			want: QueryParams{StartKey: json.RawMessage(`["a",1]`), StartKeyDocID: "d", Limit: 6, Descending: true, IncludeDocs: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildParams(tt.req)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.want.StartKey != nil, got.HasStartKey())
		})
	}
}

func Test_Direction_Valid(t *testing.T) {
	require.True(t, DirectionForward.Valid())
	require.True(t, DirectionBackward.Valid())
	require.False(t, Direction("SIDEWAYS").Valid())
}
