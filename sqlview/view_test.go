package sqlview

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Alp4ka/viewpager"
)

type tDoc struct {
	Name string `json:"name"`
}

const (
	_qTable       = "[`'\"]view_rows[`'\"]"
	_qPlaceholder = "(?:\\$\\d|\\?)"
)

func Test_New(t *testing.T) {
	_, db, _, err := newGORMPostgresMock()
	require.NoError(t, err)

	_, err = New[string, int, tDoc](nil, Options{})
	require.Error(t, err)

	_, err = New[string, int, tDoc](db, Options{Table: "rows; DROP TABLE users"})
	require.Error(t, err)

	v, err := New[string, int, tDoc](db, Options{})
	require.NoError(t, err)
	require.Equal(t, DefaultTable, v.table)
}

func Test_View_QueryView(t *testing.T) {
	sqlMockFnList := []func() (string, *gorm.DB, sqlmock.Sqlmock, error){
		newGORMMySQLMock,
		newGORMPostgresMock,
	}

	tests := []struct {
		name           string
		params         viewpager.QueryParams
		expectOffset   bool
		offsetQuery    string
		offsetArgs     []driver.Value
		offset         int64
		expectedQuery  string
		expectedArgs   []driver.Value
		expectedRows   *sqlmock.Rows
		expectedResult *viewpager.ViewQueryResult[string, int, tDoc]
	}{
		{
			name:          "first page ascending",
			params:        viewpager.QueryParams{Limit: 4, IncludeDocs: true},
			expectedQuery: "^SELECT \\* FROM " + _qTable + " ORDER BY view_key ASC, doc_id ASC LIMIT 4$",
			expectedRows: sqlmock.NewRows([]string{"doc_id", "view_key", "value", "doc"}).
				AddRow("d1", "a", "1", `{"name":"one"}`).
				AddRow("d2", "b", "2", `{"name":"two"}`),
			expectedResult: &viewpager.ViewQueryResult[string, int, tDoc]{
				Rows: []viewpager.Row[string, int, tDoc]{
					{ID: "d1", Key: "a", Value: 1, Doc: &tDoc{Name: "one"}},
					{ID: "d2", Key: "b", Value: 2, Doc: &tDoc{Name: "two"}},
				},
				TotalRows: 7,
				Offset:    0,
			},
		},
		{
			name: "start key ascending",
			params: viewpager.QueryParams{
				StartKey:      json.RawMessage(`"b"`),
				StartKeyDocID: "d2",
				Limit:         4,
				IncludeDocs:   true,
			},
			expectOffset: true,
			offsetQuery: "^SELECT count\\(\\*\\) FROM " + _qTable +
				" WHERE \\(view_key < " + _qPlaceholder + " OR \\(view_key = " + _qPlaceholder + " AND doc_id < " + _qPlaceholder + "\\)\\)$",
			offsetArgs: []driver.Value{"b", "b", "d2"},
			offset:     1,
			expectedQuery: "^SELECT \\* FROM " + _qTable +
				" WHERE \\(view_key > " + _qPlaceholder + " OR \\(view_key = " + _qPlaceholder + " AND doc_id >= " + _qPlaceholder + "\\)\\)" +
				" ORDER BY view_key ASC, doc_id ASC LIMIT 4$",
			expectedArgs: []driver.Value{"b", "b", "d2"},
			expectedRows: sqlmock.NewRows([]string{"doc_id", "view_key", "value", "doc"}).
				AddRow("d2", "b", "2", `{"name":"two"}`),
			expectedResult: &viewpager.ViewQueryResult[string, int, tDoc]{
				Rows: []viewpager.Row[string, int, tDoc]{
					{ID: "d2", Key: "b", Value: 2, Doc: &tDoc{Name: "two"}},
				},
				TotalRows: 7,
				Offset:    1,
			},
		},
		{
			name: "start key descending without docs",
			params: viewpager.QueryParams{
				StartKey:      json.RawMessage(`"d"`),
				StartKeyDocID: "d4",
				Limit:         4,
				Descending:    true,
			},
			expectOffset: true,
			offsetQuery: "^SELECT count\\(\\*\\) FROM " + _qTable +
				" WHERE \\(view_key > " + _qPlaceholder + " OR \\(view_key = " + _qPlaceholder + " AND doc_id > " + _qPlaceholder + "\\)\\)$",
			offsetArgs: []driver.Value{"d", "d", "d4"},
			offset:     3,
			expectedQuery: "^SELECT \\* FROM " + _qTable +
				" WHERE \\(view_key < " + _qPlaceholder + " OR \\(view_key = " + _qPlaceholder + " AND doc_id <= " + _qPlaceholder + "\\)\\)" +
				" ORDER BY view_key DESC, doc_id DESC LIMIT 4$",
			expectedArgs: []driver.Value{"d", "d", "d4"},
			expectedRows: sqlmock.NewRows([]string{"doc_id", "view_key", "value", "doc"}).
				AddRow("d4", "d", "4", `{"name":"four"}`).
				AddRow("d3", "c", "3", `{"name":"three"}`),
			expectedResult: &viewpager.ViewQueryResult[string, int, tDoc]{
				Rows: []viewpager.Row[string, int, tDoc]{
					{ID: "d4", Key: "d", Value: 4},
					{ID: "d3", Key: "c", Value: 3},
				},
				TotalRows: 7,
				Offset:    3,
			},
		},
		{
			name: "start key without doc id",
			params: viewpager.QueryParams{
				StartKey:    json.RawMessage(`"c"`),
				Limit:       2,
				IncludeDocs: true,
			},
			expectOffset:  true,
			offsetQuery:   "^SELECT count\\(\\*\\) FROM " + _qTable + " WHERE view_key < " + _qPlaceholder + "$",
			offsetArgs:    []driver.Value{"c"},
			offset:        2,
			expectedQuery: "^SELECT \\* FROM " + _qTable + " WHERE view_key >= " + _qPlaceholder + " ORDER BY view_key ASC, doc_id ASC LIMIT 2$",
			expectedArgs:  []driver.Value{"c"},
			expectedRows:  sqlmock.NewRows([]string{"doc_id", "view_key", "value", "doc"}),
			expectedResult: &viewpager.ViewQueryResult[string, int, tDoc]{
				Rows:      []viewpager.Row[string, int, tDoc]{},
				TotalRows: 7,
				Offset:    2,
			},
		},
	}

	for _, sqlMockFn := range sqlMockFnList {
		for _, tt := range tests {
			dialect, db, dbMock, err := sqlMockFn()
			t.Run(fmt.Sprintf("%s %s", dialect, tt.name), func(t *testing.T) {
				require.NoError(t, err)

				dbMock.ExpectBegin()
				dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM " + _qTable + "$").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
				if tt.expectOffset {
					dbMock.ExpectQuery(tt.offsetQuery).
						WithArgs(tt.offsetArgs...).
						WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.offset))
				}
				expectation := dbMock.ExpectQuery(tt.expectedQuery)
				if len(tt.expectedArgs) > 0 {
					expectation = expectation.WithArgs(tt.expectedArgs...)
				}
				expectation.WillReturnRows(tt.expectedRows)
				dbMock.ExpectCommit()

				v, err := New[string, int, tDoc](db, Options{})
				require.NoError(t, err)

				res, err := v.QueryView(context.Background(), tt.params)
				require.NoError(t, err)
				require.Equal(t, tt.expectedResult, res)

				assert.NoError(t, dbMock.ExpectationsWereMet())
			})
		}
	}
}

func Test_View_QueryView_CountError(t *testing.T) {
	_, db, dbMock, err := newGORMPostgresMock()
	require.NoError(t, err)

	failure := errors.New("connection reset")
	dbMock.ExpectBegin()
	dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM " + _qTable + "$").WillReturnError(failure)
	dbMock.ExpectRollback()

	v, err := New[string, int, tDoc](db, Options{})
	require.NoError(t, err)

	_, err = v.QueryView(context.Background(), viewpager.QueryParams{Limit: 4})
	require.ErrorIs(t, err, failure)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_View_QueryView_BadStartKey(t *testing.T) {
	_, db, dbMock, err := newGORMPostgresMock()
	require.NoError(t, err)

	v, err := New[int, int, tDoc](db, Options{})
	require.NoError(t, err)

	_, err = v.QueryView(context.Background(), viewpager.QueryParams{
		StartKey: json.RawMessage(`"not a number"`),
		Limit:    4,
	})
	require.Error(t, err)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
