package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/teranos/i18n-sheets/config"
	"github.com/teranos/i18n-sheets/errors"
	"github.com/teranos/i18n-sheets/table"
)

// fakeSheets serves the three Sheets endpoints the client uses
type fakeSheets struct {
	mu       sync.Mutex
	values   [][]interface{}
	sheets   []*sheetsapi.Sheet
	status   int
	batches  []*sheetsapi.BatchUpdateSpreadsheetRequest
	gotRange string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"denied"}}`, f.status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		f.gotRange = r.URL.Path[strings.Index(r.URL.Path, "/values/")+len("/values/"):]
		_ = json.NewEncoder(w).Encode(&sheetsapi.ValueRange{Values: f.values})
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(&sheetsapi.Spreadsheet{Sheets: f.sheets})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		var req sheetsapi.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.batches = append(f.batches, &req)
		_ = json.NewEncoder(w).Encode(&sheetsapi.BatchUpdateSpreadsheetResponse{})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func sheetWithGrid(id int64, title string, rows, cols int64) *sheetsapi.Sheet {
	return &sheetsapi.Sheet{Properties: &sheetsapi.SheetProperties{
		SheetId:        id,
		Title:          title,
		GridProperties: &sheetsapi.GridProperties{RowCount: rows, ColumnCount: cols},
	}}
}

func newTestClient(t *testing.T, f *fakeSheets, cfg config.SheetConfig) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	if cfg.SpreadsheetID == "" {
		cfg.SpreadsheetID = "sheet-123"
	}
	c, err := New(context.Background(), cfg, 2,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestFetch(t *testing.T) {
	f := &fakeSheets{values: [][]interface{}{
		{"Domain", "Key", "ko", "en"},
		{"account", "title", "계정", "Account"},
		{"account", "retries", 3.0},
		{"common", "ok", "", true},
	}}
	c := newTestClient(t, f, config.SheetConfig{})

	got, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, table.Table{
		{"Domain", "Key", "ko", "en"},
		{"account", "title", "계정", "Account"},
		{"account", "retries", "3"},
		{"common", "ok", "", "true"},
	}, got)
	assert.Equal(t, "A:D", f.gotRange)
}

func TestFetchEmptySheet(t *testing.T) {
	c := newTestClient(t, &fakeSheets{}, config.SheetConfig{Range: "Translations!A1:D"})

	got, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReplaceSingleBatch(t *testing.T) {
	f := &fakeSheets{sheets: []*sheetsapi.Sheet{sheetWithGrid(7, "Sheet1", 1000, 26)}}
	c := newTestClient(t, f, config.SheetConfig{})

	tbl := table.Table{
		{"Domain", "Key", "ko", "en"},
		{"account", "title", "계정", "Account"},
		{"common", "ok", "확인"},
	}
	require.NoError(t, c.Replace(context.Background(), tbl))

	require.Len(t, f.batches, 1)
	reqs := f.batches[0].Requests
	require.Len(t, reqs, 4)

	clear := reqs[0].UpdateCells
	require.NotNil(t, clear)
	assert.Equal(t, "userEnteredValue", clear.Fields)
	assert.Equal(t, int64(7), clear.Range.SheetId)
	assert.Equal(t, int64(4), clear.Range.EndColumnIndex)
	assert.Zero(t, clear.Range.EndRowIndex, "open row bound clears every row")
	assert.Empty(t, clear.Rows)

	write := reqs[1].UpdateCells
	require.NotNil(t, write)
	require.Len(t, write.Rows, 3)
	assert.Equal(t, "계정", *write.Rows[1].Values[2].UserEnteredValue.StringValue)
	assert.Len(t, write.Rows[2].Values, 3)

	header := reqs[2].RepeatCell
	require.NotNil(t, header)
	assert.True(t, header.Cell.UserEnteredFormat.TextFormat.Bold)
	assert.Equal(t, int64(1), header.Range.EndRowIndex)
	assert.Equal(t, int64(4), header.Range.EndColumnIndex)

	require.NotNil(t, reqs[3].AutoResizeDimensions)
	assert.Equal(t, "COLUMNS", reqs[3].AutoResizeDimensions.Dimensions.Dimension)
}

func TestReplaceGrowsGrid(t *testing.T) {
	f := &fakeSheets{sheets: []*sheetsapi.Sheet{sheetWithGrid(0, "Sheet1", 2, 3)}}
	c := newTestClient(t, f, config.SheetConfig{})

	tbl := table.Table{
		{"Domain", "Key", "ko", "en"},
		{"a", "k1", "1", "1"},
		{"a", "k2", "2", "2"},
	}
	require.NoError(t, c.Replace(context.Background(), tbl))

	require.Len(t, f.batches, 1)
	reqs := f.batches[0].Requests
	require.NotNil(t, reqs[0].AppendDimension)
	assert.Equal(t, "ROWS", reqs[0].AppendDimension.Dimension)
	assert.Equal(t, int64(1), reqs[0].AppendDimension.Length)
	require.NotNil(t, reqs[1].AppendDimension)
	assert.Equal(t, "COLUMNS", reqs[1].AppendDimension.Dimension)
	assert.Equal(t, int64(1), reqs[1].AppendDimension.Length)
	require.NotNil(t, reqs[2].UpdateCells)
}

func TestReplaceEmptyTableOnlyClears(t *testing.T) {
	f := &fakeSheets{sheets: []*sheetsapi.Sheet{sheetWithGrid(0, "Sheet1", 100, 4)}}
	c := newTestClient(t, f, config.SheetConfig{})

	require.NoError(t, c.Replace(context.Background(), nil))
	require.Len(t, f.batches, 1)
	require.Len(t, f.batches[0].Requests, 1)
	assert.NotNil(t, f.batches[0].Requests[0].UpdateCells)
}

func TestReplaceNamedSheet(t *testing.T) {
	f := &fakeSheets{sheets: []*sheetsapi.Sheet{
		sheetWithGrid(1, "Notes", 100, 10),
		sheetWithGrid(42, "Translations", 100, 10),
	}}
	c := newTestClient(t, f, config.SheetConfig{Range: "Translations!A1:D"})

	require.NoError(t, c.Replace(context.Background(), table.Table{{"Domain", "Key", "ko", "en"}}))
	require.Len(t, f.batches, 1)
	assert.Equal(t, int64(42), f.batches[0].Requests[0].UpdateCells.Range.SheetId)
}

func TestReplaceUnknownSheet(t *testing.T) {
	f := &fakeSheets{sheets: []*sheetsapi.Sheet{sheetWithGrid(0, "Sheet1", 100, 10)}}
	c := newTestClient(t, f, config.SheetConfig{Range: "Missing!A:D"})

	err := c.Replace(context.Background(), table.Table{{"Domain", "Key", "ko", "en"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
	assert.Contains(t, errors.FlattenHints(err), "Sheet1")
	assert.Empty(t, f.batches)
}

func TestReplaceRejectsOverflow(t *testing.T) {
	f := &fakeSheets{sheets: []*sheetsapi.Sheet{sheetWithGrid(0, "Sheet1", 100, 10)}}
	c := newTestClient(t, f, config.SheetConfig{Range: "A1:D2"})

	err := c.Replace(context.Background(), table.Table{
		{"Domain", "Key", "ko", "en"},
		{"a", "k1", "1", "1"},
		{"a", "k2", "2", "2"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
	assert.Empty(t, f.batches, "nothing is sent when the table cannot fit")

	c = newTestClient(t, f, config.SheetConfig{Range: "A:C"})
	err = c.Replace(context.Background(), table.Table{{"Domain", "Key", "ko", "en"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns")
}

func TestAPIErrorHints(t *testing.T) {
	tests := []struct {
		status int
		hint   string
	}{
		{http.StatusForbidden, "share the spreadsheet with bot@example.iam.gserviceaccount.com"},
		{http.StatusNotFound, config.EnvSpreadsheetID},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f := &fakeSheets{status: tt.status}
			c := newTestClient(t, f, config.SheetConfig{ClientEmail: "bot@example.iam.gserviceaccount.com"})

			_, err := c.Fetch(context.Background())
			require.Error(t, err)
			assert.Contains(t, errors.FlattenHints(err), tt.hint)
		})
	}
}

func TestCredentialOptions(t *testing.T) {
	ctx := context.Background()

	_, err := CredentialOptions(ctx, config.SheetConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))

	opts, err := CredentialOptions(ctx, config.SheetConfig{ClientEmail: "bot@example.com", PrivateKey: "key"})
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	opts, err = CredentialOptions(ctx, config.SheetConfig{CredentialsFile: "/tmp/sa.json"})
	require.NoError(t, err)
	assert.Len(t, opts, 2)
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "", cellText(nil))
	assert.Equal(t, "hi", cellText("hi"))
	assert.Equal(t, "1.5", cellText(1.5))
	assert.Equal(t, "false", cellText(false))
}
