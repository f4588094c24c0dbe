// Package sheets stores translation tables in a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/teranos/i18n-sheets/config"
	"github.com/teranos/i18n-sheets/errors"
	"github.com/teranos/i18n-sheets/logger"
	"github.com/teranos/i18n-sheets/table"
)

// Sheets allows 60 requests per minute per user; stay under it.
const (
	requestInterval = time.Second
	requestBurst    = 5
)

// Header row presentation
var headerBackground = &sheetsapi.Color{Red: 0.9, Green: 0.9, Blue: 0.9}

// Client is a table.TableStore backed by one range of a spreadsheet.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	rangeA1       string
	bounds        a1Range
	clientEmail   string
	limiter       *rate.Limiter
	logger        *zap.SugaredLogger
}

var _ table.TableStore = (*Client)(nil)

// New creates a client for the spreadsheet in cfg. locales is the number of
// locale columns, used to derive a range when cfg.Range is empty.
// Without opts, credentials are taken from cfg.
func New(ctx context.Context, cfg config.SheetConfig, locales int, opts ...option.ClientOption) (*Client, error) {
	if len(opts) == 0 {
		creds, err := CredentialOptions(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = creds
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.WrapConfig(err, "failed to create sheets client")
	}

	rangeA1 := cfg.Range
	if rangeA1 == "" {
		rangeA1 = DefaultRange(locales)
	}
	bounds, err := parseA1(rangeA1)
	if err != nil {
		return nil, errors.WrapConfig(err, "invalid sheet range")
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		rangeA1:       rangeA1,
		bounds:        bounds,
		clientEmail:   cfg.ClientEmail,
		limiter:       rate.NewLimiter(rate.Every(requestInterval), requestBurst),
		logger:        logger.ComponentLogger("sheets"),
	}, nil
}

// CredentialOptions builds the auth options for cfg: inline service account
// credentials win over a credentials file.
func CredentialOptions(ctx context.Context, cfg config.SheetConfig) ([]option.ClientOption, error) {
	if cfg.HasServiceAccount() {
		jwtCfg := &jwt.Config{
			Email:      cfg.ClientEmail,
			PrivateKey: []byte(cfg.PrivateKey),
			Scopes:     []string{sheetsapi.SpreadsheetsScope},
			TokenURL:   google.JWTTokenURL,
		}
		return []option.ClientOption{option.WithTokenSource(jwtCfg.TokenSource(ctx))}, nil
	}
	if cfg.CredentialsFile != "" {
		return []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheetsapi.SpreadsheetsScope),
		}, nil
	}
	return nil, errors.Config("no sheet credentials configured")
}

// Range returns the A1 range the client reads and writes.
func (c *Client) Range() string {
	return c.rangeA1
}

// Fetch reads every row of the range, header included.
func (c *Client) Fetch(ctx context.Context) (table.Table, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rangeA1).Context(ctx).Do()
	if err != nil {
		return nil, c.explain(errors.Wrap(err, "failed to fetch translations"))
	}

	t := make(table.Table, 0, len(resp.Values))
	for _, values := range resp.Values {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = cellText(v)
		}
		t = append(t, row)
	}

	c.logger.Infow("Fetched sheet",
		logger.FieldSpreadsheet, c.spreadsheetID,
		logger.FieldRange, c.rangeA1,
		logger.FieldRows, len(t),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return t, nil
}

// Replace swaps the range content for t in a single batchUpdate that grows
// the grid if needed, clears the range, writes the rows, styles the header
// and resizes the columns. Sheets applies a batch all-or-nothing, so on failure the
// previous content is still there.
func (c *Client) Replace(ctx context.Context, t table.Table) error {
	width := 0
	for _, row := range t {
		if len(row) > width {
			width = len(row)
		}
	}
	if err := c.checkFits(len(t), width); err != nil {
		return err
	}

	props, err := c.sheetProperties(ctx)
	if err != nil {
		return err
	}

	reqs := c.replaceRequests(props, t, width)

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return errors.WithHint(c.explain(errors.Wrap(err, "failed to update sheet")),
			"the sheet was not modified; fix the problem and run the upload again")
	}

	c.logger.Infow("Replaced sheet content",
		logger.FieldSpreadsheet, c.spreadsheetID,
		logger.FieldRange, c.rangeA1,
		logger.FieldRows, len(t),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return nil
}

// checkFits rejects tables that do not fit inside a bounded range
func (c *Client) checkFits(rows, width int) error {
	b := c.bounds
	if b.EndRow > 0 && b.StartRow+int64(rows) > b.EndRow {
		return errors.WithHint(
			errors.Config("table has %d rows but range %s holds %d", rows, c.rangeA1, b.EndRow-b.StartRow),
			"widen the range (GOOGLE_SHEETS_RANGE) or leave the row bound open, e.g. A:D")
	}
	if b.EndCol > 0 && b.StartCol+int64(width) > b.EndCol {
		return errors.WithHint(
			errors.Config("table has %d columns but range %s holds %d", width, c.rangeA1, b.EndCol-b.StartCol),
			"every locale needs a column; widen the range (GOOGLE_SHEETS_RANGE)")
	}
	return nil
}

// sheetProperties finds the sheet the range points at (first sheet if unnamed)
func (c *Client) sheetProperties(ctx context.Context) (*sheetsapi.SheetProperties, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, c.explain(errors.Wrap(err, "failed to read spreadsheet metadata"))
	}

	var titles []string
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		if c.bounds.Sheet == "" || sh.Properties.Title == c.bounds.Sheet {
			return sh.Properties, nil
		}
		titles = append(titles, sh.Properties.Title)
	}

	if c.bounds.Sheet == "" {
		return nil, errors.Config("spreadsheet %s has no sheets", c.spreadsheetID)
	}
	return nil, errors.WithHintf(errors.Config("sheet %q not found in spreadsheet", c.bounds.Sheet),
		"available sheets: %s", strings.Join(titles, ", "))
}

func (c *Client) replaceRequests(props *sheetsapi.SheetProperties, t table.Table, width int) []*sheetsapi.Request {
	b := c.bounds
	id := props.SheetId
	var reqs []*sheetsapi.Request

	// updateCells does not grow the grid the way values.update does
	rowCount, colCount := int64(0), int64(0)
	if grid := props.GridProperties; grid != nil {
		rowCount, colCount = grid.RowCount, grid.ColumnCount
		if need := b.StartRow + int64(len(t)) - rowCount; need > 0 {
			reqs = append(reqs, &sheetsapi.Request{AppendDimension: &sheetsapi.AppendDimensionRequest{
				SheetId: id, Dimension: "ROWS", Length: need,
			}})
			rowCount += need
		}
		if need := b.StartCol + int64(width) - colCount; need > 0 {
			reqs = append(reqs, &sheetsapi.Request{AppendDimension: &sheetsapi.AppendDimensionRequest{
				SheetId: id, Dimension: "COLUMNS", Length: need,
			}})
			colCount += need
		}
	}

	reqs = append(reqs, &sheetsapi.Request{UpdateCells: &sheetsapi.UpdateCellsRequest{
		Range: &sheetsapi.GridRange{
			SheetId:          id,
			StartRowIndex:    b.StartRow,
			EndRowIndex:      clampEnd(b.EndRow, rowCount),
			StartColumnIndex: b.StartCol,
			EndColumnIndex:   clampEnd(b.EndCol, colCount),
		},
		Fields: "userEnteredValue",
	}})

	if len(t) == 0 {
		return reqs
	}

	rows := make([]*sheetsapi.RowData, len(t))
	for i, row := range t {
		cells := make([]*sheetsapi.CellData, len(row))
		for j := range row {
			v := row[j]
			cells[j] = &sheetsapi.CellData{UserEnteredValue: &sheetsapi.ExtendedValue{StringValue: &v}}
		}
		rows[i] = &sheetsapi.RowData{Values: cells}
	}

	reqs = append(reqs,
		&sheetsapi.Request{UpdateCells: &sheetsapi.UpdateCellsRequest{
			Start:  &sheetsapi.GridCoordinate{SheetId: id, RowIndex: b.StartRow, ColumnIndex: b.StartCol},
			Rows:   rows,
			Fields: "userEnteredValue",
		}},
		&sheetsapi.Request{RepeatCell: &sheetsapi.RepeatCellRequest{
			Range: &sheetsapi.GridRange{
				SheetId:          id,
				StartRowIndex:    b.StartRow,
				EndRowIndex:      b.StartRow + 1,
				StartColumnIndex: b.StartCol,
				EndColumnIndex:   b.StartCol + int64(width),
			},
			Cell: &sheetsapi.CellData{UserEnteredFormat: &sheetsapi.CellFormat{
				BackgroundColor: headerBackground,
				TextFormat:      &sheetsapi.TextFormat{Bold: true},
			}},
			Fields: "userEnteredFormat(backgroundColor,textFormat)",
		}},
		&sheetsapi.Request{AutoResizeDimensions: &sheetsapi.AutoResizeDimensionsRequest{
			Dimensions: &sheetsapi.DimensionRange{
				SheetId:    id,
				Dimension:  "COLUMNS",
				StartIndex: b.StartCol,
				EndIndex:   b.StartCol + int64(width),
			},
		}},
	)

	return reqs
}

// clampEnd keeps a bounded range end inside the grid. 0 stays unbounded.
func clampEnd(end, size int64) int64 {
	if end > 0 && size > 0 && end > size {
		return size
	}
	return end
}

// explain adds a hint for the API errors people usually hit first
func (c *Client) explain(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case http.StatusForbidden:
		who := "the service account"
		if c.clientEmail != "" {
			who = c.clientEmail
		}
		return errors.WithHintf(err, "share the spreadsheet with %s as an editor", who)
	case http.StatusNotFound:
		return errors.WithHintf(err, "check %s; spreadsheet %q was not found", config.EnvSpreadsheetID, c.spreadsheetID)
	case http.StatusBadRequest:
		return errors.WithHintf(err, "check the sheet range %q", c.rangeA1)
	case http.StatusTooManyRequests:
		return errors.WithHint(err, "the Sheets API quota was exceeded; wait a minute and retry")
	}
	return err
}

func cellText(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
