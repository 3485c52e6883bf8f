package sheets

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Grid is one worksheet's value grid as returned by the backend: rows may
// be ragged, cells are strings for text and float64 for numbers.
type Grid [][]interface{}

// ValuesAPI is the raw spreadsheet transport consumed by the Client.
type ValuesAPI interface {
	ListWorksheets(spreadsheetID string) ([]string, error)
	GetValues(spreadsheetID, worksheet string) (Grid, error)
	UpdateCell(spreadsheetID, rangeRef string, value float64) error
}

// GoogleValues implements ValuesAPI against the Google Sheets v4 API.
type GoogleValues struct {
	service *sheets.Service
}

func NewGoogleValues(ctx context.Context, credentialsFile string) (*GoogleValues, error) {
	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, &RemoteError{Op: "create sheets client", Err: err}
	}
	return &GoogleValues{service: srv}, nil
}

const (
	maxRetries = 15
	maxBackoff = 60 * time.Second
)

// withBackoff retries fn on rate-limit responses (429/403) with exponential
// backoff, the same policy applied to every Sheets call.
func withBackoff(op string, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if gErr, ok := err.(*googleapi.Error); ok && (gErr.Code == 429 || gErr.Code == 403) {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			log.Warnf("Rate limited by Google Sheets API, retrying in %v...", backoff)
			time.Sleep(backoff)
			continue
		}
		return &RemoteError{Op: op, Err: err}
	}
	return &RemoteError{Op: op, Err: err}
}

func (g *GoogleValues) ListWorksheets(spreadsheetID string) ([]string, error) {
	ctx := context.Background()
	var meta *sheets.Spreadsheet
	err := withBackoff("list worksheets", func() error {
		var err error
		meta, err = g.service.Spreadsheets.Get(spreadsheetID).
			Fields("sheets(properties(title))").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (g *GoogleValues) GetValues(spreadsheetID, worksheet string) (Grid, error) {
	ctx := context.Background()
	var resp *sheets.ValueRange
	err := withBackoff("read worksheet '"+worksheet+"'", func() error {
		var err error
		resp, err = g.service.Spreadsheets.Values.Get(spreadsheetID, "'"+worksheet+"'").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return Grid(resp.Values), nil
}

func (g *GoogleValues) UpdateCell(spreadsheetID, rangeRef string, value float64) error {
	ctx := context.Background()
	body := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	return withBackoff("write "+rangeRef, func() error {
		_, err := g.service.Spreadsheets.Values.Update(spreadsheetID, rangeRef, body).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		return err
	})
}

// Client is the caching gateway over a ValuesAPI. Grids and worksheet
// listings are cached for the duration of one synchronization pass;
// Reset drops the caches at the next pass boundary.
type Client struct {
	api        ValuesAPI
	gridCache  map[gridKey]Grid
	titleCache map[string][]string
}

type gridKey struct {
	spreadsheetID string
	worksheet     string
}

func NewClient(api ValuesAPI) *Client {
	c := &Client{api: api}
	c.Reset()
	return c
}

// Reset invalidates the per-pass caches. Call at the start of each pass:
// a human may have edited the sheet since the previous one.
func (c *Client) Reset() {
	c.gridCache = make(map[gridKey]Grid)
	c.titleCache = make(map[string][]string)
}

func (c *Client) ListWorksheets(spreadsheetID string) ([]string, error) {
	if titles, ok := c.titleCache[spreadsheetID]; ok {
		return titles, nil
	}
	titles, err := c.api.ListWorksheets(spreadsheetID)
	if err != nil {
		return nil, err
	}
	c.titleCache[spreadsheetID] = titles
	return titles, nil
}

func (c *Client) Values(spreadsheetID, worksheet string) (Grid, error) {
	key := gridKey{spreadsheetID, worksheet}
	if grid, ok := c.gridCache[key]; ok {
		return grid, nil
	}
	grid, err := c.api.GetValues(spreadsheetID, worksheet)
	if err != nil {
		return nil, err
	}
	c.gridCache[key] = grid
	return grid, nil
}

func (c *Client) WriteCell(spreadsheetID, rangeRef string, value float64) error {
	return c.api.UpdateCell(spreadsheetID, rangeRef, value)
}

// NumericCell reads a single cell from the cached grid and interprets it
// as a number. Text cells are parsed after stripping thousands separators;
// blank or non-numeric cells report ok=false.
func (c *Client) NumericCell(spreadsheetID, worksheet, cell string) (float64, bool, error) {
	grid, err := c.Values(spreadsheetID, worksheet)
	if err != nil {
		return 0, false, err
	}
	row, col, ok := CellToIndexes(cell)
	if !ok || row >= len(grid) {
		return 0, false, nil
	}
	if col >= len(grid[row]) {
		return 0, false, nil
	}
	return numericValue(grid[row][col])
}

func numericValue(v interface{}) (float64, bool, error) {
	switch val := v.(type) {
	case float64:
		return val, true, nil
	case int:
		return float64(val), true, nil
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(val, ",", ""))
		if cleaned == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false, nil
		}
		return f, true, nil
	}
	return 0, false, nil
}

// cellString returns the trimmed text of a grid cell, or ok=false when the
// cell is not text.
func cellString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}
