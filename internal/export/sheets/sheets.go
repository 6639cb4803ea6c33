// Package sheets mirrors one owner's month of records into a Google Sheets
// tab, replacing the tab content on every export.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moneybook/internal/aggregate"
	"moneybook/internal/core"
	"moneybook/internal/log"
)

// Exporter writes a full snapshot of one (owner, period).
type Exporter interface {
	ExportPeriod(ctx context.Context, owner string, period core.PeriodKey, records []core.Record) error
}

// Credentials select how the exporter authenticates. A service account
// (JSON wins over File) is used unless TokenFile is set, in which case the
// saved user token of OAuth is refreshed through the OAuth client.
type Credentials struct {
	JSON string
	File string

	OAuth     OAuthClient
	TokenFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	loc           *time.Location
	logger        *log.Logger

	mu   sync.Mutex
	tabs map[string]bool
}

var _ Exporter = (*Client)(nil)

// New creates a client authenticated with a service account or a saved
// OAuth token.
func New(ctx context.Context, spreadsheetID string, creds Credentials, loc *time.Location, logger *log.Logger) (*Client, error) {
	opts, err := creds.options(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, loc, logger)
}

// NewWithService wraps an existing service, e.g. one pointed at a test endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID string, loc *time.Location, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		loc:           loc,
		logger:        logger.WithComponent(log.ComponentExport),
		tabs:          make(map[string]bool),
	}, nil
}

func (c Credentials) options(ctx context.Context) ([]goption.ClientOption, error) {
	if strings.TrimSpace(c.TokenFile) != "" {
		cfg, err := c.OAuth.Config("")
		if err != nil {
			return nil, err
		}
		tok, err := LoadToken(c.TokenFile)
		if err != nil {
			return nil, err
		}
		return []goption.ClientOption{goption.WithTokenSource(cfg.TokenSource(ctx, tok))}, nil
	}
	credentialsJSON, err := c.load()
	if err != nil {
		return nil, err
	}
	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, nil
}

func (c Credentials) load() ([]byte, error) {
	switch {
	case strings.TrimSpace(c.JSON) != "":
		return []byte(c.JSON), nil
	case strings.TrimSpace(c.File) != "":
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// TabName is the sheet tab holding owner's records for period.
func TabName(owner string, period core.PeriodKey) string {
	short := owner
	if len(short) > 8 {
		short = short[:8]
	}
	return string(period) + "_" + short
}

// ExportPeriod replaces the tab content with records and their totals.
func (c *Client) ExportPeriod(ctx context.Context, owner string, period core.PeriodKey, records []core.Record) error {
	if err := period.Validate(); err != nil {
		return fmt.Errorf("export %q: %w", period, err)
	}
	tab := TabName(owner, period)
	if err := c.ensureTab(ctx, tab); err != nil {
		return err
	}

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoteRange(tab, "A:Z"), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", tab, err)
	}

	vr := &gsheet.ValueRange{Values: BuildValues(records, c.loc)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoteRange(tab, "A1"), vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet %s: %w", tab, err)
	}

	c.logger.InfoContext(ctx, "Period exported",
		log.FieldOwner, owner,
		log.FieldPeriod, string(period),
		log.FieldSheet, tab,
		log.FieldCount, len(records))
	return nil
}

func (c *Client) ensureTab(ctx context.Context, tab string) error {
	c.mu.Lock()
	known := c.tabs[tab]
	c.mu.Unlock()
	if known {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	exists := false
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tab {
			exists = true
			break
		}
	}

	if !exists {
		req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
		}}}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("add sheet %s: %w", tab, err)
		}
		c.logger.DebugContext(ctx, "Sheet tab created", log.FieldSheet, tab)
	}

	c.mu.Lock()
	c.tabs[tab] = true
	c.mu.Unlock()
	return nil
}

// Header is the first row of every exported tab.
var Header = []any{"id", "created_at", "kind", "amount", "note"}

// BuildValues lays out the header, one row per record in input order, a
// blank row and the income, expense and net totals.
func BuildValues(records []core.Record, loc *time.Location) [][]any {
	if loc == nil {
		loc = time.UTC
	}
	values := make([][]any, 0, len(records)+5)
	values = append(values, Header)
	for _, r := range records {
		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.In(loc).Format(time.RFC3339)
		}
		values = append(values, []any{r.ID, created, string(r.Kind.Bucket()), r.Amount, r.Note})
	}

	t := aggregate.MonthlyTotals(records)
	values = append(values,
		[]any{},
		[]any{"", "", "income", t.Income.InexactFloat64()},
		[]any{"", "", "expense", t.Expense.InexactFloat64()},
		[]any{"", "", "net", t.Net().InexactFloat64()},
	)
	return values
}

func quoteRange(tab, cells string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'!" + cells
}
