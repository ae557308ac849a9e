package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var (
	ErrCredentialsNotFound = errors.New("google sheets credentials file not found")
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found or not shared with the service account")
)

// Worksheet is one tab of a spreadsheet.
type Worksheet interface {
	Title() string
	FirstRow(ctx context.Context) ([]string, error)
	AppendRow(ctx context.Context, cells []string) error
}

// SheetsSession is an authenticated connection to the spreadsheet service.
type SheetsSession interface {
	OpenFirstWorksheet(ctx context.Context, spreadsheetID string) (Worksheet, error)
}

// SheetsAuthenticator establishes sessions.
type SheetsAuthenticator interface {
	Authenticate(ctx context.Context) (SheetsSession, error)
}

// GoogleSheets authenticates with a service account key file.
type GoogleSheets struct {
	credentialsPath string
}

func NewGoogleSheets(credentialsPath string) *GoogleSheets {
	return &GoogleSheets{credentialsPath: credentialsPath}
}

func (g *GoogleSheets) Authenticate(ctx context.Context) (SheetsSession, error) {
	if g.credentialsPath == "" {
		return nil, fmt.Errorf("%w: no path configured", ErrCredentialsNotFound)
	}
	if _, err := os.Stat(g.credentialsPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, g.credentialsPath)
	}

	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(g.credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &googleSession{srv: srv}, nil
}

type googleSession struct {
	srv *sheets.Service
}

func (s *googleSession) OpenFirstWorksheet(ctx context.Context, spreadsheetID string) (Worksheet, error) {
	ss, err := s.srv.Spreadsheets.Get(spreadsheetID).
		Fields("properties.title", "sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyOpenError(err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("spreadsheet %q has no worksheets", spreadsheetID)
	}

	return &googleWorksheet{
		srv:           s.srv,
		spreadsheetID: spreadsheetID,
		title:         ss.Sheets[0].Properties.Title,
	}, nil
}

func classifyOpenError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound, http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrSpreadsheetNotFound, err)
		}
	}
	return fmt.Errorf("failed to open spreadsheet: %w", err)
}

type googleWorksheet struct {
	srv           *sheets.Service
	spreadsheetID string
	title         string
}

func (w *googleWorksheet) Title() string {
	return w.title
}

func (w *googleWorksheet) FirstRow(ctx context.Context) ([]string, error) {
	resp, err := w.srv.Spreadsheets.Values.Get(w.spreadsheetID, a1Range(w.title, "1:1")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	row := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		row = append(row, fmt.Sprint(cell))
	}
	return row, nil
}

func (w *googleWorksheet) AppendRow(ctx context.Context, cells []string) error {
	values := make([]any, len(cells))
	for i, cell := range cells {
		values[i] = cell
	}

	_, err := w.srv.Spreadsheets.Values.Append(w.spreadsheetID, a1Range(w.title, "A1"), &sheets.ValueRange{
		Values: [][]any{values},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

// a1Range quotes the worksheet title so names with spaces or quotes work.
func a1Range(title, cells string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + cells
}
