// Package sheets implements the request ledger over the Google Sheets API:
// one appended row per organization, pairing it with the donor's identity.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"donation-agent/internal/domain"
)

const (
	// DefaultCredentialsFile is the service-account key expected in the
	// working directory, matching the documented setup.
	DefaultCredentialsFile = "service_account.json"

	appendRange = "Sheet1"
	headerRange = "Sheet1!A1:F1"

	successAck = "Request logged successfully in the Google Sheet."
)

var headerRow = []interface{}{"Donor Name", "Donor Phone", "NGO Name", "NGO Phone", "NGO Website", "Timestamp"}

// valuesAPI is the minimal Sheets values interface required by Client.
type valuesAPI interface {
	Read(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
	Append(ctx context.Context, spreadsheetID, writeRange string, rows [][]interface{}) error
}

// googleValues adapts *sheetsapi.Service to valuesAPI.
type googleValues struct {
	svc *sheetsapi.Service
}

func (g *googleValues) Read(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *googleValues) Append(ctx context.Context, spreadsheetID, writeRange string, rows [][]interface{}) error {
	_, err := g.svc.Spreadsheets.Values.Append(spreadsheetID, writeRange, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// Client appends donation-request rows to one spreadsheet. Appends are not
// idempotent: every call adds rows, so callers must not retry blindly.
type Client struct {
	spreadsheetID   string
	credentialsFile string
	now             func() time.Time

	apiOnce sync.Once
	api     valuesAPI
	apiErr  error
}

type Option func(*Client)

// WithCredentialsFile overrides the service-account key path.
func WithCredentialsFile(path string) Option {
	return func(c *Client) {
		c.credentialsFile = path
	}
}

// WithValuesAPI injects a values implementation, bypassing credential
// resolution.
func WithValuesAPI(api valuesAPI) Option {
	return func(c *Client) {
		c.api = api
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a ledger client for the given spreadsheet. A missing
// spreadsheet ID or credentials file is reported at call time, not here,
// so the conversation can still run and surface the failure when logging
// is actually requested.
func NewClient(spreadsheetID string, opts ...Option) *Client {
	c := &Client{
		spreadsheetID:   strings.TrimSpace(spreadsheetID),
		credentialsFile: DefaultCredentialsFile,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) resolveAPI(ctx context.Context) (valuesAPI, error) {
	c.apiOnce.Do(func() {
		if c.api != nil {
			return
		}
		if _, err := os.Stat(c.credentialsFile); err != nil {
			c.apiErr = fmt.Errorf("%s not found. Please ensure the file is in the correct directory", c.credentialsFile)
			return
		}
		svc, err := sheetsapi.NewService(ctx,
			option.WithCredentialsFile(c.credentialsFile),
			option.WithScopes(sheetsapi.SpreadsheetsScope),
		)
		if err != nil {
			c.apiErr = fmt.Errorf("sheets: create service: %w", err)
			return
		}
		c.api = &googleValues{svc: svc}
	})
	return c.api, c.apiErr
}

// LogRequest appends one row per organization in order, bootstrapping the
// header row when the sheet is empty. An empty organization list is a
// zero-row success.
func (c *Client) LogRequest(ctx context.Context, donorName, donorPhone string, orgs []domain.Organization) (string, error) {
	if c.spreadsheetID == "" {
		return "", errors.New("spreadsheet ID is not configured")
	}
	if len(orgs) == 0 {
		return successAck, nil
	}

	api, err := c.resolveAPI(ctx)
	if err != nil {
		return "", err
	}

	timestamp := c.now().Format(time.ANSIC)
	rows := make([][]interface{}, 0, len(orgs)+1)

	existing, err := api.Read(ctx, c.spreadsheetID, headerRange)
	if err != nil {
		return "", fmt.Errorf("an error occurred while reading the sheet: %w", err)
	}
	if len(existing) == 0 {
		rows = append(rows, headerRow)
	}

	for _, org := range orgs {
		rows = append(rows, []interface{}{donorName, donorPhone, org.Name, org.Phone, org.Website, timestamp})
	}

	if err := api.Append(ctx, c.spreadsheetID, appendRange, rows); err != nil {
		return "", fmt.Errorf("an error occurred while writing to the sheet: %w", err)
	}
	return successAck, nil
}
