// Package sheets reads session rows from a Google Sheets worksheet and
// wraps the upstream fetch in a short TTL cache with stale fallback.
package sheets

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/padelrpm/ranking/internal/domain/record"
	"github.com/padelrpm/ranking/pkg/logger"
)

// Client fetches one worksheet's rows as records. The underlying API
// service is built lazily on first use so a missing credentials file at
// startup does not prevent the process from serving cached or empty data.
type Client struct {
	spreadsheetID   string
	worksheet       string
	credentialsFile string
	log             logger.Logger

	mu  sync.Mutex
	svc *sheetsapi.Service
}

// ClientOption applies a configuration option to the Client.
type ClientOption func(*Client)

// WithClientLogger sets a custom logger for the client.
func WithClientLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient builds a client for one spreadsheet and worksheet. No network
// call happens until the first Records.
func NewClient(spreadsheetID, worksheet, credentialsFile string, opts ...ClientOption) *Client {
	c := &Client{
		spreadsheetID:   spreadsheetID,
		worksheet:       worksheet,
		credentialsFile: credentialsFile,
		log:             logger.Named("sheets"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// service returns the lazily-built API service, retrying construction on
// every call until it succeeds.
func (c *Client) service(ctx context.Context) (*sheetsapi.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}

	var clientOpts []option.ClientOption
	if c.credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(c.credentialsFile))
	}
	clientOpts = append(clientOpts, option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))

	svc, err := sheetsapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}
	c.svc = svc
	return c.svc, nil
}

// Records fetches every row of the worksheet. The first row is the header;
// each following row becomes a record keyed by header, with missing trailing
// cells read as empty strings. A sheet with no header yields no records.
func (c *Client) Records(ctx context.Context) ([]record.Record, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Values.Get(c.spreadsheetID, c.worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if len(resp.Values) < 2 {
		return nil, nil
	}

	headers := make([]string, len(resp.Values[0]))
	for i, cell := range resp.Values[0] {
		headers[i] = cellString(cell)
	}

	out := make([]record.Record, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(raw) {
				fields[h] = cellString(raw[i])
			} else {
				fields[h] = ""
			}
		}
		out = append(out, record.New(fields))
	}
	return out, nil
}

func cellString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
