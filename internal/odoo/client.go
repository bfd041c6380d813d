// Package odoo is the JSON-RPC client for the external accounting system.
// The pipeline treats it as a pure query interface: search for overdue
// invoices, read reference records in batches. No write ever goes through
// this client.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"dunning/internal/logger"
	"dunning/internal/pipeline"
	"dunning/pkg/models"
)

// Config holds connection settings for the accounting system.
type Config struct {
	// URL is the server base URL, e.g. "https://erp.example.com".
	URL string

	// Database is the server database name.
	Database string

	Username string
	Password string

	// Timeout bounds each HTTP call. Default: 60 seconds.
	Timeout time.Duration
}

// Client is a JSON-RPC client. Authenticate must be called before queries.
type Client struct {
	cfg  Config
	http *http.Client
	uid  int64
	seq  atomic.Int64
	log  zerolog.Logger
}

// NewClient validates the configuration and creates a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.Database == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.WithComponent("odoo"),
	}, nil
}

type rpcRequest struct {
	Jsonrpc string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcFault       `json:"error"`
}

type rpcFault struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call performs one JSON-RPC round trip and decodes the result into out.
func (c *Client) call(ctx context.Context, service, method string, args []any, out any) error {
	body, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      c.seq.Add(1),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/jsonrpc", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", ErrBadResponse, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("server error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
	}
	return nil
}

// Authenticate logs in and stores the user id used by subsequent queries.
func (c *Client) Authenticate(ctx context.Context) error {
	const op = "Authenticate"

	var result json.RawMessage
	err := c.call(ctx, "common", "authenticate",
		[]any{c.cfg.Database, c.cfg.Username, c.cfg.Password, map[string]any{}}, &result)
	if err != nil {
		return &RPCError{Op: op, Err: err}
	}

	// The server returns false (not an error) on bad credentials.
	var uid int64
	if err := json.Unmarshal(result, &uid); err != nil || uid == 0 {
		return &RPCError{Op: op, Err: ErrAuthFailed}
	}
	c.uid = uid

	c.log.Info().
		Str("database", c.cfg.Database).
		Int64("uid", uid).
		Msg("Authenticated with accounting system")
	return nil
}

// executeKW invokes a model method through the object service.
func (c *Client) executeKW(ctx context.Context, model, method string, args []any, kwargs map[string]any, out any) error {
	if c.uid == 0 {
		return fmt.Errorf("not authenticated")
	}
	callArgs := []any{c.cfg.Database, c.uid, c.cfg.Password, model, method, args}
	if kwargs != nil {
		callArgs = append(callArgs, kwargs)
	}
	return c.call(ctx, "object", "execute_kw", callArgs, out)
}

// invoiceFields are the fields requested for each overdue invoice.
var invoiceFields = []string{
	"name", "invoice_date", "invoice_date_due", "amount_residual",
	"partner_id", "currency_id", "company_id", "invoice_origin",
}

// SearchOverdueInvoices returns posted customer invoices with an open
// residual and a due date strictly before refDate.
func (c *Client) SearchOverdueInvoices(ctx context.Context, refDate time.Time) ([]models.RawInvoice, error) {
	const op = "SearchOverdueInvoices"
	const model = "account.move"

	domain := []any{
		[]any{"move_type", "=", "out_invoice"},
		[]any{"state", "=", "posted"},
		[]any{"payment_state", "!=", "paid"},
		[]any{"amount_residual", ">", 0},
		[]any{"invoice_date_due", "<", refDate.Format(pipeline.DateFormat)},
	}

	var rows []map[string]any
	err := c.executeKW(ctx, model, "search_read",
		[]any{domain},
		map[string]any{"fields": invoiceFields, "order": "invoice_date_due asc"},
		&rows)
	if err != nil {
		return nil, &RPCError{Op: op, Model: model, Err: err}
	}

	invoices := make([]models.RawInvoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, models.RawInvoice{
			ID:             asInt64(row["id"]),
			Number:         asString(row["name"]),
			InvoiceDate:    asString(row["invoice_date"]),
			DueDate:        asString(row["invoice_date_due"]),
			ResidualAmount: asFloat(row["amount_residual"]),
			PartnerID:      many2oneID(row["partner_id"]),
			CurrencyID:     many2oneID(row["currency_id"]),
			CompanyID:      many2oneID(row["company_id"]),
			Origin:         asString(row["invoice_origin"]),
		})
	}

	c.log.Info().
		Int("count", len(invoices)).
		Str("before", refDate.Format(pipeline.DateFormat)).
		Msg("Overdue invoices fetched")
	return invoices, nil
}

// Partners implements pipeline.ReferenceSource.
func (c *Client) Partners(ctx context.Context, ids []int64) ([]models.Partner, error) {
	const op = "Partners"
	const model = "res.partner"

	rows, err := c.read(ctx, model, ids, []string{"name", "email"})
	if err != nil {
		return nil, &RPCError{Op: op, Model: model, Err: err}
	}
	records := make([]models.Partner, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.Partner{
			ID:    asInt64(row["id"]),
			Name:  asString(row["name"]),
			Email: asString(row["email"]),
		})
	}
	return records, nil
}

// Currencies implements pipeline.ReferenceSource.
func (c *Client) Currencies(ctx context.Context, ids []int64) ([]models.Currency, error) {
	const op = "Currencies"
	const model = "res.currency"

	rows, err := c.read(ctx, model, ids, []string{"name", "symbol"})
	if err != nil {
		return nil, &RPCError{Op: op, Model: model, Err: err}
	}
	records := make([]models.Currency, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.Currency{
			ID:     asInt64(row["id"]),
			Name:   asString(row["name"]),
			Symbol: asString(row["symbol"]),
		})
	}
	return records, nil
}

// Companies implements pipeline.ReferenceSource.
func (c *Client) Companies(ctx context.Context, ids []int64) ([]models.Company, error) {
	const op = "Companies"
	const model = "res.company"

	rows, err := c.read(ctx, model, ids, []string{"name"})
	if err != nil {
		return nil, &RPCError{Op: op, Model: model, Err: err}
	}
	records := make([]models.Company, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.Company{
			ID:   asInt64(row["id"]),
			Name: asString(row["name"]),
		})
	}
	return records, nil
}

func (c *Client) read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error) {
	var rows []map[string]any
	err := c.executeKW(ctx, model, "read",
		[]any{ids},
		map[string]any{"fields": fields},
		&rows)
	return rows, err
}
