package atlas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/icholy/digest"
	"github.com/smallbiznis/atlasbi/internal/config"
	"go.uber.org/zap"
)

// maxErrorBody bounds how much of an error response is kept for logging.
const maxErrorBody = 4096

// StatusError is a non-2xx response from the billing API. The body is the
// provider's error payload, captured verbatim for the log line.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("billing api returned status %d: %s", e.Code, e.Body)
}

// Client calls the provider's billing API with per-organization HTTP digest
// authentication.
type Client struct {
	baseURL string
	timeout time.Duration
	log     *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.AtlasBaseURL,
		timeout: cfg.HTTPTimeout,
		log:     log.Named("atlas.client"),
	}
}

// ListInvoices fetches the invoice summaries for an organization.
//
// The API paginates, but this pipeline has always assumed one page holds
// every invoice of an organization. The assumption is surfaced rather than
// silently kept: a warning is logged whenever totalCount exceeds the page.
func (c *Client) ListInvoices(ctx context.Context, org config.Organization) ([]Record, error) {
	url := fmt.Sprintf("%s/orgs/%s/invoices", c.baseURL, org.OrgID)

	var page struct {
		Results    []Record `json:"results"`
		TotalCount int      `json:"totalCount"`
	}
	if err := c.get(ctx, org, url, &page); err != nil {
		return nil, err
	}

	if page.TotalCount > len(page.Results) {
		c.log.Warn("invoice listing is truncated to one page",
			zap.String("org_id", org.OrgID),
			zap.Int("total_count", page.TotalCount),
			zap.Int("page_size", len(page.Results)),
		)
	}

	return page.Results, nil
}

// GetInvoice fetches the full detail of one invoice, including line items.
func (c *Client) GetInvoice(ctx context.Context, org config.Organization, invoiceID string) (Record, error) {
	url := fmt.Sprintf("%s/orgs/%s/invoices/%s", c.baseURL, org.OrgID, invoiceID)

	var detail Record
	if err := c.get(ctx, org, url, &detail); err != nil {
		return nil, err
	}
	return detail, nil
}

func (c *Client) get(ctx context.Context, org config.Organization, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient(org).Do(req)
	if err != nil {
		return fmt.Errorf("call billing api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode billing api response: %w", err)
	}
	return nil
}

// httpClient builds the digest-authenticated client for one organization's
// key pair. Digest auth needs a challenge round trip, so the transport owns
// the handshake.
func (c *Client) httpClient(org config.Organization) *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		Transport: &digest.Transport{
			Username: org.PublicKey,
			Password: org.PrivateKey,
		},
	}
}
