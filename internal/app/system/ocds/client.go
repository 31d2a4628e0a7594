// Package ocds talks to the eTenders OCDS releases API and maps raw
// release JSON into tender documents. Releases are schema-loose in
// practice, so field extraction goes through gjson paths with fallbacks
// instead of a rigid struct decode.
package ocds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the public eTenders OCDS endpoint.
const DefaultBaseURL = "https://ocds-api.etenders.gov.za/api/OCDSReleases"

// maxResponseSize caps an upstream response body (a 1000-release page is
// well under this).
const maxResponseSize = 128 << 20

// ErrNotFound is returned when the upstream reports 404 for an ocid.
var ErrNotFound = fmt.Errorf("release not found")

// Client fetches OCDS releases with retry and exponential backoff.
type Client struct {
	baseURL string
	http    *http.Client
	retry   retry.Config
}

// New creates a Client for the given base URL (empty means DefaultBaseURL).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		retry: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  500 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Query describes one page request against the releases endpoint.
type Query struct {
	PageNumber int
	PageSize   int
	DateFrom   string // YYYY-MM-DD, optional
	DateTo     string // YYYY-MM-DD, optional
}

// Page is one page of raw releases plus the upstream total.
type Page struct {
	Releases []gjson.Result
	Total    int
	Raw      []byte
}

// HasNext reports whether another page follows q's page.
func (p Page) HasNext(q Query) bool {
	return q.PageNumber*q.PageSize < p.Total
}

// TotalPages returns the page count for q's page size.
func (p Page) TotalPages(q Query) int {
	if q.PageSize <= 0 {
		return 0
	}
	return (p.Total + q.PageSize - 1) / q.PageSize
}

// Fetch retrieves one page of releases.
func (c *Client) Fetch(ctx context.Context, q Query) (Page, error) {
	if q.PageNumber < 1 {
		q.PageNumber = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 50
	}

	params := url.Values{}
	params.Set("PageNumber", strconv.Itoa(q.PageNumber))
	params.Set("PageSize", strconv.Itoa(q.PageSize))
	if q.DateFrom != "" {
		params.Set("dateFrom", q.DateFrom)
	}
	if q.DateTo != "" {
		params.Set("dateTo", q.DateTo)
	}

	body, err := c.get(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return Page{}, err
	}

	root := gjson.ParseBytes(body)
	releases := root.Get("releases").Array()
	total := int(root.Get("total").Int())
	if total == 0 {
		total = len(releases)
	}
	return Page{Releases: releases, Total: total, Raw: body}, nil
}

// FetchByOCID retrieves a single release by its ocid.
func (c *Client) FetchByOCID(ctx context.Context, ocid string) ([]byte, error) {
	return c.get(ctx, c.baseURL+"/"+url.PathEscape(ocid))
}

// get performs one GET with retry. Upstream 5xx responses are retried;
// 404 maps to ErrNotFound; other 4xx fail immediately.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	r := retry.New[[]byte](c.retry)
	return r.Do(ctx, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, noRetry{ErrNotFound}
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, noRetry{fmt.Errorf("upstream rejected request: %s", resp.Status)}
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("upstream error: %s", resp.Status)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, err
		}
		if !gjson.ValidBytes(body) {
			return nil, fmt.Errorf("upstream returned invalid JSON")
		}
		return body, nil
	})
}

// noRetry wraps permanent errors so the retryer stops early.
type noRetry struct{ error }

func (e noRetry) Unwrap() error { return e.error }

// IsNotFound reports whether err means the ocid does not exist upstream.
func IsNotFound(err error) bool {
	for err != nil {
		if err == ErrNotFound {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
