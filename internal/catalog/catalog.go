// internal/catalog/catalog.go
//
// Client for the remote product catalog (the Fake Store API shape).
// Every operation is a single HTTP round trip: no retries, no caching,
// no pagination. Errors are always returned to the caller; the view
// layer decides how to surface them.

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public Fake Store API origin.
const DefaultBaseURL = "https://fakestoreapi.com"

const maxErrorDetail = 512

// Rating is the aggregate review score the catalog reports per product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a catalog entry. Products are sourced entirely from the
// remote service and never mutated locally.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Client issues read operations against the catalog service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given origin. An empty baseURL falls
// back to DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL reports the origin this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Products fetches the full product listing.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, "list products", "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductsByCategory fetches the listing restricted to one category.
func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	path := "/products/category/" + url.PathEscape(category)
	var products []Product
	if err := c.getJSON(ctx, "list category "+category, path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches a single product by id. An error status, or a body the
// service returns for an unknown id that does not decode as a product,
// classifies as ErrNotFound.
func (c *Client) Product(ctx context.Context, id int) (Product, error) {
	op := "get product " + strconv.Itoa(id)
	var product Product
	if err := c.getJSON(ctx, op, "/products/"+strconv.Itoa(id), &product); err != nil {
		var transport *TransportError
		if errors.As(err, &transport) {
			return Product{}, err
		}
		return Product{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if product.ID == 0 {
		// The fake store answers unknown ids with 200 and an empty body;
		// a decoded zero product means the id does not exist.
		return Product{}, errors.Wrap(ErrNotFound, op)
	}
	return product, nil
}

// Categories fetches the category names used as grouping keys.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "list categories", "/products/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Login exchanges credentials for an opaque session token. A non-success
// status classifies as ErrAuthFailed.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return "", errors.Wrap(err, "catalog: encode credentials")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "catalog: build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remote := &RemoteError{Op: "login", Status: resp.StatusCode, Detail: readDetail(resp.Body)}
		return "", fmt.Errorf("%w: %w", ErrAuthFailed, remote)
	}
	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return "", errors.Wrap(err, "catalog: decode login response")
	}
	if login.Token == "" {
		return "", errors.Wrap(ErrAuthFailed, "login: empty token")
	}
	return login.Token, nil
}

// getJSON performs one GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrapf(err, "catalog: build %s request", op)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteError{Op: op, Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "catalog: decode %s response", op)
	}
	return nil
}

// readDetail captures a bounded slice of an error response body.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorDetail))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
