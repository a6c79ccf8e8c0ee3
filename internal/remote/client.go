// Package remote talks to the authoritative product store over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fairyhunter13/product-reconciler/internal/errors"
	"github.com/fairyhunter13/product-reconciler/internal/model"
)

// ProductsPath is the collection resource of the store.
const ProductsPath = "/products"

// maxErrorBody bounds how much of an error response ends up in an error.
const maxErrorBody = 512

// MaxResponseBody bounds the size of a successful response body.
const MaxResponseBody = 8 << 20

// Client performs the load, create and delete calls.
type Client struct {
	base    string
	http    *http.Client
	maxBody int64
}

// New creates a client for the store at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a client using hc for transport.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc, maxBody: MaxResponseBody}
}

// List fetches all products. A body that is not a JSON array yields an
// empty batch; array entries that are not objects come back as nil so the
// reconciler skips them.
func (c *Client) List(ctx context.Context) ([]*model.RawRecord, error) {
	body, err := c.do(ctx, "list", http.MethodGet, c.base+ProductsPath, nil)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, nil
	}
	out := make([]*model.RawRecord, 0, len(items))
	for _, it := range items {
		out = append(out, decodeRecord(it))
	}
	return out, nil
}

// Create submits a new product and returns the store's response record.
// When the response carries no usable product fields the request payload
// stands in for it.
func (c *Client) Create(ctx context.Context, req model.CreateRequest) (*model.RawRecord, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap("create", err)
	}
	body, err := c.do(ctx, "create", http.MethodPost, c.base+ProductsPath, payload)
	if err != nil {
		return nil, err
	}
	rec := decodeRecord(body)
	if rec == nil {
		rec = &model.RawRecord{}
	}
	if rec.Name == "" && rec.Price == nil {
		rec.Name, rec.Price = req.Name, req.Price
	}
	return rec, nil
}

// Delete removes the product with the given remote key.
func (c *Client) Delete(ctx context.Context, remoteKey string) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, c.base+ProductsPath+"/"+url.PathEscape(remoteKey), nil)
	return err
}

func (c *Client) do(ctx context.Context, op, method, target string, payload []byte) ([]byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, errors.Wrap(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.NewAPIError(op, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, errors.Wrap(op, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, errors.Wrap(op, fmt.Errorf("response body exceeds %d bytes", c.maxBody))
	}
	return body, nil
}

func decodeRecord(b []byte) *model.RawRecord {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	var rec model.RawRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil
	}
	return &rec
}
