// Package backend is the REST client for the marketplace backend. It speaks
// JSON over HTTP with a bearer token on authenticated calls and turns
// non-2xx responses into domain errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

// Config holds the client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client implements ports.Backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

var _ ports.Backend = (*Client)(nil)

func New(cfg Config, log zerolog.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		log:     log,
	}
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func (c *Client) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	body, err := c.do(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   "/api/login",
		json:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	var res ports.AuthResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, decodeError("login", err)
	}
	return &res, nil
}

func (c *Client) Refresh(ctx context.Context, token string) (*ports.AuthResult, error) {
	body, err := c.do(ctx, request{
		op:     "refresh",
		method: http.MethodPost,
		path:   "/api/refresh",
		token:  token,
		json:   struct{}{},
	})
	if err != nil {
		return nil, err
	}
	var res ports.AuthResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, decodeError("refresh", err)
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) error {
	_, err := c.do(ctx, request{
		op:     "register",
		method: http.MethodPost,
		path:   "/api/register",
		json:   in,
	})
	return err
}

// ── Collections ───────────────────────────────────────────────────────────────

// GetRaw returns the body of a list endpoint unchanged.
func (c *Client) GetRaw(ctx context.Context, path, token string) (json.RawMessage, error) {
	body, err := c.do(ctx, request{
		op:     "get " + path,
		method: http.MethodGet,
		path:   path,
		token:  token,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// ── Products ──────────────────────────────────────────────────────────────────

func (c *Client) GetPublicProduct(ctx context.Context, id string) (*domain.Product, error) {
	body, err := c.do(ctx, request{
		op:     "get product",
		method: http.MethodGet,
		path:   "/api/products/public/" + url.PathEscape(id),
	})
	if err != nil {
		return nil, err
	}
	var p domain.Product
	if err := json.Unmarshal(unwrapData(body), &p); err != nil {
		return nil, decodeError("get product", err)
	}
	return &p, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.do(ctx, request{
		op:     "list categories",
		method: http.MethodGet,
		path:   "/api/category-products",
	})
	if err != nil {
		return nil, err
	}
	var cats []domain.Category
	if err := json.Unmarshal(unwrapData(body), &cats); err != nil {
		return nil, decodeError("list categories", err)
	}
	return cats, nil
}

// CreateProduct submits the listing form as multipart, the way the backend's
// full-product endpoint expects it.
func (c *Client) CreateProduct(ctx context.Context, token string, in ports.ProductInput) (*domain.Product, error) {
	return c.submitProduct(ctx, "create product", "/api/products/full", token, in, nil)
}

// UpdateProduct posts to the full-product endpoint with a PUT method
// override. Images already attached to the product are left untouched.
func (c *Client) UpdateProduct(ctx context.Context, token, id string, in ports.ProductInput) (*domain.Product, error) {
	header := http.Header{"X-HTTP-Method-Override": []string{http.MethodPut}}
	return c.submitProduct(ctx, "update product", "/api/products/full/"+url.PathEscape(id), token, in, header)
}

func (c *Client) submitProduct(ctx context.Context, op, path, token string, in ports.ProductInput, header http.Header) (*domain.Product, error) {
	fields := map[string]string{
		"name":              in.Name,
		"description":       in.Description,
		"price":             strconv.FormatFloat(float64(in.Price), 'f', -1, 64),
		"product_condition": in.Condition,
		"user_category_id":  in.CategoryID,
		"stock_quantity":    strconv.Itoa(in.StockQuantity),
		"status":            in.Status,
	}
	if in.AdditionalDescription != "" {
		fields["additional_description"] = in.AdditionalDescription
	}
	body, contentType, err := formBody(fields)
	if err != nil {
		return nil, &domain.FetchError{Op: op, Cause: err}
	}

	resp, err := c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        path,
		token:       token,
		body:        body,
		contentType: contentType,
		header:      header,
	})
	if err != nil {
		return nil, err
	}
	var p domain.Product
	if len(bytes.TrimSpace(resp)) == 0 {
		return &p, nil
	}
	if err := json.Unmarshal(unwrapProduct(resp), &p); err != nil {
		return nil, decodeError(op, err)
	}
	return &p, nil
}

// unwrapProduct accepts {"data": {...}}, {"product": {...}} or a bare product.
func unwrapProduct(body []byte) []byte {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	for _, k := range []string{"data", "product"} {
		if v, ok := env[k]; ok {
			return v
		}
	}
	return body
}

func (c *Client) UpdateProductStatus(ctx context.Context, token, id, status string) error {
	_, err := c.do(ctx, request{
		op:     "update product status",
		method: http.MethodPut,
		path:   "/api/products/" + url.PathEscape(id),
		token:  token,
		json:   map[string]string{"status": status},
	})
	return err
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, request{
		op:     "delete product",
		method: http.MethodDelete,
		path:   "/api/products/" + url.PathEscape(id),
		token:  token,
	})
	return err
}

// ── Orders ────────────────────────────────────────────────────────────────────

func (c *Client) CreateOrder(ctx context.Context, token string, in ports.CreateOrderInput) (*domain.Order, error) {
	req := request{
		op:     "create order",
		method: http.MethodPost,
		path:   "/api/orders",
		token:  token,
		json:   in,
	}
	if in.IdempotencyKey != "" {
		req.header = http.Header{"Idempotency-Key": []string{in.IdempotencyKey}}
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	var o domain.Order
	if len(bytes.TrimSpace(body)) == 0 {
		return &o, nil
	}
	if err := json.Unmarshal(unwrapData(body), &o); err != nil {
		return nil, decodeError("create order", err)
	}
	return &o, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token, id, status string) error {
	_, err := c.do(ctx, request{
		op:     "update order status",
		method: http.MethodPut,
		path:   "/api/orders/" + url.PathEscape(id),
		token:  token,
		json:   map[string]string{"status": status},
	})
	return err
}

// ── Users ─────────────────────────────────────────────────────────────────────

// UpdateProfile submits fields as a multipart form and returns the updated
// user from the {"user": {...}} response.
func (c *Client) UpdateProfile(ctx context.Context, token string, fields map[string]string) (*domain.User, error) {
	buf, contentType, err := formBody(fields)
	if err != nil {
		return nil, &domain.FetchError{Op: "update profile", Cause: err}
	}

	body, err := c.do(ctx, request{
		op:          "update profile",
		method:      http.MethodPost,
		path:        "/api/update-profile",
		token:       token,
		body:        buf,
		contentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	var res struct {
		User *domain.User `json:"user"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, decodeError("update profile", err)
	}
	if res.User == nil {
		return nil, &domain.FetchError{Op: "update profile", Message: "response has no user"}
	}
	return res.User, nil
}

func (c *Client) GetPublicUser(ctx context.Context, username string) (*domain.User, error) {
	body, err := c.do(ctx, request{
		op:     "get user",
		method: http.MethodGet,
		path:   "/api/users/" + url.PathEscape(username),
	})
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := json.Unmarshal(unwrapData(body), &u); err != nil {
		return nil, decodeError("get user", err)
	}
	return &u, nil
}

// ── Transport ─────────────────────────────────────────────────────────────────

// formBody encodes fields as multipart/form-data in key order.
func formBody(fields map[string]string) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

type request struct {
	op          string
	method      string
	path        string
	token       string
	json        any
	body        []byte
	contentType string
	header      http.Header
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var payload io.Reader
	contentType := r.contentType
	switch {
	case r.json != nil:
		b, err := json.Marshal(r.json)
		if err != nil {
			return nil, &domain.FetchError{Op: r.op, Cause: err}
		}
		payload = bytes.NewReader(b)
		contentType = "application/json"
	case r.body != nil:
		payload = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, payload)
	if err != nil {
		return nil, &domain.FetchError{Op: r.op, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("op", r.op).Msg("backend request failed")
		return nil, &domain.FetchError{Op: r.op, Message: "could not reach the server", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.FetchError{Op: r.op, Status: resp.StatusCode, Cause: err}
	}

	c.log.Debug().
		Str("op", r.op).
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("backend request")

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%s: %w", r.op, domain.ErrSessionExpired)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", r.op, domain.ErrNotFound)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		if verr := parseValidation(body); verr != nil {
			return nil, verr
		}
	}
	return nil, &domain.FetchError{Op: r.op, Status: resp.StatusCode, Message: errorMessage(body, resp.Status)}
}

// parseValidation reads {"errors": {field: [msgs]}} or a bare
// {field: [msgs]} body. Nil when neither shape yields a field.
func parseValidation(body []byte) *domain.ValidationError {
	var wrapped struct {
		Errors map[string]json.RawMessage `json:"errors"`
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Errors) > 0 {
		fields = wrapped.Errors
	} else if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}

	verr := &domain.ValidationError{}
	for field, raw := range fields {
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err == nil {
			for _, m := range msgs {
				verr.Add(field, m)
			}
			continue
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil && field != "message" {
			verr.Add(field, msg)
		}
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func errorMessage(body []byte, fallback string) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return fallback
}

// unwrapData returns the "data" member of an object body, or the body.
func unwrapData(body []byte) []byte {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	if data, ok := env["data"]; ok {
		return data
	}
	return body
}

func decodeError(op string, err error) error {
	return &domain.FetchError{Op: op, Message: "unexpected response", Cause: err}
}
