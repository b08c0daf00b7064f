package checkout

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Gateway creates hosted checkout sessions with an external payment provider
// and returns the redirect URL for the buyer. Implementations perform network
// I/O and must honour the context.
type Gateway interface {
	CreateSession(ctx context.Context, req Request) (string, error)
}

// GatewayError is a structured failure from the payment gateway: a network
// error, a non-2xx response, or a malformed session object. The upstream
// message is preserved for diagnostics.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment gateway: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payment gateway: %s", e.Message)
}

// ClientConfig configures the HTTP gateway client.
type ClientConfig struct {
	// BaseURL of the gateway API, without a trailing slash.
	BaseURL string
	// APIKey authenticates the merchant. It is sent as a bearer token and
	// must never appear in logs or response bodies.
	APIKey string
	// Timeout bounds a single CreateSession call. Defaults to 15s.
	Timeout time.Duration
}

// Client is an HTTP Gateway implementation.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

var _ Gateway = (*Client)(nil)

// NewClient creates a gateway Client. The provided http.Client may be nil,
// in which case http.DefaultClient is used.
func NewClient(cfg ClientConfig, httpClient *http.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    httpClient,
	}
}

// CreateSession posts the request to the gateway's checkout-sessions endpoint
// and returns the session redirect URL. Every failure path returns a
// *GatewayError; a partial or empty URL is never returned.
func (c *Client) CreateSession(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := encodeSessionRequest(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return "", &GatewayError{Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &GatewayError{Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &GatewayError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &GatewayError{
			StatusCode: resp.StatusCode,
			Message:    gatewayMessage(data),
		}
	}

	url, err := decodeSessionURL(data)
	if err != nil {
		return "", &GatewayError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	return url, nil
}

// encodeSessionRequest serializes a Request to the gateway's JSON wire format.
func encodeSessionRequest(req Request) []byte {
	var e jx.Encoder

	e.ObjStart()

	e.FieldStart("currency")
	e.Str(req.Currency)

	e.FieldStart("success_url")
	e.Str(req.SuccessURL)

	e.FieldStart("cancel_url")
	e.Str(req.CancelURL)

	e.FieldStart("line_items")
	e.ArrStart()
	for _, it := range req.Items {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(it.Name)
		if it.Description != "" {
			e.FieldStart("description")
			e.Str(it.Description)
		}
		e.FieldStart("unit_amount")
		e.Int64(it.UnitAmountMinor)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()

	if len(req.ShippingCountries) > 0 {
		e.FieldStart("shipping_countries")
		e.ArrStart()
		for _, c := range req.ShippingCountries {
			e.Str(c)
		}
		e.ArrEnd()
	}

	e.FieldStart("metadata")
	e.ObjStart()
	for k, v := range req.Metadata {
		e.FieldStart(k)
		e.Str(v)
	}
	e.ObjEnd()

	e.ObjEnd()

	return e.Bytes()
}

// decodeSessionURL extracts the redirect URL from a session object.
func decodeSessionURL(data []byte) (string, error) {
	var url string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "url" {
			return d.Skip()
		}
		s, err := d.Str()
		if err != nil {
			return err
		}
		url = s
		return nil
	}); err != nil {
		return "", errors.Wrap(err, "malformed session response")
	}
	if url == "" {
		return "", errors.New("session response missing redirect url")
	}
	return url, nil
}

// gatewayMessage extracts the error message from a gateway failure body,
// falling back to the raw body when it is not the expected JSON shape.
func gatewayMessage(data []byte) string {
	var msg string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "error" {
			return d.Skip()
		}
		s, err := d.Str()
		if err != nil {
			return err
		}
		msg = s
		return nil
	}); err != nil || msg == "" {
		return string(data)
	}
	return msg
}
