package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/civitrack/civitrack/internal/errs"
)

// Client is an HTTP Gateway implementation backed by two public JSON
// geocoding APIs: an IP locator for network addresses and a postcode
// lookup for location codes.
type Client struct {
	http        *http.Client
	addressBase string
	codeBase    string
}

// NewClient constructs a Client against the given API base URLs.
func NewClient(addressBase, codeBase string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		addressBase: addressBase,
		codeBase:    codeBase,
	}
}

// ResolveNetworkAddress maps an IP address to coordinates.
func (c *Client) ResolveNetworkAddress(ctx context.Context, addr string) (Point, error) {
	if addr == "" {
		return Point{}, fmt.Errorf("empty network address: %w", errs.ErrGateway)
	}
	var body struct {
		Status    string  `json:"status"`
		Message   string  `json:"message"`
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lon"`
	}
	if err := c.getJSON(ctx, c.addressBase+"/"+url.PathEscape(addr), &body); err != nil {
		return Point{}, err
	}
	if body.Status != "success" {
		return Point{}, fmt.Errorf("locate %q: %s: %w", addr, body.Message, errs.ErrGateway)
	}
	return Point{Latitude: body.Latitude, Longitude: body.Longitude}, nil
}

// ResolveLocationCode maps a postal code to coordinates.
func (c *Client) ResolveLocationCode(ctx context.Context, code string) (Point, error) {
	if code == "" {
		return Point{}, fmt.Errorf("empty location code: %w", errs.ErrGateway)
	}
	var body struct {
		Status int `json:"status"`
		Result struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"result"`
	}
	if err := c.getJSON(ctx, c.codeBase+"/"+url.PathEscape(code), &body); err != nil {
		return Point{}, err
	}
	if body.Status != http.StatusOK {
		return Point{}, fmt.Errorf("locate %q: status %d: %w", code, body.Status, errs.ErrGateway)
	}
	return Point{Latitude: body.Result.Latitude, Longitude: body.Result.Longitude}, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %v: %w", err, errs.ErrGateway)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("geocoder request: %v: %w", err, errs.ErrGateway)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("geocoder response: %v: %w", err, errs.ErrGateway)
	}
	return nil
}
