package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://api.mercadopago.com"

type Item struct {
	ID        string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// ProviderError is a failed preference request, kept verbatim for the shopper.
type ProviderError struct {
	Status  int
	Message string
	Details string
}

func (e *ProviderError) Error() string {
	if e.Details == "" {
		return "mercadopago: " + e.Message
	}
	return "mercadopago: " + e.Message + ": " + e.Details
}

var ErrMissingToken = &ProviderError{Message: "Server configuration error: Missing access token"}

type Config struct {
	AccessToken string
	BaseURL     string
	SiteURL     string
	Currency    string
	HTTP        *http.Client
}

type Client struct {
	AccessToken string
	BaseURL     string
	SiteURL     string
	Currency    string
	HTTP        *http.Client
}

func NewClient(cfg Config) *Client {
	c := &Client{
		AccessToken: strings.TrimSpace(cfg.AccessToken),
		BaseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		SiteURL:     strings.TrimRight(cfg.SiteURL, "/"),
		Currency:    cfg.Currency,
		HTTP:        cfg.HTTP,
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Currency == "" {
		c.Currency = "ARS"
	}
	return c
}

type siteURLKey struct{}

// WithSiteURL records the public origin of the current request, used for
// back URLs when no site URL is configured.
func WithSiteURL(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, siteURLKey{}, strings.TrimRight(origin, "/"))
}

func (c *Client) siteURL(ctx context.Context) string {
	if c.SiteURL != "" {
		return c.SiteURL
	}
	if v, _ := ctx.Value(siteURLKey{}).(string); v != "" {
		return v
	}
	return "http://localhost:3000"
}

type preferenceReq struct {
	Items      []preferenceItem `json:"items"`
	BackURLs   backURLs         `json:"back_urls"`
	AutoReturn string           `json:"auto_return,omitempty"`
}

type preferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type backURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type errorResp struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Cause   json.RawMessage `json:"cause"`
}

func (c *Client) CreatePreference(ctx context.Context, items []Item) (Preference, error) {
	if c.AccessToken == "" {
		return Preference{}, ErrMissingToken
	}
	if len(items) == 0 {
		return Preference{}, &ProviderError{Message: "no items to pay"}
	}
	site := c.siteURL(ctx)
	body := preferenceReq{
		Items: make([]preferenceItem, 0, len(items)),
		BackURLs: backURLs{
			Success: site + "/?result=success&status=approved",
			Failure: site + "/?result=success&status=rejected",
			Pending: site + "/?result=success&status=pending",
		},
	}
	if strings.HasPrefix(site, "https") {
		body.AutoReturn = "approved"
	}
	for _, it := range items {
		body.Items = append(body.Items, preferenceItem{
			ID:         it.ID,
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.InexactFloat64(),
			CurrencyID: c.Currency,
		})
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return Preference{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/checkout/preferences", bytes.NewReader(raw))
	if err != nil {
		return Preference{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Preference{}, &ProviderError{Message: "payment provider unreachable", Details: err.Error()}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Preference{}, providerError(resp.StatusCode, respBody)
	}
	var out Preference
	if err := json.Unmarshal(respBody, &out); err != nil {
		return Preference{}, fmt.Errorf("mercadopago: decode preference: %w", err)
	}
	if strings.TrimSpace(out.ID) == "" || strings.TrimSpace(out.InitPoint) == "" {
		return Preference{}, &ProviderError{Status: resp.StatusCode, Message: "missing preference id or init_point"}
	}
	return out, nil
}

func providerError(status int, body []byte) *ProviderError {
	pe := &ProviderError{Status: status, Message: http.StatusText(status)}
	var er errorResp
	if err := json.Unmarshal(body, &er); err != nil {
		pe.Details = strings.TrimSpace(string(body))
		return pe
	}
	if er.Message != "" {
		pe.Message = er.Message
	} else if er.Error != "" {
		pe.Message = er.Error
	}
	if len(er.Cause) > 0 && string(er.Cause) != "null" {
		pe.Details = string(er.Cause)
	}
	return pe
}
