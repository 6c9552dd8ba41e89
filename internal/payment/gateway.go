package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Gateway represents a connector to the external ads-payment provider. An
// error return means the provider could not be reached; a reply with a
// non-zero code or missing redirect is a definitive rejection.
type Gateway interface {
	InitiatePayment(ctx context.Context, req Request) (UpstreamReply, error)
}

const (
	browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"
	adsOrigin = "https://ads.tiktok.com"
)

// HTTPGateway shapes and sends the provider request over HTTPS POST.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway builds a gateway against the given provider endpoint. A nil
// client falls back to a default with a 30s timeout.
func NewHTTPGateway(baseURL string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPGateway{baseURL: baseURL, client: client}
}

type upstreamPayload struct {
	Amount    string         `json:"amount"`
	RiskInfo  map[string]any `json:"risk_info"`
	UpayRoute int            `json:"upay_route"`
	UseSDK    int            `json:"use_sdk"`
	AdChannel string         `json:"ad_channel"`
}

type upstreamResponse struct {
	Code int `json:"code"`
	Data struct {
		FormHTML string `json:"form_html"`
	} `json:"data"`
	Msg string `json:"msg"`
}

// InitiatePayment sends one fresh attempt to the provider. No retries, no
// idempotency key: re-invoking after an ambiguous failure can double-submit.
func (g *HTTPGateway) InitiatePayment(ctx context.Context, req Request) (UpstreamReply, error) {
	endpoint, err := g.buildURL(req)
	if err != nil {
		return UpstreamReply{}, fmt.Errorf("build upstream url: %w", err)
	}

	payload := upstreamPayload{
		Amount:    strconv.FormatFloat(req.Amount, 'f', 2, 64),
		RiskInfo:  staticRiskInfo(),
		UpayRoute: 1,
		UseSDK:    1,
		AdChannel: "TTAM_PAYMENT_PAGE",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return UpstreamReply{}, fmt.Errorf("encode upstream payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return UpstreamReply{}, fmt.Errorf("build upstream request: %w", err)
	}
	g.setHeaders(httpReq, req)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return UpstreamReply{}, fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	// An error status is not a decision on the payment; only non-error
	// replies are inspected for the success marker.
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return UpstreamReply{}, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return UpstreamReply{}, fmt.Errorf("read upstream response: %w", err)
	}

	var parsed upstreamResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// A non-JSON body is still a reply from the provider, not a
		// transport failure; surface it as a rejection with no message.
		return UpstreamReply{Code: -1}, nil
	}
	return UpstreamReply{
		Code:        parsed.Code,
		RedirectURL: parsed.Data.FormHTML,
		Message:     parsed.Msg,
	}, nil
}

func (g *HTTPGateway) buildURL(req Request) (string, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("aadvid", req.ExternalAccountID)
	q.Set("req_src", "bidding")
	q.Set("msToken", req.MSToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (g *HTTPGateway) setHeaders(httpReq *http.Request, req Request) {
	cookie := "csrftoken=" + req.CSRFToken
	if req.Cookies != "" {
		cookie = req.Cookies + "; " + cookie
	}
	httpReq.Header.Set("accept", "application/json, text/plain, */*")
	httpReq.Header.Set("accept-language", "en-US,en;q=0.9")
	httpReq.Header.Set("cache-control", "no-cache")
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("cookie", cookie)
	httpReq.Header.Set("origin", adsOrigin)
	httpReq.Header.Set("pragma", "no-cache")
	httpReq.Header.Set("priority", "u=1, i")
	httpReq.Header.Set("referer", fmt.Sprintf("%s/i18n/account/payment?aadvid=%s", adsOrigin, req.ExternalAccountID))
	httpReq.Header.Set("sec-ch-ua", `"Not A(Brand";v="8", "Chromium";v="132", "Google Chrome";v="132"`)
	httpReq.Header.Set("sec-ch-ua-mobile", "?0")
	httpReq.Header.Set("sec-ch-ua-platform", `"Windows"`)
	httpReq.Header.Set("sec-fetch-dest", "empty")
	httpReq.Header.Set("sec-fetch-mode", "cors")
	httpReq.Header.Set("sec-fetch-site", "same-origin")
	httpReq.Header.Set("trace-log-adv-id", req.ExternalAccountID)
	httpReq.Header.Set("user-agent", browserUA)
	httpReq.Header.Set("x-csrftoken", req.CSRFToken)
}

// staticRiskInfo returns the fixed device/browser metadata the provider
// expects. Static, non-secret values.
func staticRiskInfo() map[string]any {
	return map[string]any{
		"cookie_enabled":   true,
		"screen_width":     1920,
		"screen_height":    1080,
		"browser_language": "en-US",
		"browser_platform": "Win32",
		"browser_name":     "Mozilla",
		"browser_version":  "5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36",
		"browser_online":   true,
		"timezone_name":    "UTC",
		"device_platform":  "web",
	}
}

// StaticGateway simulates a provider that always approves. Useful for tests
// and local development without upstream credentials.
type StaticGateway struct{}

// InitiatePayment approves the request with a synthetic redirect URL.
func (StaticGateway) InitiatePayment(_ context.Context, req Request) (UpstreamReply, error) {
	return UpstreamReply{
		Code:        0,
		RedirectURL: adsOrigin + "/payment/redirect/" + uuid.NewString(),
	}, nil
}
