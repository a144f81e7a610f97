// Package gateway is the typed client for the virtual-banking gateway. Every
// call is built, signed, sent and translated the same way; the six operations
// differ only in endpoint path and parameter set.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"vbank-adapter/internal/keystore"
	"vbank-adapter/internal/logger"
	"vbank-adapter/internal/metrics"
	"vbank-adapter/internal/signature"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Timeout bounds every gateway call.
const Timeout = 30 * time.Second

const (
	pathCreateAccount = "/api/v2/virtual/account/label/create"
	pathUpdateAccount = "/api/v2/virtual/account/label/update"
	pathDeleteAccount = "/api/v2/virtual/account/label/delete"
	pathQueryAccount  = "/api/v2/virtual/account/label/queryOne"
	pathQueryOrder    = "/api/v2/virtual/order/detail"
	pathQueryOrders   = "/api/v2/virtual/order/pageList"
)

// KeySource supplies the application signing key.
type KeySource interface {
	PrivateKey() (keystore.Material, error)
}

type Options struct {
	BaseURL     string
	AppID       string
	CountryCode string
	Keys        KeySource

	// HTTPClient overrides the default client. It is copied, and the copy's
	// Timeout is forced to Timeout.
	HTTPClient *http.Client
	// Limiter throttles outbound calls when set.
	Limiter *rate.Limiter
	Metrics *metrics.Metrics
}

// Client is safe for concurrent use. It never retries; retry policy belongs
// to the caller.
type Client struct {
	baseURL     string
	appID       string
	countryCode string
	keys        KeySource
	httpClient  *http.Client
	limiter     *rate.Limiter
	metrics     *metrics.Metrics

	timeout time.Duration
	now     func() time.Time
	nonce   func() string
}

func NewClient(opts Options) *Client {
	if opts.AppID == "" {
		logger.L().Warn("gateway app id is empty")
	}

	var httpClient http.Client
	if opts.HTTPClient != nil {
		httpClient = *opts.HTTPClient
	}
	httpClient.Timeout = Timeout

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		appID:       opts.AppID,
		countryCode: opts.CountryCode,
		keys:        opts.Keys,
		httpClient:  &httpClient,
		limiter:     opts.Limiter,
		metrics:     opts.Metrics,
		timeout:     Timeout,
		now:         time.Now,
		nonce:       NewNonce,
	}
}

// ----------------- Request pipeline -----------------

type request interface {
	params() (signature.Params, error)
}

// call runs build → sign → send → translate for one operation and decodes a
// 2xx body into out.
func call[T any](ctx context.Context, c *Client, op, path string, req request) (*Response[T], error) {
	p, err := req.params()
	if err != nil {
		return nil, err
	}

	p["requestTime"] = c.now().UnixMilli()
	p["nonceStr"] = c.nonce()
	p["version"] = Version

	log := logger.FromCtx(ctx).With(
		zap.String("operation", op),
		zap.String("path", path),
		zap.String("nonce", p["nonceStr"].(string)),
	)

	key, err := c.keys.PrivateKey()
	if err != nil {
		log.Error("signing key unavailable", zap.Error(err))
		return nil, err
	}

	sig, err := signature.Sign(p, key)
	if err != nil {
		log.Error("failed to sign request", zap.Error(err))
		return nil, err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", op, err)
	}

	timer := metrics.StartTimer()
	raw, err := c.send(ctx, op, path, sig, body)
	if err != nil {
		outcome := "error"
		var gwErr *Error
		if errors.As(err, &gwErr) {
			outcome = string(gwErr.Category)
		}
		c.metrics.ObserveGateway(op, outcome, timer.Duration())
		log.Error("gateway call failed", zap.Error(err))
		return nil, err
	}

	res := &Response[T]{Raw: raw}
	if err := json.Unmarshal(raw, res); err != nil {
		c.metrics.ObserveGateway(op, string(CategoryMalformed), timer.Duration())
		log.Error("failed decoding gateway response", zap.Error(err), zap.ByteString("response", raw))
		return nil, &Error{
			Category:    CategoryMalformed,
			Operation:   op,
			Message:     "undecodable response body",
			RawResponse: raw,
			Err:         err,
		}
	}

	c.metrics.ObserveGateway(op, "ok", timer.Duration())
	log.Info("gateway call completed",
		zap.String("resp_code", res.RespCode),
		zap.String("resp_msg", res.RespMsg),
		zap.Duration("duration", timer.Duration()),
	)
	return res, nil
}

func (c *Client) send(ctx context.Context, op, path, sig string, body []byte) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Category: CategoryTimeout, Operation: op, Message: "rate limiter wait", Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Category: CategoryUnreachable, Operation: op, Message: "build request", Err: err}
	}

	req.Header.Set("Authorization", "Bearer "+c.appID)
	req.Header.Set("countryCode", c.countryCode)
	req.Header.Set("Signature", sig)
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newRejected(op, resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *Client) transportError(op string, err error) *Error {
	if isTimeout(err) {
		return &Error{Category: CategoryTimeout, Operation: op, Message: "no response within " + c.timeout.String(), Err: err}
	}
	return &Error{Category: CategoryUnreachable, Operation: op, Message: err.Error(), Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
