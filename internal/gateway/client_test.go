package gateway

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"vbank-adapter/internal/keystore"
	"vbank-adapter/internal/logger"
	"vbank-adapter/internal/metrics"
	"vbank-adapter/internal/signature"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

const (
	testBaseURL = "https://gateway.test"
	testAppID   = "L240101000000001"
	testCountry = "NG"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type staticKeys struct {
	key keystore.Material
	err error
}

func (s staticKeys) PrivateKey() (keystore.Material, error) {
	return s.key, s.err
}

var (
	keyOnce sync.Once
	privKey keystore.Material
	pubKey  keystore.Material
)

func testKeys(t *testing.T) (keystore.Material, keystore.Material) {
	t.Helper()
	keyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		der, err := x509.MarshalPKCS8PrivateKey(k)
		require.NoError(t, err)
		pubDER, err := x509.MarshalPKIXPublicKey(&k.PublicKey)
		require.NoError(t, err)
		privKey = keystore.Material(base64.StdEncoding.EncodeToString(der))
		pubKey = keystore.Material(base64.StdEncoding.EncodeToString(pubDER))
	})
	return privKey, pubKey
}

func newTestClient(t *testing.T) *Client {
	priv, _ := testKeys(t)
	c := NewClient(Options{
		BaseURL:     testBaseURL + "/",
		AppID:       testAppID,
		CountryCode: testCountry,
		Keys:        staticKeys{key: priv},
		Metrics:     metrics.New(),
	})
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	c.nonce = func() string { return "0123456789abcdef0123456789abcdef" }
	return c
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

// decodeBody reads the request body the way the gateway would before checking the signature.
func decodeBody(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	require.NoError(t, dec.Decode(&m))
	return m
}

func assertSigned(t *testing.T, req *http.Request, body map[string]any) {
	t.Helper()
	_, pub := testKeys(t)
	ok, err := signature.Verify(signature.CanonicalizeOutbound(body), req.Header.Get("Signature"), pub)
	require.NoError(t, err)
	assert.True(t, ok, "request signature must cover the transmitted body")
}

func failOnCall(t *testing.T) MockRoundTripperWithError {
	return func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request to %s", req.URL)
		return nil, nil
	}
}

func TestNewClient(t *testing.T) {
	t.Run("Forces timeout", func(t *testing.T) {
		c := NewClient(Options{HTTPClient: &http.Client{Timeout: time.Minute}})
		assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
		assert.Equal(t, Timeout, c.timeout)
	})

	t.Run("Leaves caller client untouched", func(t *testing.T) {
		transport := MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{}`)
		})
		shared := &http.Client{Transport: transport}

		c := NewClient(Options{HTTPClient: shared})

		assert.Zero(t, shared.Timeout)
		assert.NotSame(t, shared, c.httpClient)
		assert.Equal(t, Timeout, c.httpClient.Timeout)
		assert.NotNil(t, c.httpClient.Transport)
	})

	t.Run("EmptyAppID", func(t *testing.T) {
		assert.NotNil(t, NewClient(Options{}))
	})
}

func TestClient_CreateVirtualAccount(t *testing.T) {
	c := newTestClient(t)
	req := CreateVirtualAccountRequest{
		VirtualAccountName: "Ada Lovelace",
		IdentityType:       IdentityPersonal,
		LicenseNumber:      "12345678901",
		CustomerName:       "Ada Lovelace",
	}

	t.Run("Success", func(t *testing.T) {
		respBody := `{
			"respCode": "00000000",
			"respMsg": "success",
			"data": {
				"virtualAccountNo": "6612345678",
				"virtualAccountName": "Ada Lovelace",
				"status": "Enabled",
				"identityType": "personal",
				"licenseNumber": "12345678901",
				"customerName": "Ada Lovelace"
			}
		}`

		c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, testBaseURL+"/api/v2/virtual/account/label/create", r.URL.String())
			assert.Equal(t, "Bearer "+testAppID, r.Header.Get("Authorization"))
			assert.Equal(t, testCountry, r.Header.Get("countryCode"))
			assert.Equal(t, "application/json;charset=UTF-8", r.Header.Get("Content-Type"))
			assert.NotEmpty(t, r.Header.Get("Signature"))

			body := decodeBody(t, r)
			assert.Equal(t, "Ada Lovelace", body["virtualAccountName"])
			assert.Equal(t, "personal", body["identityType"])
			assert.Equal(t, json.Number("1700000000000"), body["requestTime"])
			assert.Equal(t, "0123456789abcdef0123456789abcdef", body["nonceStr"])
			assert.Equal(t, Version, body["version"])
			assert.NotContains(t, body, "email")
			assert.NotContains(t, body, "accountReference")
			assertSigned(t, r, body)

			return jsonResponse(http.StatusOK, respBody)
		})

		res, err := c.CreateVirtualAccount(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, res.Succeeded())
		assert.Equal(t, "6612345678", res.Data.VirtualAccountNo)
		assert.Equal(t, IdentityPersonal, res.Data.IdentityType)
		assert.JSONEq(t, respBody, string(res.Raw))
	})

	t.Run("Optional fields are sent when present", func(t *testing.T) {
		withOptional := req
		withOptional.Email = "ada@example.com"
		withOptional.AccountReference = "cust-42"

		c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			body := decodeBody(t, r)
			assert.Equal(t, "ada@example.com", body["email"])
			assert.Equal(t, "cust-42", body["accountReference"])
			assertSigned(t, r, body)
			return jsonResponse(http.StatusOK, `{"respCode":"00000000","respMsg":"success","data":{}}`)
		})

		_, err := c.CreateVirtualAccount(context.Background(), withOptional)
		assert.NoError(t, err)
	})

	t.Run("Business failure on 2xx is returned verbatim", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{"respCode":"AC100007","respMsg":"license number already bound","data":null}`)
		})

		res, err := c.CreateVirtualAccount(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, res.Succeeded())
		assert.Equal(t, "AC100007", res.RespCode)
	})

	t.Run("Validation", func(t *testing.T) {
		c.httpClient.Transport = failOnCall(t)

		cases := map[string]CreateVirtualAccountRequest{
			"missing name":     {IdentityType: IdentityCompany, LicenseNumber: "RC1", CustomerName: "Acme"},
			"missing license":  {VirtualAccountName: "Acme", IdentityType: IdentityCompany, CustomerName: "Acme"},
			"missing customer": {VirtualAccountName: "Acme", IdentityType: IdentityCompany, LicenseNumber: "RC1"},
			"bad identity":     {VirtualAccountName: "Acme", IdentityType: "passport", LicenseNumber: "RC1", CustomerName: "Acme"},
		}
		for name, bad := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := c.CreateVirtualAccount(context.Background(), bad)
				assert.ErrorIs(t, err, ErrInvalidRequest)
			})
		}
	})

	t.Run("First missing field is reported", func(t *testing.T) {
		c.httpClient.Transport = failOnCall(t)
		empty := CreateVirtualAccountRequest{IdentityType: IdentityCompany}

		for i := 0; i < 20; i++ {
			_, err := c.CreateVirtualAccount(context.Background(), empty)
			require.ErrorIs(t, err, ErrInvalidRequest)
			assert.Contains(t, err.Error(), "virtualAccountName is required")
		}

		_, err := c.CreateVirtualAccount(context.Background(), CreateVirtualAccountRequest{
			VirtualAccountName: "Acme",
			IdentityType:       IdentityCompany,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "licenseNumber is required")
	})
}

func TestClient_AccountOperations(t *testing.T) {
	c := newTestClient(t)

	tests := []struct {
		name   string
		path   string
		fields map[string]any
		call   func() error
	}{
		{
			name:   "UpdateVirtualAccountStatus",
			path:   "/api/v2/virtual/account/label/update",
			fields: map[string]any{"virtualAccountNo": "6612345678", "status": "Disabled"},
			call: func() error {
				_, err := c.UpdateVirtualAccountStatus(context.Background(), UpdateVirtualAccountStatusRequest{VirtualAccountNo: "6612345678", Status: AccountDisabled})
				return err
			},
		},
		{
			name:   "DeleteVirtualAccount",
			path:   "/api/v2/virtual/account/label/delete",
			fields: map[string]any{"virtualAccountNo": "6612345678"},
			call: func() error {
				_, err := c.DeleteVirtualAccount(context.Background(), DeleteVirtualAccountRequest{VirtualAccountNo: "6612345678"})
				return err
			},
		},
		{
			name:   "QueryVirtualAccount",
			path:   "/api/v2/virtual/account/label/queryOne",
			fields: map[string]any{"virtualAccountNo": "6612345678"},
			call: func() error {
				_, err := c.QueryVirtualAccount(context.Background(), QueryVirtualAccountRequest{VirtualAccountNo: "6612345678"})
				return err
			},
		},
		{
			name:   "QueryOrder",
			path:   "/api/v2/virtual/order/detail",
			fields: map[string]any{"orderNo": "VA20240101000001"},
			call: func() error {
				_, err := c.QueryOrder(context.Background(), QueryOrderRequest{OrderNo: "VA20240101000001"})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
				assert.Equal(t, testBaseURL+tt.path, r.URL.String())
				body := decodeBody(t, r)
				for k, v := range tt.fields {
					assert.Equal(t, v, body[k], k)
				}
				assert.Len(t, body, len(tt.fields)+3)
				assertSigned(t, r, body)
				return jsonResponse(http.StatusOK, `{"respCode":"00000000","respMsg":"success","data":null}`)
			})

			assert.NoError(t, tt.call())
		})
	}

	t.Run("Validation", func(t *testing.T) {
		c.httpClient.Transport = failOnCall(t)
		ctx := context.Background()

		_, err := c.UpdateVirtualAccountStatus(ctx, UpdateVirtualAccountStatusRequest{VirtualAccountNo: "1", Status: "Frozen"})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		_, err = c.UpdateVirtualAccountStatus(ctx, UpdateVirtualAccountStatusRequest{Status: AccountEnabled})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		_, err = c.DeleteVirtualAccount(ctx, DeleteVirtualAccountRequest{})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		_, err = c.QueryVirtualAccount(ctx, QueryVirtualAccountRequest{})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		_, err = c.QueryOrder(ctx, QueryOrderRequest{})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestClient_QueryOrder_DecodesAmount(t *testing.T) {
	c := newTestClient(t)
	c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{
			"respCode": "00000000",
			"respMsg": "success",
			"data": {
				"orderNo": "VA20240101000001",
				"virtualAccountNo": "6612345678",
				"orderAmount": 150000.50,
				"currency": "NGN",
				"orderStatus": 1,
				"createdTime": 1700000100000
			}
		}`)
	})

	res, err := c.QueryOrder(context.Background(), QueryOrderRequest{OrderNo: "VA20240101000001"})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("150000.5").Equal(res.Data.OrderAmount))
	assert.Equal(t, 1, res.Data.OrderStatus)
}

func TestClient_QueryOrders(t *testing.T) {
	c := newTestClient(t)
	start, end := int64(1700000000000), int64(1700086400000)

	t.Run("Defaults page", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			assert.Equal(t, testBaseURL+"/api/v2/virtual/order/pageList", r.URL.String())
			body := decodeBody(t, r)
			assert.Equal(t, json.Number("1"), body["pageIndex"])
			assert.Equal(t, json.Number("50"), body["pageSize"])
			assert.Equal(t, json.Number("1700000000000"), body["startTime"])
			assert.Equal(t, json.Number("1700086400000"), body["endTime"])
			assert.NotContains(t, body, "virtualAccountNo")
			assertSigned(t, r, body)

			return jsonResponse(http.StatusOK, `{
				"respCode": "00000000",
				"respMsg": "success",
				"data": {
					"total": 120,
					"pageIndex": 1,
					"pageSize": 50,
					"list": [
						{"orderNo": "VA1", "orderAmount": "1000", "currency": "NGN", "orderStatus": 1, "createdTime": 1700000100000},
						{"orderNo": "VA2", "orderAmount": 0, "currency": "NGN", "orderStatus": 2, "createdTime": 1700000200000}
					]
				}
			}`)
		})

		res, err := c.QueryOrders(context.Background(), QueryOrdersRequest{StartTime: start, EndTime: end})
		require.NoError(t, err)
		assert.Equal(t, 120, res.Data.Total)
		assert.Len(t, res.Data.List, 2)
		assert.Equal(t, "VA2", res.Data.List[1].OrderNo)
	})

	t.Run("Explicit page and account filter", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			body := decodeBody(t, r)
			assert.Equal(t, json.Number("3"), body["pageIndex"])
			assert.Equal(t, json.Number("10"), body["pageSize"])
			assert.Equal(t, "6612345678", body["virtualAccountNo"])
			assertSigned(t, r, body)
			return jsonResponse(http.StatusOK, `{"respCode":"00000000","respMsg":"success","data":{"total":0,"list":[]}}`)
		})

		_, err := c.QueryOrders(context.Background(), QueryOrdersRequest{
			StartTime: start, EndTime: end, VirtualAccountNo: "6612345678", PageIndex: 3, PageSize: 10,
		})
		assert.NoError(t, err)
	})

	t.Run("Validation", func(t *testing.T) {
		c.httpClient.Transport = failOnCall(t)

		for _, bad := range []QueryOrdersRequest{
			{EndTime: end},
			{StartTime: start},
			{StartTime: end, EndTime: start},
			{StartTime: start, EndTime: end, PageIndex: -1},
			{StartTime: start, EndTime: end, PageSize: -5},
		} {
			_, err := c.QueryOrders(context.Background(), bad)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		}
	})
}

func TestClient_ErrorTranslation(t *testing.T) {
	c := newTestClient(t)
	req := QueryVirtualAccountRequest{VirtualAccountNo: "6612345678"}

	t.Run("Rejected with JSON body", func(t *testing.T) {
		body := `{"respCode":"OPEN_GW_000008","respMsg":"sign verify failed"}`
		c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusUnauthorized, body)
		})

		_, err := c.QueryVirtualAccount(context.Background(), req)

		var gwErr *Error
		require.ErrorAs(t, err, &gwErr)
		assert.ErrorIs(t, err, ErrRejected)
		assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
		assert.Equal(t, "OPEN_GW_000008", gwErr.RespCode)
		assert.Equal(t, "sign verify failed", gwErr.RespMsg)
		assert.Equal(t, body, string(gwErr.RawResponse))
		assert.Contains(t, err.Error(), "sign verify failed")
	})

	t.Run("Rejected with HTML body", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusBadGateway, `<html>bad gateway</html>`)
		})

		_, err := c.QueryVirtualAccount(context.Background(), req)

		var gwErr *Error
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, CategoryRejected, gwErr.Category)
		assert.Empty(t, gwErr.RespCode)
		assert.Equal(t, `<html>bad gateway</html>`, string(gwErr.RawResponse))
	})

	t.Run("Unreachable", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripperWithError(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		_, err := c.QueryVirtualAccount(context.Background(), req)

		assert.ErrorIs(t, err, ErrUnreachable)
		assert.NotErrorIs(t, err, ErrTimeout)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("Timeout", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripperWithError(func(r *http.Request) (*http.Response, error) {
			<-r.Context().Done()
			return nil, r.Context().Err()
		})
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := c.QueryVirtualAccount(ctx, req)

		assert.ErrorIs(t, err, ErrTimeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Own deadline without caller deadline", func(t *testing.T) {
		slow := newTestClient(t)
		slow.timeout = 50 * time.Millisecond
		slow.httpClient.Transport = MockRoundTripperWithError(func(r *http.Request) (*http.Response, error) {
			<-r.Context().Done()
			return nil, r.Context().Err()
		})

		start := time.Now()
		_, err := slow.QueryVirtualAccount(context.Background(), req)

		assert.ErrorIs(t, err, ErrTimeout)
		assert.NotErrorIs(t, err, ErrUnreachable)
		assert.Contains(t, err.Error(), "no response within 50ms")
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("Malformed 2xx body", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{invalid-json`)
		})

		_, err := c.QueryVirtualAccount(context.Background(), req)

		var gwErr *Error
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, CategoryMalformed, gwErr.Category)
		assert.Equal(t, `{invalid-json`, string(gwErr.RawResponse))
	})

	t.Run("Missing signing key", func(t *testing.T) {
		broken := newTestClient(t)
		broken.keys = staticKeys{err: keystore.ErrKeyNotFound}
		broken.httpClient.Transport = failOnCall(t)

		_, err := broken.QueryVirtualAccount(context.Background(), req)

		assert.ErrorIs(t, err, keystore.ErrKeyNotFound)
	})

	t.Run("Unusable signing key", func(t *testing.T) {
		broken := newTestClient(t)
		broken.keys = staticKeys{key: "bm90IGEga2V5"}
		broken.httpClient.Transport = failOnCall(t)

		_, err := broken.QueryVirtualAccount(context.Background(), req)

		assert.ErrorIs(t, err, signature.ErrEngineFault)
	})
}

func TestClient_RateLimiter(t *testing.T) {
	c := newTestClient(t)
	c.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	calls := 0
	c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
		calls++
		return jsonResponse(http.StatusOK, `{"respCode":"00000000","respMsg":"success","data":null}`)
	})
	req := QueryOrderRequest{OrderNo: "VA1"}

	_, err := c.QueryOrder(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.QueryOrder(ctx, req)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 1, calls)
}

func TestClient_FreshNoncePerCall(t *testing.T) {
	priv, _ := testKeys(t)
	c := NewClient(Options{BaseURL: testBaseURL, AppID: testAppID, CountryCode: testCountry, Keys: staticKeys{key: priv}})

	var mu sync.Mutex
	seen := make(map[string]bool)
	c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
		body := decodeBody(t, r)
		pair := body["nonceStr"].(string) + "|" + string(body["requestTime"].(json.Number))
		mu.Lock()
		assert.False(t, seen[pair], "nonce/requestTime reused: %s", pair)
		seen[pair] = true
		mu.Unlock()
		return jsonResponse(http.StatusOK, `{"respCode":"00000000","respMsg":"success","data":null}`)
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.QueryOrder(context.Background(), QueryOrderRequest{OrderNo: "VA1"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}

func TestNewNonce(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		n := NewNonce()
		assert.Len(t, n, 32)
		assert.False(t, strings.Contains(n, "-"))
		assert.False(t, seen[n])
		seen[n] = true
	}
}

func TestClient_Metrics(t *testing.T) {
	c := newTestClient(t)
	c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{"respCode":"00000000","respMsg":"success","data":null}`)
	})
	_, err := c.QueryOrder(context.Background(), QueryOrderRequest{OrderNo: "VA1"})
	require.NoError(t, err)

	c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
		return jsonResponse(http.StatusForbidden, `{}`)
	})
	_, err = c.QueryOrder(context.Background(), QueryOrderRequest{OrderNo: "VA1"})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.GatewayRequests.WithLabelValues("query_order", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.GatewayRequests.WithLabelValues("query_order", "rejected")))
}

func TestClient_LogsNeverCarryKeyMaterial(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	defer logger.Replace(zap.New(core))()

	c := newTestClient(t)
	c.httpClient.Transport = MockRoundTripper(func(r *http.Request) *http.Response {
		return jsonResponse(http.StatusOK, `{"respCode":"00000000","respMsg":"success","data":null}`)
	})

	_, err := c.QueryOrder(context.Background(), QueryOrderRequest{OrderNo: "VA1"})
	require.NoError(t, err)

	priv, _ := testKeys(t)
	entries := observed.All()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		for _, v := range e.ContextMap() {
			s, ok := v.(string)
			if ok {
				assert.NotContains(t, s, string(priv)[:40])
			}
		}
	}
	assert.Equal(t, "query_order", entries[len(entries)-1].ContextMap()["operation"])
}
