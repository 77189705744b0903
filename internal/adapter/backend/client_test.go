package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/normalize"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler, retries int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := testLogger()
	client, err := NewClient(srv.URL+"/api", time.Second, retries, normalize.New(logger), logger)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewClientValidatesURL(t *testing.T) {
	if _, err := NewClient("://bad-url", time.Second, 0, nil, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewClient("/relative", time.Second, 0, nil, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"token":"tkn","user":{"_id":"u-1","name":"Ria","email":"ria@example.com","role":"RIDER"}}}`)
	}), 0)

	session, err := client.Login(context.Background(), model.Credentials{Email: "ria@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token != "tkn" || session.User.ID != "u-1" || session.User.Role != model.RoleRider {
		t.Fatalf("unexpected session: %+v", session)
	}
	if client.Token() != "" {
		t.Fatalf("login must not activate the token")
	}

	_, err = client.Login(context.Background(), model.Credentials{Email: "ria@example.com", Password: "nope"})
	if !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestFetchOrderSendsTokenAndNormalizes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tkn" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/api/orders/abc123" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"status":"success","data":{"order":{"_id":"abc123","status":"PREPARING","totalAmount":"23.00"}}}`)
	}), 0)

	_, err := client.FetchOrder(context.Background(), "abc123")
	if !errors.Is(err, domainErrors.ErrNoSession) || !errors.Is(err, domainErrors.ErrFetchFailure) {
		t.Fatalf("expected unauthorized fetch failure, got %v", err)
	}

	client.SetToken("tkn")
	order, err := client.FetchOrder(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if order.ID != "abc123" || order.TotalAmount != 23 || order.Status != "PREPARING" {
		t.Fatalf("unexpected order: %+v", order)
	}

	if _, err := client.FetchOrder(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchOrderListScopes(t *testing.T) {
	cases := []struct {
		scope model.Scope
		path  string
		query string
	}{
		{scope: model.ScopeMine, path: "/api/orders"},
		{scope: model.ScopeRider, path: "/api/rider/orders"},
		{scope: model.ScopeAdmin, path: "/api/admin/orders"},
		{scope: model.ScopeAvailable, path: "/api/orders", query: "status=READY_FOR_PICKUP"},
	}
	for _, tc := range cases {
		t.Run(string(tc.scope), func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tc.path || r.URL.RawQuery != tc.query {
					t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
				}
				_, _ = io.WriteString(w, `{"data":{"data":{"orders":[{"id":"o-1","status":"PENDING"},{"status":"PENDING"}]}}}`)
			}), 0)

			orders, err := client.FetchOrderList(context.Background(), tc.scope)
			if err != nil {
				t.Fatalf("fetch list: %v", err)
			}
			if len(orders) != 1 || orders[0].ID != "o-1" {
				t.Fatalf("unexpected orders: %+v", orders)
			}
		})
	}

	client := newTestClient(t, http.NotFoundHandler(), 0)
	if _, err := client.FetchOrderList(context.Background(), model.Scope("everyone")); err == nil {
		t.Fatal("expected unknown scope error")
	}
}

func TestReadsAreRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}), 2)

	if _, err := client.FetchOrderList(context.Background(), model.ScopeMine); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestReadsGiveUp(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), 1)

	_, err := client.FetchOrderList(context.Background(), model.ScopeMine)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status error, got %v", err)
	}
	if !errors.Is(err, domainErrors.ErrFetchFailure) {
		t.Fatalf("expected ErrFetchFailure, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}), 3)

	if _, err := client.FetchOrder(context.Background(), "o-1"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not be retried, got %d attempts", calls.Load())
	}
}

func TestActions(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]string
	}
	var got []call
	fail := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = append(got, call{method: r.Method, path: r.URL.Path, body: body})
		if fail {
			w.WriteHeader(http.StatusConflict)
			return
		}
		_, _ = io.WriteString(w, `{"success":true}`)
	}), 3)

	ctx := context.Background()
	if err := client.AssignRider(ctx, "o-1", "r-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := client.UpdateOrderStatus(ctx, "o-1", "OUT_FOR_DELIVERY"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 calls, got %+v", got)
	}
	if got[0].method != http.MethodPut || got[0].path != "/api/orders/o-1/assign-rider" || got[0].body["riderId"] != "r-1" {
		t.Fatalf("unexpected assign call: %+v", got[0])
	}
	if got[1].path != "/api/orders/o-1/status" || got[1].body["status"] != "OUT_FOR_DELIVERY" {
		t.Fatalf("unexpected status call: %+v", got[1])
	}

	fail = true
	err := client.UpdateOrderStatus(ctx, "o-1", "DELIVERED")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("writes must not be retried, got %d calls", len(got))
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d := parseRetryAfter(""); d != defaultRetryAfter {
		t.Fatalf("expected default, got %v", d)
	}
	if d := parseRetryAfter("3"); d != 3*time.Second {
		t.Fatalf("expected 3s, got %v", d)
	}
	if d := parseRetryAfter("soon"); d != defaultRetryAfter {
		t.Fatalf("expected default for garbage, got %v", d)
	}
}

func TestTooManyRequestsIsRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"_id":"o-1"}}`)
	}), 1)

	order, err := client.FetchOrder(context.Background(), "o-1")
	if err != nil || order.ID != "o-1" {
		t.Fatalf("expected success after rate limit, got %+v %v", order, err)
	}
}
