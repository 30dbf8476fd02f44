package bank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestHTTPClientCreateLinkToken проверяет запрос link-токена и заголовки
// авторизации агрегатора.
func TestHTTPClientCreateLinkToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/link/token/create" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Aggregator-Client-Id") != "client" || r.Header.Get("Aggregator-Secret") != "secret" {
			t.Fatal("expected aggregator credentials headers")
		}

		var req createLinkTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.UserID != "user-1" {
			t.Fatalf("unexpected user id %s", req.UserID)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"link_token": "link-token-123",
			"expiration": time.Now().Add(4 * time.Hour).UTC(),
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "client", "secret", time.Second)
	token, err := client.CreateLinkToken(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token.Token != "link-token-123" {
		t.Fatalf("unexpected token %s", token.Token)
	}
}

// TestHTTPClientTransientOn5xx проверяет классификацию 5xx как transient.
func TestHTTPClientTransientOn5xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "client", "secret", time.Second)
	_, err := client.CreateLinkToken(context.Background(), "user-1")
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

// TestHTTPClientTransientOnTimeout проверяет классификацию таймаута.
func TestHTTPClientTransientOnTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "client", "secret", 20*time.Millisecond)
	_, err := client.ExchangePublicToken(context.Background(), "public-token")
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

// TestHTTPClientPermanentOn4xx проверяет, что 4xx не считается transient
// и несет код ошибки агрегатора.
func TestHTTPClientPermanentOn4xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(apiError{ErrorCode: "INVALID_PUBLIC_TOKEN", ErrorMessage: "token already consumed"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "client", "secret", time.Second)
	_, err := client.ExchangePublicToken(context.Background(), "used-token")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsTransient(err) {
		t.Fatalf("expected permanent error, got transient: %v", err)
	}
}

// TestHTTPClientListTransactions проверяет разбор операций и формат дат
// в запросе периода.
func TestHTTPClientListTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req listTransactionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.StartDate != "2024-01-01" || req.EndDate != "2024-01-31" {
			t.Fatalf("unexpected period %s..%s", req.StartDate, req.EndDate)
		}

		_ = json.NewEncoder(w).Encode(transactionsResponse{Transactions: []wireTransaction{
			{ID: "txn-1", AccountID: "acc-1", Amount: -4.50, Date: "2024-01-14", Category: "Coffee", Pending: false},
			{ID: "txn-2", AccountID: "acc-1", Amount: 2500, Date: "2024-01-15", Category: "Payroll", Pending: true},
		}})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "client", "secret", time.Second)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	transactions, err := client.ListTransactions(context.Background(), "item-1", start, end)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(transactions))
	}
	if transactions[0].Amount != -4.50 {
		t.Fatalf("unexpected amount %v", transactions[0].Amount)
	}
	if transactions[1].Date.Format("2006-01-02") != "2024-01-15" {
		t.Fatalf("unexpected date %v", transactions[1].Date)
	}
}
