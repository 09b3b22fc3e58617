package settlement

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
)

func TestGetTransactionParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/transactions/tx-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("unexpected api key %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"transactionId": "tx-1",
			"reference": "abcd1234",
			"status": "SUCCESS",
			"amount": "10",
			"recipient": "0xabc",
			"asset": "SIT"
		}`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "secret", srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	tx, err := client.GetTransaction(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if tx.Reference != "abcd1234" || tx.Asset != "SIT" || tx.Failed() {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "", nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.GetTransaction(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetTransactionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "", nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.GetTransaction(context.Background(), "tx-1")
	if !errors.Is(err, domain.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestGetTransactionTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client, err := NewHTTPClient(srv.URL, "", nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.GetTransaction(ctx, "tx-1")
	if !errors.Is(err, domain.ErrExternalService) {
		t.Fatalf("expected ErrExternalService on timeout, got %v", err)
	}
}

func TestNewHTTPClientConfiguration(t *testing.T) {
	if _, err := NewHTTPClient("", "", nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if _, err := NewHTTPClient("   ", "", nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for blank url, got %v", err)
	}
}
