package swap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAggregator(url string) *AggregatorClient {
	return NewAggregatorClient(AggregatorOptions{
		Endpoint:  url,
		Timeout:   2 * time.Second,
		RetryWait: 10 * time.Millisecond,
		RPS:       1000,
		Burst:     1000,
	})
}

func TestAggregatorQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("inputMint") != "MintA" || q.Get("outputMint") != "MintB" {
			t.Errorf("unexpected mints: %s -> %s", q.Get("inputMint"), q.Get("outputMint"))
		}
		if q.Get("amount") != "250000" {
			t.Errorf("unexpected amount: %s", q.Get("amount"))
		}
		if q.Get("slippageBps") != "300" {
			t.Errorf("unexpected slippage: %s", q.Get("slippageBps"))
		}
		w.Write([]byte(`{"inputMint":"MintA","inAmount":"250000","outputMint":"MintB","outAmount":"498","routePlan":[]}`))
	}))
	defer server.Close()

	client := newTestAggregator(server.URL)
	quote, err := client.Quote(context.Background(), QuoteRequest{
		InputMint:   "MintA",
		OutputMint:  "MintB",
		Amount:      250000,
		SlippageBps: 300,
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	if quote.InAmount != 250000 {
		t.Errorf("expected inAmount 250000, got %d", quote.InAmount)
	}
	if quote.OutAmount != 498 {
		t.Errorf("expected outAmount 498, got %d", quote.OutAmount)
	}
	if len(quote.Raw) == 0 {
		t.Error("expected raw quote body to be preserved")
	}
}

func TestAggregatorQuoteNoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorCode":"COULD_NOT_FIND_ANY_ROUTE","error":"no route found"}`))
	}))
	defer server.Close()

	client := newTestAggregator(server.URL)
	_, err := client.Quote(context.Background(), QuoteRequest{
		InputMint:  "MintA",
		OutputMint: "MintB",
		Amount:     1000,
	})
	if !errors.Is(err, ErrNoLiquidity) {
		t.Errorf("expected ErrNoLiquidity, got %v", err)
	}
}

func TestAggregatorQuoteNotTradable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorCode":"TOKEN_NOT_TRADABLE","error":"token is not tradable"}`))
	}))
	defer server.Close()

	client := newTestAggregator(server.URL)
	_, err := client.Quote(context.Background(), QuoteRequest{
		InputMint:  "MintA",
		OutputMint: "MintB",
		Amount:     1000,
	})
	if !errors.Is(err, ErrNotTradable) {
		t.Errorf("expected ErrNotTradable, got %v", err)
	}
}

func TestAggregatorQuoteRetriesOn429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"inputMint":"MintA","inAmount":"1000","outputMint":"MintB","outAmount":"2","routePlan":[]}`))
	}))
	defer server.Close()

	client := newTestAggregator(server.URL)
	quote, err := client.Quote(context.Background(), QuoteRequest{
		InputMint:  "MintA",
		OutputMint: "MintB",
		Amount:     1000,
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if quote.InAmount != 1000 {
		t.Errorf("expected inAmount 1000, got %d", quote.InAmount)
	}
}

func TestAggregatorBuildSwap(t *testing.T) {
	rawQuote := `{"inputMint":"MintA","inAmount":"1000","outputMint":"MintB","outAmount":"2"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuoteResponse json.RawMessage `json:"quoteResponse"`
			UserPublicKey string          `json:"userPublicKey"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode build request: %v", err)
		}
		if string(req.QuoteResponse) != rawQuote {
			t.Errorf("quote was not passed back verbatim: %s", req.QuoteResponse)
		}
		if req.UserPublicKey != "WalletA" {
			t.Errorf("unexpected owner: %s", req.UserPublicKey)
		}
		w.Write([]byte(`{"swapTransaction":"dW5zaWduZWQ="}`))
	}))
	defer server.Close()

	client := newTestAggregator(server.URL)
	tx, err := client.BuildSwap(context.Background(), &Quote{Raw: json.RawMessage(rawQuote)}, "WalletA")
	if err != nil {
		t.Fatalf("BuildSwap failed: %v", err)
	}
	if tx != "dW5zaWduZWQ=" {
		t.Errorf("unexpected transaction: %s", tx)
	}
}

func TestAggregatorBuildSwapEmptyTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestAggregator(server.URL)
	_, err := client.BuildSwap(context.Background(), &Quote{Raw: json.RawMessage(`{}`)}, "WalletA")
	if err == nil {
		t.Error("expected error for empty build response")
	}
}

func TestAggregatorQuoteValidation(t *testing.T) {
	client := newTestAggregator("http://127.0.0.1:0")

	if _, err := client.Quote(context.Background(), QuoteRequest{OutputMint: "MintB", Amount: 1}); err == nil {
		t.Error("expected error for missing input mint")
	}
	if _, err := client.Quote(context.Background(), QuoteRequest{InputMint: "MintA", OutputMint: "MintB"}); err == nil {
		t.Error("expected error for zero amount")
	}
}
