package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func rpcServer(t *testing.T, handler func(req rpcRequest) (interface{}, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		result, rpcErr := handler(req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}
		if rpcErr != nil {
			resp["error"] = map[string]interface{}{"code": rpcErr.Code, "message": rpcErr.Message}
		} else {
			resp["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPClient_CallContract(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *rpcError) {
		if req.Method != "eth_call" {
			t.Errorf("expected method eth_call, got %s", req.Method)
		}
		return "0x000000000000000000000000000000000000000000000000000000000000002a", nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)

	out, err := client.CallContract(context.Background(), "0x1111111111111111111111111111111111111111", []byte{0x18, 0x16, 0x0d, 0xdd})
	if err != nil {
		t.Fatalf("CallContract: %v", err)
	}
	if len(out) != 32 {
		t.Fatalf("expected 32-byte word, got %d bytes", len(out))
	}
	if out[31] != 0x2a {
		t.Errorf("expected last byte 0x2a, got 0x%02x", out[31])
	}
}

func TestHTTPClient_CallContract_Reverted(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *rpcError) {
		return nil, &rpcError{Code: 3, Message: "execution reverted"}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)

	_, err := client.CallContract(context.Background(), "0x1111111111111111111111111111111111111111", nil)
	if !errors.Is(err, ErrCallReverted) {
		t.Fatalf("expected ErrCallReverted, got %v", err)
	}
}

func TestHTTPClient_RetriesTransportFailures(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x5",
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(3), WithRetryDelay(time.Millisecond))

	nonce, err := client.PendingNonce(context.Background(), "0x1111111111111111111111111111111111111111")
	if err != nil {
		t.Fatalf("PendingNonce: %v", err)
	}
	if nonce != 5 {
		t.Errorf("expected nonce 5, got %d", nonce)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestHTTPClient_UnavailableAfterRetriesExhausted(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(2), WithRetryDelay(time.Millisecond))

	_, err := client.GasPrice(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts (initial + 2 retries), got %d", calls.Load())
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32000, "message": "nonce too low"},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(3), WithRetryDelay(time.Millisecond))

	_, err := client.SendRawTransaction(context.Background(), []byte{0x01})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected no retries for an answered call, got %d attempts", calls.Load())
	}
}

func TestHTTPClient_TransactionReceipt_Pending(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *rpcError) {
		if req.Method != "eth_getTransactionReceipt" {
			t.Errorf("expected method eth_getTransactionReceipt, got %s", req.Method)
		}
		return nil, nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)

	receipt, err := client.TransactionReceipt(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("TransactionReceipt: %v", err)
	}
	if receipt != nil {
		t.Errorf("expected nil receipt while pending, got %+v", receipt)
	}
}

func TestHTTPClient_TransactionReceipt_Confirmed(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *rpcError) {
		return map[string]interface{}{
			"transactionHash": "0xabc",
			"blockNumber":     "0x10",
			"status":          "0x1",
			"logs": []map[string]interface{}{
				{
					"address": "0x1111111111111111111111111111111111111111",
					"topics": []string{
						"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
						"0x0000000000000000000000000000000000000000000000000000000000000000",
						"0x0000000000000000000000004444444444444444444444444444444444444444",
						"0x0000000000000000000000000000000000000000000000000000000000000007",
					},
					"data": "0x",
				},
			},
		}, nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)

	receipt, err := client.TransactionReceipt(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("TransactionReceipt: %v", err)
	}
	if receipt.BlockNumber != 16 {
		t.Errorf("expected block 16, got %d", receipt.BlockNumber)
	}
	if receipt.Status != 1 {
		t.Errorf("expected status 1, got %d", receipt.Status)
	}
	if len(receipt.Logs) != 1 || len(receipt.Logs[0].Topics) != 4 {
		t.Fatalf("expected one log with 4 topics, got %+v", receipt.Logs)
	}
}

func TestHTTPClient_ChainID(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) (interface{}, *rpcError) {
		if req.Method != "eth_chainId" {
			t.Errorf("expected method eth_chainId, got %s", req.Method)
		}
		return "0x539", nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)

	id, err := client.ChainID(context.Background())
	if err != nil {
		t.Fatalf("ChainID: %v", err)
	}
	if id.Int64() != 1337 {
		t.Errorf("expected chain id 1337, got %s", id)
	}
}
