package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient implements Gateway using HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new Ethereum JSON-RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Gateway = (*HTTPClient)(nil)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
// Transport failures are retried; RPC-level errors are returned verbatim
// because the ledger did answer.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("%w: max retries exceeded: %v", ErrUnavailable, lastErr)
}

// revertWrapped maps RPC-level errors to ErrCallReverted, leaving transport
// errors (already wrapped as ErrUnavailable) untouched.
func revertWrapped(err error) error {
	var rpcErr *rpcError
	if asRPCError(err, &rpcErr) {
		return fmt.Errorf("%w: %v", ErrCallReverted, rpcErr)
	}
	return err
}

func asRPCError(err error, target **rpcError) bool {
	e, ok := err.(*rpcError)
	if ok {
		*target = e
	}
	return ok
}

// callMsg is the argument object for eth_call and eth_estimateGas.
type callMsg struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

// CallContract executes a read-only contract call against latest state.
func (c *HTTPClient) CallContract(ctx context.Context, to string, data []byte) ([]byte, error) {
	msg := callMsg{To: to, Data: hexutil.Encode(data)}

	var result string
	if err := c.call(ctx, "eth_call", []interface{}{msg, "latest"}, &result); err != nil {
		return nil, revertWrapped(err)
	}

	out, err := hexutil.Decode(result)
	if err != nil {
		return nil, fmt.Errorf("decode call result: %w", err)
	}
	return out, nil
}

// EstimateGas executes the call speculatively and reports its gas cost.
func (c *HTTPClient) EstimateGas(ctx context.Context, from, to string, data []byte) (uint64, error) {
	msg := callMsg{From: from, To: to, Data: hexutil.Encode(data)}

	var result string
	if err := c.call(ctx, "eth_estimateGas", []interface{}{msg}, &result); err != nil {
		return 0, revertWrapped(err)
	}

	gas, err := hexutil.DecodeUint64(result)
	if err != nil {
		return 0, fmt.Errorf("decode gas estimate: %w", err)
	}
	return gas, nil
}

// SendRawTransaction submits a signed transaction and returns its hash.
func (c *HTTPClient) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	var txHash string
	if err := c.call(ctx, "eth_sendRawTransaction", []interface{}{hexutil.Encode(raw)}, &txHash); err != nil {
		return "", revertWrapped(err)
	}
	return txHash, nil
}

// rawReceipt is the wire form of eth_getTransactionReceipt.
type rawReceipt struct {
	TransactionHash string   `json:"transactionHash"`
	BlockNumber     string   `json:"blockNumber"`
	Status          string   `json:"status"`
	Logs            []rawLog `json:"logs"`
}

type rawLog struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

// TransactionReceipt retrieves the receipt for a transaction hash.
// Returns (nil, nil) while the transaction is not yet confirmed.
func (c *HTTPClient) TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	var result *rawReceipt
	if err := c.call(ctx, "eth_getTransactionReceipt", []interface{}{txHash}, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	blockNumber, err := hexutil.DecodeUint64(result.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("decode receipt block number: %w", err)
	}
	status, err := hexutil.DecodeUint64(result.Status)
	if err != nil {
		return nil, fmt.Errorf("decode receipt status: %w", err)
	}

	receipt := &Receipt{
		TxHash:      result.TransactionHash,
		BlockNumber: blockNumber,
		Status:      status,
	}

	for _, l := range result.Logs {
		data, err := hexutil.Decode(l.Data)
		if err != nil {
			return nil, fmt.Errorf("decode log data: %w", err)
		}
		receipt.Logs = append(receipt.Logs, Log{
			Address: l.Address,
			Topics:  l.Topics,
			Data:    data,
		})
	}

	return receipt, nil
}

// PendingNonce retrieves the next nonce for an address.
func (c *HTTPClient) PendingNonce(ctx context.Context, address string) (uint64, error) {
	var result string
	if err := c.call(ctx, "eth_getTransactionCount", []interface{}{address, "pending"}, &result); err != nil {
		return 0, err
	}
	nonce, err := hexutil.DecodeUint64(result)
	if err != nil {
		return 0, fmt.Errorf("decode nonce: %w", err)
	}
	return nonce, nil
}

// GasPrice retrieves the current gas price.
func (c *HTTPClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var result string
	if err := c.call(ctx, "eth_gasPrice", nil, &result); err != nil {
		return nil, err
	}
	price, err := hexutil.DecodeBig(result)
	if err != nil {
		return nil, fmt.Errorf("decode gas price: %w", err)
	}
	return price, nil
}

// ChainID retrieves the chain identifier.
func (c *HTTPClient) ChainID(ctx context.Context) (*big.Int, error) {
	var result string
	if err := c.call(ctx, "eth_chainId", nil, &result); err != nil {
		return nil, err
	}
	id, err := hexutil.DecodeBig(result)
	if err != nil {
		return nil, fmt.Errorf("decode chain id: %w", err)
	}
	return id, nil
}
