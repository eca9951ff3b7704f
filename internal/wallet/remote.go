package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/proofpay/internal/common"
)

// seedLength is the number of random bytes in a freshly generated seed;
// the seed travels as a hex string twice that long.
const seedLength = 32

// RemoteFactory builds wallets through the wallet daemon's HTTP API.
// Every daemon call is bounded by the configured timeout since wallet
// construction involves indexer and node round-trips of unbounded latency.
type RemoteFactory struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// NewRemoteFactory constructs a RemoteFactory for the daemon at baseURL.
// A zero timeout disables the per-call bound.
func NewRemoteFactory(baseURL string, timeout time.Duration) *RemoteFactory {
	return &RemoteFactory{
		baseURL: baseURL,
		client:  &http.Client{},
		timeout: timeout,
	}
}

type buildRequest struct {
	Seed  string `json:"seed"`
	State string `json:"state,omitempty"`
}

type buildResponse struct {
	ID            string `json:"id"`
	CoinPublicKey string `json:"coinPublicKey"`
}

type stateResponse struct {
	State         string `json:"state"`
	CoinPublicKey string `json:"coinPublicKey"`
}

func (f *RemoteFactory) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, f.timeout)
}

func (f *RemoteFactory) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorWalletLifecycle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: daemon returned %s: %s", common.ErrorWalletLifecycle, resp.Status, string(b))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding daemon response: %v", common.ErrorWalletLifecycle, err)
		}
	}
	return nil
}

// Create generates a fresh seed locally and asks the daemon to build a
// wallet from it.
func (f *RemoteFactory) Create(ctx context.Context) (Handle, string, error) {
	seed, err := common.MakeRandHexString(seedLength)
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	var resp buildResponse
	if err := f.do(ctx, http.MethodPost, "/v1/wallets", buildRequest{Seed: seed}, &resp); err != nil {
		return nil, "", err
	}

	return &remoteHandle{id: resp.ID, factory: f}, seed, nil
}

// Restore rebuilds a wallet from a seed and serialized state.
func (f *RemoteFactory) Restore(ctx context.Context, seed, state string) (Handle, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	var resp buildResponse
	if err := f.do(ctx, http.MethodPost, "/v1/wallets/restore", buildRequest{Seed: seed, State: state}, &resp); err != nil {
		return nil, err
	}

	return &remoteHandle{id: resp.ID, factory: f}, nil
}

// remoteHandle is a daemon-side wallet addressed by its resource id.
type remoteHandle struct {
	id      string
	factory *RemoteFactory

	mu     sync.Mutex
	closed bool
}

func (h *remoteHandle) SerializeState(ctx context.Context) (string, error) {
	ctx, cancel := h.factory.withTimeout(ctx)
	defer cancel()

	var resp stateResponse
	if err := h.factory.do(ctx, http.MethodGet, "/v1/wallets/"+h.id+"/state", nil, &resp); err != nil {
		return "", err
	}
	return resp.State, nil
}

func (h *remoteHandle) Start(ctx context.Context) error {
	ctx, cancel := h.factory.withTimeout(ctx)
	defer cancel()

	return h.factory.do(ctx, http.MethodPost, "/v1/wallets/"+h.id+"/start", nil, nil)
}

func (h *remoteHandle) CoinPublicKey(ctx context.Context) (string, error) {
	ctx, cancel := h.factory.withTimeout(ctx)
	defer cancel()

	var resp stateResponse
	if err := h.factory.do(ctx, http.MethodGet, "/v1/wallets/"+h.id+"/state", nil, &resp); err != nil {
		return "", err
	}
	return resp.CoinPublicKey, nil
}

// Close releases the daemon-side resource. Repeated calls are no-ops; the
// first error is not retried.
func (h *remoteHandle) Close(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	ctx, cancel := h.factory.withTimeout(ctx)
	defer cancel()

	return h.factory.do(ctx, http.MethodDelete, "/v1/wallets/"+h.id, nil, nil)
}
