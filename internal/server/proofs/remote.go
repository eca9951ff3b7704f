package proofs

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteProver submits proving jobs to the prover daemon's HTTP API. Proof
// generation is CPU heavy on the daemon side, so every call is bounded by
// the configured timeout.
type RemoteProver struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// NewRemoteProver constructs a RemoteProver for the daemon at baseURL.
// A zero timeout disables the per-call bound.
func NewRemoteProver(baseURL string, timeout time.Duration) *RemoteProver {
	return &RemoteProver{
		baseURL: baseURL,
		client:  &http.Client{},
		timeout: timeout,
	}
}

type proveRequest struct {
	RequestID     string `json:"requestId"`
	NameHash      string `json:"nameHash"`
	DOB           string `json:"dob"`
	NetPayCents   int64  `json:"netPayCents"`
	AmountCents   int64  `json:"amountCents"`
	ProofDate     int64  `json:"proofDate"`
	Randomness    string `json:"randomness"`
	CoinPublicKey string `json:"coinPublicKey"`
}

func (p *RemoteProver) Prove(ctx context.Context, req *Request) error {
	body := proveRequest{
		RequestID:     hex.EncodeToString(req.RequestID),
		NameHash:      hex.EncodeToString(req.Facts.NameHash),
		DOB:           hex.EncodeToString(req.Facts.DOB),
		NetPayCents:   req.Facts.NetPayCents,
		AmountCents:   req.AmountCents,
		ProofDate:     req.ProofDate,
		Randomness:    hex.EncodeToString(req.Facts.Randomness),
		CoinPublicKey: req.Facts.CoinPublicKey,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/prove", bytes.NewReader(b))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("prover request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("prover returned %s: %s", resp.Status, string(msg))
	}
	return nil
}
