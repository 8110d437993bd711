package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Remote posts record summaries to an anchoring service over HTTP. The
// service itself (chain interaction, hashing) lives outside this system.
type Remote struct {
	endpoint     string
	explorerBase string
	client       *http.Client
}

// NewRemote creates a remote ledger client with a bounded request timeout.
func NewRemote(endpoint, explorerBase string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Remote{
		endpoint:     endpoint,
		explorerBase: explorerBase,
		client:       &http.Client{Timeout: timeout},
	}
}

type storeResponse struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transaction_hash"`
	ExplorerURL     string `json:"explorer_url"`
	Error           string `json:"error"`
}

// StoreRecord submits a record and returns the anchoring receipt.
func (r *Remote) StoreRecord(ctx context.Context, record Record) (Receipt, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/records", bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("build ledger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("ledger write: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Receipt{}, fmt.Errorf("ledger write: unexpected status %d", resp.StatusCode)
	}

	var out storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Receipt{}, fmt.Errorf("decode ledger response: %w", err)
	}
	if !out.Success {
		return Receipt{}, fmt.Errorf("ledger write rejected: %s", out.Error)
	}

	receipt := Receipt{TxHash: out.TransactionHash, ExplorerURL: out.ExplorerURL}
	if receipt.ExplorerURL == "" && r.explorerBase != "" {
		receipt.ExplorerURL = fmt.Sprintf("%s/tx/%s", r.explorerBase, out.TransactionHash)
	}
	return receipt, nil
}

// FetchRecord reads a record back from the anchoring service.
func (r *Remote) FetchRecord(ctx context.Context, id string) (*Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/records/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("build ledger request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger read: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ledger read: unexpected status %d", resp.StatusCode)
	}

	var record Record
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode ledger record: %w", err)
	}
	return &record, nil
}
