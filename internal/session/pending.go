package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gdconnect/internal/store"
)

// Pending operation kinds. The durable pending record is a tagged variant:
// either nothing is in flight, or a code exchange is waiting for the
// redirect to come back.
const (
	KindNone         = "none"
	KindExchangeCode = "exchange_code"
)

// pendingKey is the storage key for the pending-operation record.
const pendingKey = "pending_op"

// PendingOp is the durable record of the operation that must survive the
// redirect. Everything the exchange needs after a process restart lives
// here (plus the individual storage keys kept for the restore path).
type PendingOp struct {
	Kind string `json:"kind"`

	// FlowID correlates log entries of one interactive attempt.
	FlowID string `json:"flow_id,omitempty"`

	// CodeVerifier is the PKCE verifier issued for this attempt.
	CodeVerifier string `json:"code_verifier,omitempty"`

	// State and Nonce are the anti-replay values issued with the request.
	// The redirect's state is checked against State before any exchange.
	State string `json:"state,omitempty"`
	Nonce string `json:"nonce,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// loadPendingOp reads the pending record; an absent key means none.
func loadPendingOp(ctx context.Context, s store.Store) (*PendingOp, error) {
	raw, err := s.Get(ctx, pendingKey)
	if errors.Is(err, store.ErrNotFound) {
		return &PendingOp{Kind: KindNone}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending operation: %w", err)
	}

	var op PendingOp
	if err := json.Unmarshal([]byte(raw), &op); err != nil {
		return nil, fmt.Errorf("pending operation record is corrupt: %w", err)
	}
	return &op, nil
}

func savePendingOp(ctx context.Context, s store.Store, op *PendingOp) error {
	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("failed to marshal pending operation: %w", err)
	}
	return s.Set(ctx, pendingKey, string(data))
}

func clearPendingOp(ctx context.Context, s store.Store) error {
	return s.Delete(ctx, pendingKey)
}
