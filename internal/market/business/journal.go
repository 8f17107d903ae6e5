package business

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// OpKind is the mutation class a journal entry tracks.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// OpStatus is the reconciliation state of one remote persistence attempt.
// Every operation starts pending and settles exactly once: confirmed when
// the remote accepted it, failed when it was rejected but the local effect
// stands (creates), reverted when the local effect was undone.
type OpStatus string

const (
	OpPending   OpStatus = "pending"
	OpConfirmed OpStatus = "confirmed"
	OpFailed    OpStatus = "failed"
	OpReverted  OpStatus = "reverted"
)

// Operation is one entry of the sync journal.
type Operation struct {
	ID        string    `json:"id"`
	Kind      OpKind    `json:"kind"`
	ListingID string    `json:"listing_id"`
	RowID     int64     `json:"row_id,omitempty"`
	Status    OpStatus  `json:"status"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	SettledAt time.Time `json:"settled_at,omitempty"`
}

// Settled reports whether the operation's remote attempt has concluded.
func (o Operation) Settled() bool {
	return o.Status != OpPending
}

// Journal records every optimistic mutation and how its one remote
// persistence attempt ended. Local state may be ahead of the remote store
// (a failed create keeps its local listing); the journal makes that
// divergence observable instead of silent.
type Journal struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	ops     []Operation
	index   map[string]int
}

func NewJournal() *Journal {
	return &Journal{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		index:   make(map[string]int),
	}
}

// Begin opens a pending operation and returns its id. Ids are ULIDs, so
// journal order and id order agree.
func (j *Journal) Begin(kind OpKind, listingID string, rowID int64) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	id := ulid.MustNew(ulid.Now(), j.entropy).String()
	j.index[id] = len(j.ops)
	j.ops = append(j.ops, Operation{
		ID:        id,
		Kind:      kind,
		ListingID: listingID,
		RowID:     rowID,
		Status:    OpPending,
		StartedAt: time.Now().UTC(),
	})
	return id
}

// Confirm settles an operation as accepted by the remote store. For
// creates, rowID carries the remote-assigned key.
func (j *Journal) Confirm(opID string, rowID int64) {
	j.settle(opID, OpConfirmed, rowID, nil)
}

// Fail settles an operation whose remote attempt was rejected while its
// local effect stands.
func (j *Journal) Fail(opID string, err error) {
	j.settle(opID, OpFailed, 0, err)
}

// Revert settles an operation whose local effect was rolled back after the
// remote rejection.
func (j *Journal) Revert(opID string, err error) {
	j.settle(opID, OpReverted, 0, err)
}

func (j *Journal) settle(opID string, status OpStatus, rowID int64, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	i, ok := j.index[opID]
	if !ok {
		return
	}
	op := &j.ops[i]
	if op.Status != OpPending {
		return
	}
	op.Status = status
	op.SettledAt = time.Now().UTC()
	if rowID != 0 {
		op.RowID = rowID
	}
	if err != nil {
		op.Error = err.Error()
	}
}

// Operations returns a copy of the journal in begin order.
func (j *Journal) Operations() []Operation {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Operation, len(j.ops))
	copy(out, j.ops)
	return out
}

// Unsynced returns the operations whose local and remote state may differ:
// everything pending plus failed creates that kept their local listing.
func (j *Journal) Unsynced() []Operation {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []Operation
	for _, op := range j.ops {
		if op.Status == OpPending || op.Status == OpFailed {
			out = append(out, op)
		}
	}
	return out
}

// Compact drops settled operations that left local and remote in
// agreement (confirmed and reverted). Pending and failed entries stay: the
// former are in flight, the latter document divergence. Returns the number
// of entries dropped.
func (j *Journal) Compact() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	kept := j.ops[:0]
	for _, op := range j.ops {
		if op.Status == OpConfirmed || op.Status == OpReverted {
			continue
		}
		kept = append(kept, op)
	}
	dropped := len(j.ops) - len(kept)
	j.ops = kept
	j.index = make(map[string]int, len(kept))
	for i, op := range kept {
		j.index[op.ID] = i
	}
	return dropped
}
