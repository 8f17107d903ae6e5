package business

import (
	"errors"
	"testing"
)

func TestJournalBeginConfirm(t *testing.T) {
	j := NewJournal()
	opID := j.Begin(OpCreate, "listing-1", 0)
	if opID == "" {
		t.Fatalf("begin must return an op id")
	}

	ops := j.Operations()
	if len(ops) != 1 || ops[0].Status != OpPending || ops[0].Kind != OpCreate {
		t.Fatalf("unexpected journal state: %+v", ops)
	}
	if ops[0].Settled() {
		t.Fatalf("pending op must not be settled")
	}

	j.Confirm(opID, 42)
	op := j.Operations()[0]
	if op.Status != OpConfirmed {
		t.Fatalf("status: got %s", op.Status)
	}
	if op.RowID != 42 {
		t.Fatalf("confirm must attach the remote row id, got %d", op.RowID)
	}
	if op.SettledAt.IsZero() {
		t.Fatalf("settled op must carry a settle time")
	}
}

func TestJournalIDsAreOrdered(t *testing.T) {
	j := NewJournal()
	prev := j.Begin(OpCreate, "a", 0)
	for i := 0; i < 50; i++ {
		next := j.Begin(OpCreate, "a", 0)
		if next <= prev {
			t.Fatalf("op ids must be strictly increasing: %s then %s", prev, next)
		}
		prev = next
	}
}

func TestJournalFailAndRevert(t *testing.T) {
	j := NewJournal()
	failed := j.Begin(OpCreate, "a", 0)
	reverted := j.Begin(OpDelete, "b", 7)

	j.Fail(failed, errors.New("insert rejected"))
	j.Revert(reverted, errors.New("delete rejected"))

	ops := j.Operations()
	if ops[0].Status != OpFailed || ops[0].Error != "insert rejected" {
		t.Fatalf("failed op: %+v", ops[0])
	}
	if ops[1].Status != OpReverted || ops[1].Error != "delete rejected" {
		t.Fatalf("reverted op: %+v", ops[1])
	}
}

func TestJournalSettleIsFinal(t *testing.T) {
	j := NewJournal()
	opID := j.Begin(OpCreate, "a", 0)
	j.Confirm(opID, 1)
	j.Fail(opID, errors.New("late failure"))

	op := j.Operations()[0]
	if op.Status != OpConfirmed || op.Error != "" {
		t.Fatalf("settled op must not change again: %+v", op)
	}
}

func TestJournalUnsynced(t *testing.T) {
	j := NewJournal()
	pending := j.Begin(OpCreate, "a", 0)
	confirmed := j.Begin(OpCreate, "b", 0)
	failed := j.Begin(OpCreate, "c", 0)
	reverted := j.Begin(OpDelete, "d", 9)

	j.Confirm(confirmed, 2)
	j.Fail(failed, errors.New("no"))
	j.Revert(reverted, errors.New("no"))

	unsynced := j.Unsynced()
	if len(unsynced) != 2 {
		t.Fatalf("want pending+failed, got %+v", unsynced)
	}
	if unsynced[0].ID != pending || unsynced[1].ID != failed {
		t.Fatalf("unexpected unsynced set: %+v", unsynced)
	}
}

func TestJournalCompact(t *testing.T) {
	j := NewJournal()
	pending := j.Begin(OpCreate, "a", 0)
	confirmed := j.Begin(OpCreate, "b", 0)
	failed := j.Begin(OpCreate, "c", 0)
	reverted := j.Begin(OpDelete, "d", 9)

	j.Confirm(confirmed, 2)
	j.Fail(failed, errors.New("no"))
	j.Revert(reverted, errors.New("no"))

	if dropped := j.Compact(); dropped != 2 {
		t.Fatalf("compact must drop confirmed+reverted, dropped %d", dropped)
	}
	ops := j.Operations()
	if len(ops) != 2 || ops[0].ID != pending || ops[1].ID != failed {
		t.Fatalf("unexpected post-compact journal: %+v", ops)
	}

	// The index must survive compaction: settling the kept pending op
	// still works.
	j.Confirm(pending, 5)
	if j.Operations()[0].Status != OpConfirmed {
		t.Fatalf("settle after compact must still land")
	}
}
