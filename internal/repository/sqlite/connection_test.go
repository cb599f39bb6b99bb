package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/skillshare/internal/apperror"
)

func TestAcceptRequest_ConnectsBothSides(t *testing.T) {
	db := newTestDB(t)

	n := createTestNotification(t, db, "acct-b", "acct-a")

	if err := db.AcceptRequest(context.Background(), n.ID, "acct-b", "acct-a"); err != nil {
		t.Fatalf("AcceptRequest() error = %v", err)
	}

	// Both sides see the connection from the single pair row.
	aSide, err := db.ConnectionIDs(context.Background(), "acct-a")
	if err != nil {
		t.Fatalf("ConnectionIDs(a) error = %v", err)
	}
	bSide, err := db.ConnectionIDs(context.Background(), "acct-b")
	if err != nil {
		t.Fatalf("ConnectionIDs(b) error = %v", err)
	}
	if len(aSide) != 1 || aSide[0] != "acct-b" {
		t.Errorf("ConnectionIDs(a) = %v, want [acct-b]", aSide)
	}
	if len(bSide) != 1 || bSide[0] != "acct-a" {
		t.Errorf("ConnectionIDs(b) = %v, want [acct-a]", bSide)
	}

	// The notification was consumed.
	if _, err := db.GetNotificationByID(context.Background(), n.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("notification still present after accept, err = %v", err)
	}
}

func TestAcceptRequest_SecondAcceptLosesCleanly(t *testing.T) {
	db := newTestDB(t)

	n := createTestNotification(t, db, "acct-b", "acct-a")

	if err := db.AcceptRequest(context.Background(), n.ID, "acct-b", "acct-a"); err != nil {
		t.Fatalf("first AcceptRequest() error = %v", err)
	}

	// The notification is gone, so a second accept of the same request must
	// fail with NotFound and must not disturb the existing connection.
	err := db.AcceptRequest(context.Background(), n.ID, "acct-b", "acct-a")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second AcceptRequest() error = %v, want ErrNotFound", err)
	}

	ids, err := db.ConnectionIDs(context.Background(), "acct-a")
	if err != nil {
		t.Fatalf("ConnectionIDs() error = %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("connection count after failed accept = %d, want 1", len(ids))
	}
}

func TestAcceptRequest_CrossRequestsCollapseToOnePair(t *testing.T) {
	db := newTestDB(t)

	// A requested B, and B requested A — two independent notifications.
	fromA := createTestNotification(t, db, "acct-b", "acct-a")
	fromB := createTestNotification(t, db, "acct-a", "acct-b")

	if err := db.AcceptRequest(context.Background(), fromA.ID, "acct-b", "acct-a"); err != nil {
		t.Fatalf("accept fromA error = %v", err)
	}
	// Accepting the mirror request succeeds (its notification still exists)
	// but the pair insert is a no-op.
	if err := db.AcceptRequest(context.Background(), fromB.ID, "acct-a", "acct-b"); err != nil {
		t.Fatalf("accept fromB error = %v", err)
	}

	ids, err := db.ConnectionIDs(context.Background(), "acct-a")
	if err != nil {
		t.Fatalf("ConnectionIDs() error = %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("connection count = %d, want 1 (pair must be stored once)", len(ids))
	}
}

func TestRemoveConnection(t *testing.T) {
	db := newTestDB(t)

	n := createTestNotification(t, db, "acct-b", "acct-a")
	if err := db.AcceptRequest(context.Background(), n.ID, "acct-b", "acct-a"); err != nil {
		t.Fatalf("AcceptRequest() error = %v", err)
	}

	// Removal works from either side of the pair.
	if err := db.RemoveConnection(context.Background(), "acct-a", "acct-b"); err != nil {
		t.Fatalf("RemoveConnection() error = %v", err)
	}

	for _, id := range []string{"acct-a", "acct-b"} {
		ids, err := db.ConnectionIDs(context.Background(), id)
		if err != nil {
			t.Fatalf("ConnectionIDs(%s) error = %v", id, err)
		}
		if len(ids) != 0 {
			t.Errorf("ConnectionIDs(%s) = %v, want empty", id, ids)
		}
	}
}

func TestRemoveConnection_AbsentPairIsNoOp(t *testing.T) {
	db := newTestDB(t)

	if err := db.RemoveConnection(context.Background(), "acct-a", "acct-b"); err != nil {
		t.Errorf("RemoveConnection() on absent pair error = %v, want nil", err)
	}
}
