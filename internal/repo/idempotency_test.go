package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdempotency_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec, err := CreateIdempotency(ctx, db, "u1", "k1", "req-1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || rec.RequestID != "req-1" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "u1", "k1", now)
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.RequestID != "req-1" {
		t.Fatalf("expected req-1, got %+v", got)
	}
}

func TestIdempotency_DuplicateKeyPerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "k1", "req-1", 201, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "u1", "k1", "req-2", 201, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// Same key for a different user is a distinct tuple.
	if _, err := CreateIdempotency(ctx, db, "u2", "k1", "req-3", 201, time.Hour); err != nil {
		t.Fatalf("other user same key: %v", err)
	}
}

func TestIdempotency_ExpiredAndBlankKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "old", "req-1", 201, time.Millisecond); err != nil {
		t.Fatalf("create: %v", err)
	}
	later := time.Now().UTC().Add(time.Minute)
	if _, err := GetIdempotency(ctx, db, "u1", "old", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record must be invisible, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "u1", "   ", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank key must miss, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "u1", "never", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key must miss, got %v", err)
	}
}
