package postgres

import (
	"context"
	"testing"
	"time"
)

func TestNewPoolInvalidURL(t *testing.T) {
	ctx := context.Background()

	if _, err := NewPool(ctx, "not-a-url", 1, 0, time.Second); err == nil {
		t.Fatalf("expected error when parsing invalid URL")
	}
}

func TestNewPoolPingFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewPool(ctx, "postgres://127.0.0.1:1/db", 1, 0, time.Second)
	if err == nil {
		t.Fatalf("expected error when pool cannot connect")
	}
}
