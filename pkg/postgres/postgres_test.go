package postgres

import (
	"context"
	"testing"
)

func TestNewRequiresDSN(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), Config{DSN: "  "}); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
