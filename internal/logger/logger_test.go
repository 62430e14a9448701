package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		level string
		ok    bool
	}{
		{"prod default level", "prod", "", true},
		{"local debug", "local", "debug", true},
		{"dev warn", "dev", "warn", true},
		{"invalid level", "local", "loud", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.env, tt.level)
			if tt.ok && err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("New() error = nil, want failure")
			}
			if tt.ok && l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestFromContext_Fallback(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Fatal("FromContext() returned nil")
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Error("FromContext() did not return the stored logger")
	}
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewNop()

	if got := FromContextOr(context.Background(), fallback); got != fallback {
		t.Error("FromContextOr() did not return the fallback on an empty context")
	}

	stored := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), stored)
	if got := FromContextOr(ctx, fallback); got != stored {
		t.Error("FromContextOr() did not return the stored logger")
	}
}
