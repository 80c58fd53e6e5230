package model

import (
	"testing"
	"time"
)

func TestLinkIsExpired(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Minute)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"no expiry", nil, false},
		{"future expiry", &future, false},
		{"past expiry", &past, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Link{ExpiresAt: tt.expiresAt}
			if got := l.IsExpired(); got != tt.want {
				t.Errorf("IsExpired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLinkIsResolvable(t *testing.T) {
	past := time.Now().Add(-time.Minute)

	if (&Link{Active: true}).IsResolvable() != true {
		t.Error("active link without expiry should resolve")
	}
	if (&Link{Active: false}).IsResolvable() {
		t.Error("inactive link should not resolve")
	}
	if (&Link{Active: true, ExpiresAt: &past}).IsResolvable() {
		t.Error("expired link should not resolve even when active")
	}
}
