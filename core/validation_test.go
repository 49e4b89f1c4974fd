package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"valid key", "doc1", nil},
		{"empty key", "", ErrEmptyKey},
		{"single byte", "a", nil},
		{"max length", strings.Repeat("k", MaxKeyLength), nil},
		{"too long", strings.Repeat("k", MaxKeyLength+1), ErrKeyTooLong},
		{"utf-8 key", "ключ/文書", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSearchParams(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		limit   int
		minSim  float32
		wantErr error
	}{
		{"valid", "what is a fox", 10, 0.5, nil},
		{"empty query", "", 10, 0.5, ErrEmptyQuery},
		{"zero limit", "q", 0, 0.5, ErrInvalidLimit},
		{"negative limit", "q", -1, 0.5, ErrInvalidLimit},
		{"threshold zero", "q", 10, 0, nil},
		{"threshold one", "q", 10, 1, nil},
		{"threshold below range", "q", 10, -0.01, ErrInvalidThreshold},
		{"threshold above range", "q", 10, 1.01, ErrInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSearchParams(tt.query, tt.limit, tt.minSim)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
