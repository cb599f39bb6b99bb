package surreal

import (
	"errors"
	"fmt"
	"testing"

	surrealdb "github.com/surrealdb/surrealdb.go"
)

// AcceptRequest tolerates a create error only when it means the pair record
// is already present. Anything else must abort before the notification is
// deleted, so the cases here pin down which errors count as "exists".
func TestRecordExists(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil",
			err:  nil,
			want: false,
		},
		{
			name: "record already present",
			err:  &surrealdb.RPCError{Code: -32000, Message: "Database record `connection:a_b` already exists"},
			want: true,
		},
		{
			name: "wrapped already present",
			err:  fmt.Errorf("surreal: %w", &surrealdb.RPCError{Message: "Database record `connection:a_b` already exists"}),
			want: true,
		},
		{
			name: "server fault",
			err:  &surrealdb.RPCError{Code: -32000, Message: "There was a problem with the database: transaction conflict"},
			want: false,
		},
		{
			name: "transport failure",
			err:  errors.New("websocket: close 1006 (abnormal closure)"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordExists(tt.err); got != tt.want {
				t.Errorf("recordExists(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// The v0.2 client reports a select of an absent record as a PermissionError
// value. Only that error maps to not-found; decode and transport failures
// must surface as real errors, not 404s.
func TestRecordMissing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil",
			err:  nil,
			want: false,
		},
		{
			name: "absent record",
			err:  surrealdb.PermissionError{},
			want: true,
		},
		{
			name: "wrapped absent record",
			err:  fmt.Errorf("surreal: %w", surrealdb.PermissionError{}),
			want: true,
		},
		{
			name: "server fault",
			err:  &surrealdb.RPCError{Code: -32000, Message: "There was a problem with the database"},
			want: false,
		},
		{
			name: "transport failure",
			err:  errors.New("websocket: close 1006 (abnormal closure)"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordMissing(tt.err); got != tt.want {
				t.Errorf("recordMissing(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
