package storage

import (
	"errors"
	"testing"
)

func TestWrapIfConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "sqlite unique", err: errors.New("constraint failed: UNIQUE constraint failed: teams.name (2067)"), want: ErrConflict},
		{name: "postgres duplicate", err: errors.New(`ERROR: duplicate key value violates unique constraint "teams_name_key" (SQLSTATE 23505)`), want: ErrConflict},
		{name: "other", err: errors.New("disk I/O error"), want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapIfConflict(tt.err)
			if tt.want == nil {
				if errors.Is(got, ErrConflict) {
					t.Fatalf("WrapIfConflict(%v) unexpectedly wrapped ErrConflict", tt.err)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Fatalf("WrapIfConflict(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapIfForeignKey(t *testing.T) {
	if got := WrapIfForeignKey(errors.New("constraint failed: FOREIGN KEY constraint failed (787)")); !errors.Is(got, ErrNotFound) {
		t.Fatalf("sqlite: got %v", got)
	}
	if got := WrapIfForeignKey(errors.New(`ERROR: insert or update on table "player_teams" violates foreign key constraint (SQLSTATE 23503)`)); !errors.Is(got, ErrNotFound) {
		t.Fatalf("postgres: got %v", got)
	}
	if got := WrapIfForeignKey(errors.New("boom")); errors.Is(got, ErrNotFound) {
		t.Fatalf("unexpected wrap: %v", got)
	}
	if WrapIfForeignKey(nil) != nil {
		t.Fatal("nil should stay nil")
	}
}

func TestErrInvalidOrderingIsValidation(t *testing.T) {
	if !errors.Is(ErrInvalidOrdering, ErrValidation) {
		t.Fatal("ErrInvalidOrdering should wrap ErrValidation")
	}
}
