package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mmynk/spendwise/internal/storage"
	"github.com/mmynk/spendwise/internal/storage/storagetest"
)

// Set SPENDWISE_TEST_POSTGRES_DSN to a throwaway database to run these.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SPENDWISE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SPENDWISE_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	// The shared checks expect an empty database.
	if _, err := store.pool.Exec(ctx,
		"TRUNCATE settlements, expense_shares, expenses, members, groups, users"); err != nil {
		t.Fatalf("Failed to reset database: %v", err)
	}

	storagetest.Run(t, store)
}

func TestDeleteMemberError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantNot error
	}{
		{
			name:   "reference added after the count",
			err:    &pgconn.PgError{Code: "23503", ConstraintName: "expense_shares_member_id_fkey"},
			wantIs: storage.ErrMemberInUse,
		},
		{
			name:    "other database error",
			err:     &pgconn.PgError{Code: "57014"},
			wantNot: storage.ErrMemberInUse,
		},
		{
			name:    "connection error",
			err:     errors.New("conn closed"),
			wantNot: storage.ErrMemberInUse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deleteMemberError("m1", tt.err)
			if tt.wantIs != nil && !errors.Is(got, tt.wantIs) {
				t.Errorf("deleteMemberError() = %v, want %v", got, tt.wantIs)
			}
			if tt.wantNot != nil && errors.Is(got, tt.wantNot) {
				t.Errorf("deleteMemberError() = %v, should not be %v", got, tt.wantNot)
			}
			if !errors.Is(got, tt.err) && tt.wantIs == nil {
				t.Errorf("deleteMemberError() = %v, lost the cause", got)
			}
		})
	}
}
