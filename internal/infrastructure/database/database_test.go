package database

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: sqlStateSerializationFailure}, true},
		{"deadlock", &pgconn.PgError{Code: sqlStateDeadlockDetected}, true},
		{"wrapped serialization failure", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), true},
		{"unique violation", &pgconn.PgError{Code: sqlStateUniqueViolation}, false},
		{"plain error", pgx.ErrNoRows, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryable(tc.err); got != tc.want {
				t.Fatalf("isRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsUniqueViolationMatchesConstraint(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "guest_profiles_join_key"})
	if !isUniqueViolation(err, "guest_profiles_join_key") {
		t.Fatal("expected match on constraint name")
	}
	if isUniqueViolation(err, "guest_profiles_token_key") {
		t.Fatal("unexpected match on another constraint")
	}
	if !isUniqueViolation(err, "") {
		t.Fatal("empty constraint should match any unique violation")
	}
	if isUniqueViolation(nil, "") {
		t.Fatal("nil is not a violation")
	}
}

func TestTimestamptzRoundTripKeepsNulls(t *testing.T) {
	if ts := timeToTimestamptz(time.Time{}); ts.Valid {
		t.Fatal("zero time must map to NULL")
	}
	if ptr := pgtypeTimestamptzToPtr(pgtype.Timestamptz{}); ptr != nil {
		t.Fatalf("NULL must map to nil, got %v", ptr)
	}
	local := time.Date(2026, 5, 1, 20, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	back := pgtypeTimestamptzToPtr(ptrToTimestamptz(&local))
	if back == nil || !back.Equal(local) || back.Location() != time.UTC {
		t.Fatalf("expected %v in UTC, got %v", local, back)
	}
}

func TestTextMapping(t *testing.T) {
	if stringToText("").Valid {
		t.Fatal("empty string must map to NULL")
	}
	if got := textToString(stringToText("GOING")); got != "GOING" {
		t.Fatalf("got %q", got)
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Fatalf("expected paired migrations, got %d up and %d down", ups, downs)
	}
}
