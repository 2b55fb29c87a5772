package infra

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestExtractMarker(t *testing.T) {
	query := `--sql 1b2c3d4e-0000-4000-8000-00000000abcd
select value from session_kv where namespace = $1;
`
	marker, body, err := ExtractMarker(query)
	if err != nil {
		t.Fatalf("ExtractMarker returned error: %v", err)
	}
	if marker != "1b2c3d4e-0000-4000-8000-00000000abcd" {
		t.Fatalf("marker mismatch: got %q", marker)
	}
	if body != "select value from session_kv where namespace = $1;" {
		t.Fatalf("body mismatch: got %q", body)
	}
}

func TestExtractMarkerRejectsUntaggedQuery(t *testing.T) {
	for _, q := range []string{"", "select 1;", "--sql not-a-uuid\nselect 1;"} {
		if _, _, err := ExtractMarker(q); err == nil {
			t.Fatalf("ExtractMarker(%q) expected error", q)
		}
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(pgx.ErrNoRows) {
		t.Fatalf("IsNoRows(pgx.ErrNoRows) = false")
	}
	wrapped := errors.Join(errors.New("scan"), pgx.ErrNoRows)
	if !IsNoRows(wrapped) {
		t.Fatalf("IsNoRows should see wrapped no-rows error")
	}
	if IsNoRows(errors.New("boom")) {
		t.Fatalf("IsNoRows matched unrelated error")
	}
}
