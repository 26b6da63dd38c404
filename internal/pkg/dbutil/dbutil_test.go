package dbutil

import "testing"

func TestFinalizeRebindsPlaceholders(t *testing.T) {
	query, args := Finalize("SELECT id FROM organizations WHERE id = ? AND is_active = ?", []interface{}{"org-a", true})
	want := "SELECT id FROM organizations WHERE id = $1 AND is_active = $2"
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v", args)
	}
}

func TestFinalizeRewritesLimitOffset(t *testing.T) {
	// gendry emits mysql-style "LIMIT offset,count"; postgres wants the
	// operands swapped and spelled out.
	query, args := Finalize("SELECT id FROM repositories WHERE org_id = ? LIMIT ?,?", []interface{}{"org-a", 20, 10})
	want := "SELECT id FROM repositories WHERE org_id = $1 LIMIT $2 OFFSET $3"
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
	if args[1] != 10 || args[2] != 20 {
		t.Fatalf("limit/offset not swapped: %v", args)
	}
}
