package vectorstore

import "testing"

func TestDocCollection(t *testing.T) {
	tests := []struct {
		orgID string
		want  string
	}{
		{"acme", "confluence_docs_acme"},
		{"Acme-Corp", "confluence_docs_acme_corp"},
		{"3f2c9b1e-aa00", "confluence_docs_3f2c9b1e_aa00"},
		{"weird org!", "confluence_docs_weird_org_"},
	}
	for _, tt := range tests {
		if got := DocCollection(tt.orgID); got != tt.want {
			t.Fatalf("DocCollection(%q) = %q, want %q", tt.orgID, got, tt.want)
		}
	}
}

func TestSharedCollections(t *testing.T) {
	names := SharedCollections()
	if len(names) != 4 {
		t.Fatalf("expected 4 shared collections, got %d", len(names))
	}
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			t.Fatalf("duplicate collection name %s", name)
		}
		seen[name] = true
		if sanitizeIdent(name) != name {
			t.Fatalf("collection name %s is not a clean identifier", name)
		}
	}
}
