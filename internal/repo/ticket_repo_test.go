package repo

import (
	"strings"
	"testing"
)

// A missing-decision ticket must be a planning type, have at least one
// implementing commit and no recorded decision. Guard all three predicates so
// none is dropped in a refactor.
func TestMissingDecisionsQueryPredicates(t *testing.T) {
	wantClauses := []string{
		"LOWER(t.issue_type) IN ('story', 'epic', 'feature')",
		"EXISTS (\n\t\t\tSELECT 1 FROM commit_records c",
		"t.ticket_key = ANY(c.ticket_references)",
		"NOT EXISTS (\n\t\t\tSELECT 1 FROM decisions d",
	}
	for _, clause := range wantClauses {
		if !strings.Contains(missingDecisionsQuery, clause) {
			t.Fatalf("missing decisions query lost clause %q:\n%s", clause, missingDecisionsQuery)
		}
	}
}
