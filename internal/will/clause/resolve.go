package clause

import (
	"fmt"
	"strings"

	"willgen/internal/will/willcontext"
)

// Plan is the ordered clause selection for one document. Immutable once
// produced.
type Plan struct {
	Clauses []ID
}

// Number returns the 1-indexed clause number within the plan, or 0 when the
// clause is not included.
func (p *Plan) Number(id ID) int {
	for i, c := range p.Clauses {
		if c == id {
			return i + 1
		}
	}
	return 0
}

// Contains reports whether the plan includes the clause.
func (p *Plan) Contains(id ID) bool { return p.Number(id) > 0 }

// ConflictError reports catalogue-level contradictions found during
// resolution. It indicates a defect in the clause table, not bad user input.
type ConflictError struct {
	Conflicts []string
}

func (e *ConflictError) Error() string {
	return "clause conflicts: " + strings.Join(e.Conflicts, "; ")
}

// Resolve selects the clauses for the given context, in catalogue order.
// Resolution fails closed: when any conflict is detected no plan is
// returned.
func Resolve(c *willcontext.Context) (*Plan, error) {
	flags := ContextFlags(c)

	var selected []ID
	for _, id := range Order {
		if Included(id, flags) {
			selected = append(selected, id)
		}
	}

	if conflicts := CheckConflicts(selected); len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	return &Plan{Clauses: selected}, nil
}

// CheckConflicts runs the structural checks over a candidate selection:
// duplicates, attestation last, title first. A single pass over the
// set-backed catalogue cannot produce these, but the checks guard against
// catalogue-table corruption.
func CheckConflicts(selected []ID) []string {
	var conflicts []string

	seen := map[ID]bool{}
	for _, id := range selected {
		if seen[id] {
			conflicts = append(conflicts, fmt.Sprintf("Duplicate clause: %s", id))
		}
		seen[id] = true
	}

	if len(selected) > 0 && selected[len(selected)-1] != Attestation {
		conflicts = append(conflicts, "Attestation clause must be last")
	}
	if len(selected) > 0 && selected[0] != TitleIdentification {
		conflicts = append(conflicts, "Title clause must be first")
	}

	return conflicts
}

// ValidOrder reports whether the clauses appear in strictly increasing
// catalogue order with no unknown entries.
func ValidOrder(clauses []ID) bool {
	position := make(map[ID]int, len(Order))
	for i, id := range Order {
		position[id] = i + 1
	}

	last := 0
	for _, id := range clauses {
		pos, ok := position[id]
		if !ok || pos <= last {
			return false
		}
		last = pos
	}
	return true
}

// Detail describes one selected clause for checklist and explanation
// surfaces.
type Detail struct {
	ID          ID     `json:"id"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Summary captures the full outcome of clause selection for a context.
type Summary struct {
	TotalClauses    int             `json:"total_clauses"`
	SelectedClauses []ID            `json:"selected_clauses"`
	Flags           map[string]bool `json:"flags"`
	Conflicts       []string        `json:"conflicts"`
	ClausesDetail   []Detail        `json:"clauses_detail"`
}

// Summarize reports which clauses the context selects and why.
func Summarize(c *willcontext.Context) *Summary {
	flags := ContextFlags(c)

	var selected []ID
	for _, id := range Order {
		if Included(id, flags) {
			selected = append(selected, id)
		}
	}

	details := make([]Detail, len(selected))
	for i, id := range selected {
		details[i] = Detail{
			ID:          id,
			Number:      i + 1,
			Title:       id.Title(),
			Description: id.Description(),
		}
	}

	return &Summary{
		TotalClauses:    len(selected),
		SelectedClauses: selected,
		Flags:           flags,
		Conflicts:       CheckConflicts(selected),
		ClausesDetail:   details,
	}
}
