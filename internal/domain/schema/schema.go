package schema

import (
	"fmt"
	"strings"
)

// Canonical field names that every uploaded table is mapped onto.
const (
	FieldMemberID    = "member_id"
	FieldStatus      = "status"
	FieldPlanType    = "plan_type"
	FieldTrainerName = "trainer_name"
	FieldAmount      = "amount"
	FieldVisitDate   = "visit_date"
	FieldLastVisit   = "last_visit"
)

// aliases maps each canonical field to the normalized header spellings it
// accepts. Matching happens after NormalizeHeader, so case, surrounding
// whitespace and space/hyphen separators never matter.
var aliases = map[string][]string{
	FieldMemberID:    {"member_id", "id", "customer_id", "user_id"},
	FieldStatus:      {"status", "churn", "is_active"},
	FieldPlanType:    {"plan_type", "plan", "membership_type", "membership"},
	FieldTrainerName: {"trainer_name", "trainer", "coach"},
	FieldAmount:      {"amount", "revenue", "payment"},
	FieldVisitDate:   {"visit_date", "date", "attendance_date"},
	FieldLastVisit:   {"last_visit", "last_visit_date", "last_attendance", "last_checkin"},
}

// resolveOrder fixes the order fields are resolved in, so that ambiguous
// sources map deterministically.
var resolveOrder = []string{
	FieldMemberID,
	FieldStatus,
	FieldPlanType,
	FieldTrainerName,
	FieldAmount,
	FieldVisitDate,
	FieldLastVisit,
}

// NormalizeHeader folds an arbitrary header spelling to canonical form:
// lowercase, trimmed, with runs of spaces, hyphens and underscores collapsed
// to a single underscore.
// PRE: header may be any raw string, including empty
// POST: result is stable under repeated application (idempotent)
func NormalizeHeader(header string) string {
	lower := strings.ToLower(strings.TrimSpace(header))
	parts := strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	return strings.Join(parts, "_")
}

// ColumnMap maps a canonical field name to the original header it resolved
// from. Fields with no entry were absent from the source.
type ColumnMap map[string]string

// Has reports whether the canonical field resolved to a source column.
func (m ColumnMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// Source returns the original header a canonical field resolved from, or ""
// when the field is absent.
func (m ColumnMap) Source(field string) string {
	return m[field]
}

// MissingColumnError reports a schema-level failure: a mandatory canonical
// field could not be resolved from any header. It carries the available
// headers so the operator can fix the source file.
type MissingColumnError struct {
	Field     string
	Available []string
}

// Error implements the error interface.
// POST: message names the missing field and lists the headers that were seen
func (e *MissingColumnError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("no column resolves to %q: the table has no headers", e.Field)
	}
	return fmt.Sprintf("no column resolves to %q: available headers are %s",
		e.Field, strings.Join(e.Available, ", "))
}

// ResolveOptions controls schema resolution.
// Required lists canonical fields beyond member_id that must resolve;
// member_id itself is always mandatory.
type ResolveOptions struct {
	Required []string
}

// Resolve maps a header list onto the canonical schema.
//
// Strategies are tried in a fixed priority order so behavior is deterministic:
//  1. exact alias match on the normalized header, first header by column
//     order wins;
//  2. for member_id only, a substring heuristic — the first header whose
//     normalized form, with underscores stripped, contains "id";
//  3. failure: member_id (or a Required field) left unresolved is a
//     MissingColumnError.
//
// PRE: headers is the raw header row, in column order
// POST: returns a pure mapping; resolving already-canonical headers is a no-op
func Resolve(headers []string, opts ResolveOptions) (ColumnMap, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	cols := make(ColumnMap, len(resolveOrder))
	for _, field := range resolveOrder {
		for i, n := range normalized {
			if n == "" {
				continue
			}
			if isAlias(field, n) {
				cols[field] = headers[i]
				break
			}
		}
	}

	if !cols.Has(FieldMemberID) {
		for i, n := range normalized {
			if strings.Contains(strings.ReplaceAll(n, "_", ""), "id") {
				cols[FieldMemberID] = headers[i]
				break
			}
		}
	}

	if !cols.Has(FieldMemberID) {
		return nil, &MissingColumnError{Field: FieldMemberID, Available: headers}
	}
	for _, field := range opts.Required {
		if !cols.Has(field) {
			return nil, &MissingColumnError{Field: field, Available: headers}
		}
	}

	return cols, nil
}

func isAlias(field, normalized string) bool {
	for _, a := range aliases[field] {
		if a == normalized {
			return true
		}
	}
	return false
}
