package glide

import (
	"strings"

	"github.com/fivetwenty-io/glide-client/internal/constants"
)

// Builders for encoded query clauses. Their results are passed to
// Cursor.AddEncodedQuery.

// Equals matches field = value.
func Equals(field, value string) string {
	return field + "=" + value
}

// NotEquals matches field != value.
func NotEquals(field, value string) string {
	return field + "!=" + value
}

// Contains matches fields containing value.
func Contains(field, value string) string {
	return field + "LIKE" + value
}

// StartsWith matches fields starting with value.
func StartsWith(field, value string) string {
	return field + "STARTSWITH" + value
}

// In matches fields equal to any of values.
func In(field string, values ...string) string {
	return field + "IN" + strings.Join(values, ",")
}

// IsEmpty matches empty fields.
func IsEmpty(field string) string {
	return field + "ISEMPTY"
}

// IsNotEmpty matches non-empty fields.
func IsNotEmpty(field string) string {
	return field + "ISNOTEMPTY"
}

// OrderBy sorts ascending by field.
func OrderBy(field string) string {
	return "ORDERBY" + field
}

// OrderByDesc sorts descending by field.
func OrderByDesc(field string) string {
	return "ORDERBYDESC" + field
}

// And joins clauses that must all match.
func And(clauses ...string) string {
	return strings.Join(nonEmpty(clauses), constants.QuerySeparator)
}

// Or joins clauses of which any may match.
func Or(clauses ...string) string {
	return strings.Join(nonEmpty(clauses), constants.QueryOrSeparator)
}

func nonEmpty(clauses []string) []string {
	out := make([]string, 0, len(clauses))

	for _, clause := range clauses {
		if clause != "" {
			out = append(out, clause)
		}
	}

	return out
}
