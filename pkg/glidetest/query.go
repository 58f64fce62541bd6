package glidetest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/fivetwenty-io/glide-client/internal/constants"
)

var errUnsupportedClause = errors.New("unsupported clause")

// Operators in the order they are tried when several start at the same index.
var operators = []string{"STARTSWITH", "LIKE", "!=", "IN", "="}

type condition struct {
	field    string
	operator string
	value    string
}

// filter is an AND of OR-groups plus the requested ordering.
type filter struct {
	groups [][]condition
	orders []order
}

func parseQuery(encoded string) (*filter, error) {
	f := &filter{}

	if encoded == "" {
		return f, nil
	}

	for _, clause := range strings.Split(encoded, constants.QuerySeparator) {
		switch {
		case clause == "":
			continue
		case strings.HasPrefix(clause, "ORDERBYDESC"):
			f.orders = append(f.orders, order{field: strings.TrimPrefix(clause, "ORDERBYDESC"), desc: true})
		case strings.HasPrefix(clause, "ORDERBY"):
			f.orders = append(f.orders, order{field: strings.TrimPrefix(clause, "ORDERBY")})
		case len(f.groups) > 0 && isOrBranch(clause):
			cond, err := parseCondition(strings.TrimPrefix(clause, orPrefix))
			if err != nil {
				return nil, err
			}

			last := len(f.groups) - 1
			f.groups[last] = append(f.groups[last], cond)
		default:
			cond, err := parseCondition(clause)
			if err != nil {
				return nil, err
			}

			f.groups = append(f.groups, []condition{cond})
		}
	}

	return f, nil
}

// orPrefix follows the "^" of an OR branch. Column names are lower case, so
// "^ORG=x" is a condition on ORG while "^ORorg=x" is an OR branch.
const orPrefix = "OR"

func isOrBranch(clause string) bool {
	rest, ok := strings.CutPrefix(clause, orPrefix)
	if !ok || rest == "" {
		return false
	}

	first := rest[0]

	return first == '_' || (first >= 'a' && first <= 'z')
}

func parseCondition(clause string) (condition, error) {
	for _, suffix := range []string{"ISNOTEMPTY", "ISEMPTY"} {
		if field, ok := strings.CutSuffix(clause, suffix); ok && field != "" {
			return condition{field: field, operator: suffix}, nil
		}
	}

	best := -1
	operator := ""

	for _, op := range operators {
		idx := strings.Index(clause, op)
		if idx > 0 && (best < 0 || idx < best) {
			best = idx
			operator = op
		}
	}

	if best < 0 {
		return condition{}, fmt.Errorf("%w: %q", errUnsupportedClause, clause)
	}

	return condition{
		field:    clause[:best],
		operator: operator,
		value:    clause[best+len(operator):],
	}, nil
}

func (f *filter) matches(row Record) bool {
	for _, group := range f.groups {
		matched := false

		for _, cond := range group {
			if cond.matches(row) {
				matched = true

				break
			}
		}

		if !matched {
			return false
		}
	}

	return true
}

func (c condition) matches(row Record) bool {
	actual := fieldValue(row[c.field])

	switch c.operator {
	case "=":
		return actual == c.value
	case "!=":
		return actual != c.value
	case "LIKE":
		return strings.Contains(actual, c.value)
	case "STARTSWITH":
		return strings.HasPrefix(actual, c.value)
	case "IN":
		for _, candidate := range strings.Split(c.value, ",") {
			if actual == candidate {
				return true
			}
		}

		return false
	case "ISEMPTY":
		return actual == ""
	case "ISNOTEMPTY":
		return actual != ""
	default:
		return false
	}
}

// fieldValue flattens reference fields ({"link": ..., "value": ...}) to their value.
func fieldValue(raw interface{}) string {
	if ref, ok := raw.(map[string]interface{}); ok {
		return cast.ToString(ref["value"])
	}

	return cast.ToString(raw)
}

type order struct {
	field string
	desc  bool
}

func (f *filter) sort(rows []Record) {
	if len(f.orders) == 0 {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range f.orders {
			left := cast.ToString(rows[i][o.field])
			right := cast.ToString(rows[j][o.field])

			if left == right {
				continue
			}

			if o.desc {
				return left > right
			}

			return left < right
		}

		return false
	})
}
