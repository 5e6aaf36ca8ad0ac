package data

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/carowners/api/internal/validator"
)

// MatchKind selects how a filter value is compared against a column.
type MatchKind int

const (
	// MatchExact compares values for equality.
	MatchExact MatchKind = iota
	// MatchIExact compares text values for equality ignoring letter case.
	MatchIExact
)

// FieldCheck validates a raw query parameter and returns the value the
// column is compared against. Failures are recorded on v.
type FieldCheck func(v *validator.Validator, key, raw string) any

// FilterField declares one query parameter that may narrow a listing.
type FilterField struct {
	Param  string
	Column string
	Match  MatchKind
	Check  FieldCheck
}

// Condition is a single column comparison inside a Filter.
type Condition struct {
	Column string
	Match  MatchKind
	Value  any
}

// Filter is a conjunction of conditions. The zero Filter matches everything.
type Filter struct {
	Conditions []Condition
}

// Empty reports whether the filter has no conditions.
func (f Filter) Empty() bool {
	return len(f.Conditions) == 0
}

// where renders the filter as a WHERE clause whose placeholders start at
// $firstArg. It returns an empty clause for the zero Filter.
func (f Filter) where(firstArg int) (string, []any) {
	if f.Empty() {
		return "", nil
	}

	parts := make([]string, 0, len(f.Conditions))
	args := make([]any, 0, len(f.Conditions))
	for i, c := range f.Conditions {
		n := firstArg + i
		switch c.Match {
		case MatchIExact:
			parts = append(parts, fmt.Sprintf("UPPER(%s) = UPPER($%d)", c.Column, n))
		default:
			parts = append(parts, fmt.Sprintf("%s = $%d", c.Column, n))
		}
		args = append(args, c.Value)
	}
	return "WHERE " + strings.Join(parts, " AND "), args
}

// columnValuer exposes an entity's column values for in-memory filtering
// and sorting.
type columnValuer interface {
	columnValue(column string) string
}

// matches evaluates the filter against an entity held in memory.
func (f Filter) matches(e columnValuer) bool {
	for _, c := range f.Conditions {
		got := e.columnValue(c.Column)
		want := formatValue(c.Value)
		switch c.Match {
		case MatchIExact:
			if !strings.EqualFold(got, want) {
				return false
			}
		default:
			if got != want {
				return false
			}
		}
	}
	return true
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case Date:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// SearchSpec is the fixed search configuration of one entity: which
// query parameters filter it and which values "ordering" accepts.
type SearchSpec struct {
	// Entity is the display name used in "no results" messages.
	Entity string
	Fields []FilterField
	// OrderingFields are the advertised sortable fields.
	OrderingFields []string
	// OrderingAliases are further accepted ordering values, such as a
	// descending form of one of the OrderingFields.
	OrderingAliases []string
}

// ParseFilter validates every supplied filter parameter and builds the
// conjunctive Filter. Parameters with empty values count as absent.
func (s SearchSpec) ParseFilter(qs url.Values, v *validator.Validator) Filter {
	var filter Filter
	for _, field := range s.Fields {
		raw := qs.Get(field.Param)
		if raw == "" {
			continue
		}
		value := any(raw)
		if field.Check != nil {
			value = field.Check(v, field.Param, raw)
		}
		filter.Conditions = append(filter.Conditions, Condition{
			Column: field.Column,
			Match:  field.Match,
			Value:  value,
		})
	}
	return filter
}

// ParseSort validates the "ordering" parameter and returns it, or "" when
// it is absent.
func (s SearchSpec) ParseSort(qs url.Values, v *validator.Validator) string {
	sort := qs.Get("ordering")
	if sort == "" {
		return ""
	}
	v.Ordering("ordering", sort, s.OrderingFields, s.OrderingAliases...)
	return sort
}

// SortSafeList returns every ordering value the entity accepts.
func (s SearchSpec) SortSafeList() []string {
	return append(append([]string{}, s.OrderingFields...), s.OrderingAliases...)
}

func checkPersonName(v *validator.Validator, key, raw string) any {
	v.PersonName(key, raw)
	return raw
}

func checkPhone(v *validator.Validator, key, raw string) any {
	v.Phone(key, raw)
	return raw
}

func checkProductionDate(v *validator.Validator, key, raw string) any {
	date, err := validator.ParseDate(raw)
	if err != nil {
		v.AddError(key, validator.MsgDateFormat)
		return raw
	}
	v.NotFuture(key, date)
	return Date{date}
}

func checkID(v *validator.Validator, key, raw string) any {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		v.AddError(key, validator.MsgIntegerRequired)
		return raw
	}
	return id
}
