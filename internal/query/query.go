// Package query translates list query strings (filter, sort, field selection, pagination)
// into parameterized SQL fragments against a per-resource column whitelist.
package query

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"tourapi/internal/apperror"
)

// Kind is the type a query-string value is converted to before it is bound.
type Kind int

const (
	String Kind = iota
	Number
	Integer
	Bool
	Time
)

// Field maps an API field name to its column.
type Field struct {
	Column string
	Kind   Kind
	Filter bool
	Sort   bool
}

// Schema describes what a resource allows in its list query string.
type Schema struct {
	Fields map[string]Field
	// DefaultSort uses the query-string syntax, e.g. "-ratingsAverage".
	DefaultSort string
	// TieBreaker is appended to every ORDER BY so pages are stable.
	TieBreaker string
	// MultiValue lists fields that keep every repeated value as an IN list.
	// Every other repeated parameter keeps only its last value.
	MultiValue map[string]bool
}

// Op is a comparison operator.
type Op string

const (
	Eq  Op = "="
	Gt  Op = ">"
	Gte Op = ">="
	Lt  Op = "<"
	Lte Op = "<="
	In  Op = "IN"
)

var operators = map[string]Op{"gt": Gt, "gte": Gte, "lt": Lt, "lte": Lte}

// Condition is one translated filter.
type Condition struct {
	Field  string
	Column string
	Op     Op
	Values []any
}

// SortKey is one ORDER BY term.
type SortKey struct {
	Field  string
	Column string
	Desc   bool
}

const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 1000
)

var reserved = map[string]bool{"page": true, "sort": true, "limit": true, "fields": true}

var keyPattern = regexp.MustCompile(`^([A-Za-z0-9_]+)(?:\[([a-z]+)\])?$`)

// Query is a parsed list request.
type Query struct {
	Conditions []Condition
	Sort       []SortKey
	Include    []string
	Exclude    []string
	Page       int
	Limit      int

	tieBreaker string
}

// Parse validates values against s and builds a Query.
func Parse(s Schema, values url.Values) (*Query, error) {
	q := &Query{
		Page:       positiveInt(values.Get("page"), DefaultPage),
		Limit:      positiveInt(values.Get("limit"), DefaultLimit),
		tieBreaker: s.TieBreaker,
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		cond, err := parseCondition(s, key, values[key])
		if err != nil {
			return nil, err
		}
		q.Conditions = append(q.Conditions, cond)
	}

	sortSpec := values.Get("sort")
	if sortSpec == "" {
		sortSpec = s.DefaultSort
	}
	keysSort, err := parseSort(s, sortSpec)
	if err != nil {
		return nil, err
	}
	q.Sort = keysSort

	for _, f := range splitList(values.Get("fields")) {
		if strings.HasPrefix(f, "-") {
			q.Exclude = append(q.Exclude, strings.TrimPrefix(f, "-"))
			continue
		}
		q.Include = append(q.Include, f)
	}

	return q, nil
}

// MustParse parses a fixed, known-good query string. It panics on error.
func MustParse(s Schema, raw string) *Query {
	values, err := url.ParseQuery(raw)
	if err != nil {
		panic(err)
	}
	q, err := Parse(s, values)
	if err != nil {
		panic(err)
	}
	return q
}

func parseCondition(s Schema, key string, raw []string) (Condition, error) {
	m := keyPattern.FindStringSubmatch(key)
	if m == nil {
		return Condition{}, apperror.BadRequest(fmt.Sprintf("Invalid filter field: %s", key))
	}
	name, opName := m[1], m[2]

	field, ok := s.Fields[name]
	if !ok || !field.Filter {
		return Condition{}, apperror.BadRequest(fmt.Sprintf("Invalid filter field: %s", name))
	}

	op := Eq
	if opName != "" {
		if op, ok = operators[opName]; !ok {
			return Condition{}, apperror.BadRequest(fmt.Sprintf("Invalid filter operator: %s", opName))
		}
	}

	use := raw[len(raw)-1:]
	if op == Eq && s.MultiValue[name] && len(raw) > 1 {
		use = raw
		op = In
	}

	vals := make([]any, 0, len(use))
	for _, v := range use {
		cv, err := convert(field.Kind, v)
		if err != nil {
			return Condition{}, apperror.BadRequest(fmt.Sprintf("Invalid value for %s: %s", name, v))
		}
		vals = append(vals, cv)
	}

	return Condition{Field: name, Column: field.Column, Op: op, Values: vals}, nil
}

func parseSort(s Schema, spec string) ([]SortKey, error) {
	var out []SortKey
	for _, term := range splitList(spec) {
		desc := strings.HasPrefix(term, "-")
		name := strings.TrimPrefix(term, "-")
		field, ok := s.Fields[name]
		if !ok || !field.Sort {
			return nil, apperror.BadRequest(fmt.Sprintf("Invalid sort field: %s", name))
		}
		out = append(out, SortKey{Field: name, Column: field.Column, Desc: desc})
	}
	return out, nil
}

func convert(k Kind, v string) (any, error) {
	switch k {
	case Number:
		return strconv.ParseFloat(v, 64)
	case Integer:
		return strconv.Atoi(v)
	case Bool:
		return strconv.ParseBool(v)
	case Time:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", v)
	default:
		return v, nil
	}
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Offset is the number of rows skipped before the current page.
func (q *Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Where renders the WHERE clause. base conditions are ANDed first and may reference
// args by position; filter placeholders continue after len(args).
func (q *Query) Where(base []string, args []any) (string, []any) {
	conds := append([]string(nil), base...)
	out := append([]any(nil), args...)

	for _, c := range q.Conditions {
		if c.Op == In {
			ph := make([]string, len(c.Values))
			for i, v := range c.Values {
				out = append(out, v)
				ph[i] = fmt.Sprintf("$%d", len(out))
			}
			conds = append(conds, fmt.Sprintf("%s IN (%s)", c.Column, strings.Join(ph, ", ")))
			continue
		}
		out = append(out, c.Values[0])
		conds = append(conds, fmt.Sprintf("%s %s $%d", c.Column, c.Op, len(out)))
	}

	if len(conds) == 0 {
		return "", out
	}
	return " WHERE " + strings.Join(conds, " AND "), out
}

// OrderBy renders the ORDER BY clause including the tie-breaker.
func (q *Query) OrderBy() string {
	terms := make([]string, 0, len(q.Sort)+1)
	for _, k := range q.Sort {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		terms = append(terms, k.Column+" "+dir)
	}
	if q.tieBreaker != "" {
		terms = append(terms, q.tieBreaker+" ASC")
	}
	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

// LimitOffset renders LIMIT/OFFSET placeholders after args.
func (q *Query) LimitOffset(args []any) (string, []any) {
	out := append(append([]any(nil), args...), q.Limit, q.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(out)-1, len(out)), out
}
