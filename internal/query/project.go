package query

import (
	"encoding/json"
	"fmt"
)

// Default is the query used when a caller supplies no query string.
func Default(s Schema) *Query {
	return MustParse(s, "")
}

// Projects reports whether the query restricts the output fields.
func (q *Query) Projects() bool {
	return len(q.Include) > 0 || len(q.Exclude) > 0
}

// Project reduces the JSON form of v (a value or a slice) to the selected fields.
// The id field is always kept when fields are included.
func (q *Query) Project(v any) (any, error) {
	if !q.Projects() {
		return v, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	switch t := generic.(type) {
	case []any:
		for i, item := range t {
			if m, ok := item.(map[string]any); ok {
				t[i] = q.projectMap(m)
			}
		}
		return t, nil
	case map[string]any:
		return q.projectMap(t), nil
	default:
		return generic, nil
	}
}

func (q *Query) projectMap(m map[string]any) map[string]any {
	if len(q.Include) > 0 {
		out := make(map[string]any, len(q.Include)+1)
		if id, ok := m["id"]; ok {
			out["id"] = id
		}
		for _, f := range q.Include {
			if v, ok := m[f]; ok {
				out[f] = v
			}
		}
		return out
	}
	for _, f := range q.Exclude {
		delete(m, f)
	}
	return m
}
