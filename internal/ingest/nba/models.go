package nba

import "fmt"

// statsResponse is the envelope every stats API endpoint returns: named
// result sets, each a header row plus positional data rows.
type statsResponse struct {
	Resource   string      `json:"resource"`
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// findResultSet returns the named result set, or the first one when name is
// empty
func (r *statsResponse) findResultSet(name string) (*resultSet, error) {
	if len(r.ResultSets) == 0 {
		return nil, fmt.Errorf("response contains no result sets")
	}
	if name == "" {
		return &r.ResultSets[0], nil
	}
	for i := range r.ResultSets {
		if r.ResultSets[i].Name == name {
			return &r.ResultSets[i], nil
		}
	}
	return nil, fmt.Errorf("result set %q not found", name)
}

// columnIndex maps header names to their positional index in each row
func columnIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return idx
}

// cell accessors tolerate the API's loose typing: numbers arrive as
// json float64, ids sometimes as strings.

func cellString(row []interface{}, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func cellInt(row []interface{}, idx map[string]int, col string) (int, bool) {
	i, ok := idx[col]
	if !ok || i >= len(row) || row[i] == nil {
		return 0, false
	}
	switch v := row[i].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func cellFloat(row []interface{}, idx map[string]int, col string) (float64, bool) {
	i, ok := idx[col]
	if !ok || i >= len(row) || row[i] == nil {
		return 0, false
	}
	if v, ok := row[i].(float64); ok {
		return v, true
	}
	return 0, false
}
