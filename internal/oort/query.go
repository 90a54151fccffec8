package oort

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

func and(filters ...filter) map[string]any {
	return map[string]any{"logic": "and", "filters": filters}
}

// listVariables are the variables shared by every Oort list query.
func listVariables(first int, f map[string]any, sortField string, sortOrder string) map[string]any {
	vars := map[string]any{
		"first":     first,
		"filter":    f,
		"sortOrder": sortOrder,
		"styles":    []any{},
	}
	if sortField != "" {
		vars["sortField"] = sortField
	}
	return vars
}

// listQuery builds a query over the Oort list named queryName selecting
// nodeFields on every edge node.
func listQuery(operation, queryName, nodeFields string) string {
	return fmt.Sprintf(`query %s($first: Int, $skip: Int, $filter: JSON, $sortField: String, $sortOrder: String, $display: Boolean, $styles: JSON) {
  %s(
    first: $first
    skip: $skip
    sortField: $sortField
    sortOrder: $sortOrder
    filter: $filter
    display: $display
    styles: $styles
  ) {
    edges {
      node {
        %s
      }
      meta
    }
    totalCount
  }
}`, operation, queryName, nodeFields)
}

type connection[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
	TotalCount int `json:"totalCount"`
}

// stringOrList decodes fields that Oort returns either as a single value or
// as a list depending on the question type of the form.
type stringOrList []string

func (s *stringOrList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, scalarString(item))
		}
		*s = out
		return nil
	}
	*s = []string{scalarString(data)}
	return nil
}

func (s stringOrList) first() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// scalarString renders a JSON string or number as a plain string.
func scalarString(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}
	return ""
}
