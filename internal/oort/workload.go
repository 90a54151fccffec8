package oort

import (
	"context"
	"fmt"
)

// CountOpenComplaints counts the complaints of queryName last assigned to
// login that are not closed.
func (c *Client) CountOpenComplaints(ctx context.Context, queryName, login string) (int, error) {
	req := request{
		OperationName: "GetInspectorWorkload",
		Variables: listVariables(1, and(
			filter{Field: "last_inspector_assigned_users", Operator: "contains", Value: []string{login}},
			filter{Field: "complaint_status", Operator: "neq", Value: "Closed"},
		), "", "asc"),
		Query: listQuery("GetInspectorWorkload", queryName, "id"),
	}
	var conn connection[struct {
		ID string `json:"id"`
	}]
	if err := c.do(ctx, req, queryName, &conn); err != nil {
		return 0, fmt.Errorf("fetching workload of %s: %w", login, err)
	}
	return conn.TotalCount, nil
}
