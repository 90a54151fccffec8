package oort

import (
	"context"
	"errors"
	"fmt"

	"autoassign/internal/domain"
)

const complaintNodeFields = `id
        incrementalId
        compl_type
        last_inspector_assigned_users
        region {
          Name
        }`

type complaintNode struct {
	ID                         string       `json:"id"`
	IncrementalID              string       `json:"incrementalId"`
	ComplaintType              stringOrList `json:"compl_type"`
	LastInspectorAssignedUsers stringOrList `json:"last_inspector_assigned_users"`
	Region                     *struct {
		Name string `json:"Name"`
	} `json:"region"`
}

func (n complaintNode) toComplaint(rejected bool) domain.Complaint {
	c := domain.Complaint{
		ID:            n.ID,
		IncrementalID: n.IncrementalID,
		Categories:    []string{domain.ComplaintCategory(n.ComplaintType.first())},
	}
	if n.Region != nil {
		c.Region = n.Region.Name
	}
	if rejected {
		c.RejectedBy = n.LastInspectorAssignedUsers.first()
	}
	return c
}

// FetchUnassignedComplaints returns validated complaints that have no
// inspector yet, newest first.
func (c *Client) FetchUnassignedComplaints(ctx context.Context, queryName string) ([]domain.Complaint, error) {
	req := request{
		OperationName: "GetUnassignedComplaints",
		Variables: listVariables(c.pendingLimit, and(
			filter{Field: "complaint_status", Operator: "eq", Value: "Case validated"},
		), "createdAt", "desc"),
		Query: listQuery("GetUnassignedComplaints", queryName, complaintNodeFields),
	}
	var conn connection[complaintNode]
	if err := c.do(ctx, req, queryName, &conn); err != nil {
		return nil, fmt.Errorf("fetching unassigned complaints: %w", err)
	}
	out := make([]domain.Complaint, 0, len(conn.Edges))
	for _, e := range conn.Edges {
		out = append(out, e.Node.toComplaint(false))
	}
	return out, nil
}

// FetchRejectedComplaints returns complaints declined by their inspector that
// have not been reassigned yet, newest first.
func (c *Client) FetchRejectedComplaints(ctx context.Context, queryName string) ([]domain.Complaint, error) {
	req := request{
		OperationName: "GetRejectedComplaints",
		Variables: listVariables(c.pendingLimit, and(
			filter{Field: "accept", Operator: "eq", Value: false},
			filter{Field: "reason_for_declining", Operator: "isnotempty", Value: nil},
			filter{Field: "reassignment_bool", Operator: "neq", Value: true},
		), "createdAt", "desc"),
		Query: listQuery("GetRejectedComplaints", queryName, complaintNodeFields),
	}
	var conn connection[complaintNode]
	if err := c.do(ctx, req, queryName, &conn); err != nil {
		return nil, fmt.Errorf("fetching rejected complaints: %w", err)
	}
	out := make([]domain.Complaint, 0, len(conn.Edges))
	for _, e := range conn.Edges {
		complaint := e.Node.toComplaint(true)
		if complaint.RejectedBy == "" {
			c.logger.Warn("rejected complaint has no previous inspector, treating as new",
				"complaint", complaint.IncrementalID)
		}
		out = append(out, complaint)
	}
	return out, nil
}

// FetchPendingComplaints returns rejected complaints followed by unassigned
// ones. When one of the two queries fails the other's results are still
// returned together with the error.
func (c *Client) FetchPendingComplaints(ctx context.Context, queryName string) ([]domain.Complaint, error) {
	rejected, rejErr := c.FetchRejectedComplaints(ctx, queryName)
	unassigned, unErr := c.FetchUnassignedComplaints(ctx, queryName)

	seen := make(map[string]bool, len(rejected)+len(unassigned))
	pending := make([]domain.Complaint, 0, len(rejected)+len(unassigned))
	for _, list := range [][]domain.Complaint{rejected, unassigned} {
		for _, complaint := range list {
			if seen[complaint.ID] {
				continue
			}
			seen[complaint.ID] = true
			pending = append(pending, complaint)
		}
	}
	return pending, errors.Join(rejErr, unErr)
}
