package oort

import (
	"context"
	"fmt"
	"time"
)

const (
	statusAssigned   = "Assigned to inspector"
	statusReassigned = "Reassigned to another inspector"
	todoAcceptCase   = "Accept case"
)

const assignMutation = `mutation AssignInspector($id: ID!, $data: JSON!) {
  editRecord(id: $id, data: $data) {
    id
    data
  }
}`

// assignmentData is the record update for assigning login to a complaint.
// A reassignment also flags the record so it is not picked up as rejected
// again.
func assignmentData(login string, reassignment bool, now time.Time) map[string]any {
	data := map[string]any{
		"last_inspector_assigned_users": []string{login},
		"to_do_inspector":               todoAcceptCase,
	}
	stamp := now.UTC().Format(time.RFC3339Nano)
	if reassignment {
		data["date_reassignment"] = stamp
		data["complaint_status"] = statusReassigned
		data["to_do_manager"] = statusReassigned
		data["reassignment_bool"] = true
		data["inspector_reassigned_rejection"] = []string{login}
	} else {
		data["date_assignment"] = stamp
		data["complaint_status"] = statusAssigned
		data["to_do_manager"] = statusAssigned
		data["inspector_assigned_users"] = []string{login}
	}
	return data
}

func (c *Client) AssignInspector(ctx context.Context, complaintID, login string, reassignment bool) error {
	req := request{
		OperationName: "AssignInspector",
		Variables: map[string]any{
			"id":   complaintID,
			"data": assignmentData(login, reassignment, c.now()),
		},
		Query: assignMutation,
	}
	if err := c.do(ctx, req, "editRecord", nil); err != nil {
		return fmt.Errorf("assigning %s to complaint %s: %w", login, complaintID, err)
	}
	return nil
}
