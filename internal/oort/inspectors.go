package oort

import (
	"context"
	"fmt"

	"autoassign/internal/domain"
)

const inspectorsQueryName = "allInspectors"

const inspectorNodeFields = `id
        email
        fullname
        specialization
        inspector_region {
          Region
        }`

type inspectorNode struct {
	ID              string       `json:"id"`
	Email           stringOrList `json:"email"`
	FullName        string       `json:"fullname"`
	Specializations stringOrList `json:"specialization"`
	InspectorRegion *struct {
		Region string `json:"Region"`
	} `json:"inspector_region"`
}

// FetchInspectors returns the inspectors registered with form. Inspectors
// without an e-mail cannot be assigned and are left out.
func (c *Client) FetchInspectors(ctx context.Context, form string) ([]domain.Inspector, error) {
	req := request{
		OperationName: "GetInspectors",
		Variables: listVariables(c.inspectorLimit, and(
			filter{Field: "form", Operator: "eq", Value: form},
		), "", "asc"),
		Query: listQuery("GetInspectors", inspectorsQueryName, inspectorNodeFields),
	}
	var conn connection[inspectorNode]
	if err := c.do(ctx, req, inspectorsQueryName, &conn); err != nil {
		return nil, fmt.Errorf("fetching inspectors: %w", err)
	}

	out := make([]domain.Inspector, 0, len(conn.Edges))
	for _, e := range conn.Edges {
		n := e.Node
		login := n.Email.first()
		if login == "" {
			c.logger.Warn("inspector has no e-mail, leaving out", "inspector", n.FullName, "id", n.ID)
			continue
		}
		insp := domain.Inspector{
			ID:    n.ID,
			Name:  n.FullName,
			Login: login,
		}
		if n.InspectorRegion != nil {
			insp.Region = n.InspectorRegion.Region
		}
		for _, code := range n.Specializations {
			if tag := domain.SpecializationTag(code); tag != "" {
				insp.Specializations = append(insp.Specializations, tag)
			}
		}
		out = append(out, insp)
	}
	return out, nil
}
