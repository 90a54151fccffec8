package domain

type Complaint struct {
	ID            string
	IncrementalID string   // human-readable sequence number shown to managers
	Region        string
	Categories    []string // "GLS", "OSH", "SS"
	RejectedBy    string   // login of the inspector who declined it, empty for new complaints
}

// IsRejected reports whether the complaint was declined by its previous
// inspector and now needs reassignment.
func (c Complaint) IsRejected() bool {
	return c.RejectedBy != ""
}

type Inspector struct {
	ID              string
	Name            string
	Login           string // assignment target (e-mail)
	Region          string
	Specializations []string
}

// Resource is one independently processed partition of the workflow,
// usually one country.
type Resource struct {
	ComplaintQuery string
	InspectorQuery string
	Region         string
}

var complaintTypes = map[string]string{
	"1": "GLS",
	"2": "OSH",
	"3": "OSH",
	"4": "SS",
}

var specializations = map[string]string{
	"1": "GLS",
	"2": "OSH",
	"3": "SS",
}

// ComplaintCategory maps a record-store complaint type code to its category
// tag. Missing codes fall back to "1" the same way the store's forms do.
func ComplaintCategory(code string) string {
	if code == "" {
		code = "1"
	}
	return complaintTypes[code]
}

// SpecializationTag maps a record-store specialization code to its tag.
func SpecializationTag(code string) string {
	return specializations[code]
}
