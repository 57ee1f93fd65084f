package domain

// ContactUnavailable is the placeholder used when a lookup result has no
// phone number or website. The lookup client normalizes at mapping time so
// downstream code never sees empty contact fields.
const ContactUnavailable = "Not available"

// Organization is a located entity that accepts food donations. It is
// produced by the lookup client and immutable afterwards.
type Organization struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
	Website string  `json:"website"`
	Rating  float64 `json:"rating,omitempty"`
}

// LogRecord pairs a donor's identity with one organization. The ledger
// writes exactly one record per cached organization, preserving cache order.
type LogRecord struct {
	DonorName  string
	DonorPhone string
	Org        Organization
	Timestamp  string
}
