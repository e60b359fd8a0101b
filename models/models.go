package models

// Workflow labels conventionally used by the admin panel. The store accepts
// any non-empty status string; these are the ones the UI offers.
const (
	StatusNew        = "New"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusRejected   = "Rejected"
)

// AddressNotAvailable is stored when a submission carries no address.
const AddressNotAvailable = "N/A"

// Report is one stored citizen report.
type Report struct {
	Id            int64    `json:"id"`
	CreatedAt     string   `json:"created_at"`
	Address       string   `json:"address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Description   string   `json:"description"`
	PhotoFilename *string  `json:"photo_filename"`
	PostalCode    string   `json:"postal_code"`
	Neighborhood  string   `json:"neighborhood"`
	Locality      string   `json:"locality"`
	Status        string   `json:"status"`
}

// ReportDraft carries everything InsertReport writes. Status is absent on
// purpose: inserts always take the store-side default.
type ReportDraft struct {
	CreatedAt     string
	Address       string
	Latitude      *float64
	Longitude     *float64
	Description   string
	PhotoFilename *string
	PostalCode    string
	Neighborhood  string
	Locality      string
}

// ReportSubmission holds the raw form fields of a POST /report call, before
// normalization. Coordinates arrive as strings from the browser.
type ReportSubmission struct {
	Address      string
	Latitude     string
	Longitude    string
	Description  string
	PostalCode   string
	Neighborhood string
	Locality     string
}

// AdminView is the read-only projection the admin page renders: the ordered
// rows for the list and the same rows serialized for the map widget.
type AdminView struct {
	Reports     []Report
	ReportsJSON string
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type SubmitResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MapPin is the location of one report on the admin map.
type MapPin struct {
	Latitude  float64
	Longitude float64
}

// ViewPort is a lat/lon bounding box, south-west to north-east.
type ViewPort struct {
	LatMin float64
	LonMin float64
	LatMax float64
	LonMax float64
}
