package model

// ThreatScore is the per-category verdict the frontend renders: HIGH when the
// category appeared in the upstream verdict, SAFE otherwise.
type ThreatScore struct {
	ThreatType      string `json:"threatType"`
	ConfidenceLevel string `json:"confidenceLevel"`
}
