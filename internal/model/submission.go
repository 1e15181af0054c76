package model

import "encoding/json"

// SubmissionReceipt acknowledges an accepted abuse submission. Operation is
// the upstream handle the frontend polls with.
type SubmissionReceipt struct {
	Operation string `json:"operation"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// OperationStatus reports where a submission's review stands. Details carries
// the raw upstream operation document for debugging integrations.
type OperationStatus struct {
	Operation string          `json:"operation"`
	Status    string          `json:"status"`
	Details   json.RawMessage `json:"details"`
}
