package domain

// PolicyInput is the document handed to the payment-initiation policy gate.
type PolicyInput struct {
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
	Asset     string `json:"asset"`
	SubjectID int64  `json:"subject_id"`
}

// PolicyDecision is the normalized result of a policy evaluation. Deny holds
// machine-readable reason codes; empty Deny with Allow=true admits the request.
type PolicyDecision struct {
	Allow bool     `json:"allow"`
	Deny  []string `json:"deny"`
}
