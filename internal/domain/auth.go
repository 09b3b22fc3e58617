package domain

import "time"

// AuthChallenge is a per-request message bound to a principal address. The
// client signs the exact message bytes with the wallet key.
type AuthChallenge struct {
	Principal string
	Nonce     string
	IssuedAt  time.Time
	Message   string
}

// CapabilityToken is a bearer credential scoped to one principal, granting
// time-limited access to the storage network's upload API.
type CapabilityToken struct {
	Token     string
	Principal string
	ExpiresAt time.Time
}
