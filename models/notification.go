package models

// Notification is the payload delivered to every resolved device
type Notification struct {
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Priority string                 `json:"priority,omitempty"` // "default" or "high"
}

// Outcome classifies what happened to a single token during a dispatch
type Outcome string

// Per-token dispatch outcomes
const (
	OutcomeDelivered        Outcome = "Delivered"        // gateway accepted the message
	OutcomeRejected         Outcome = "Rejected"         // token failed format validation, not sent
	OutcomeTransportFailure Outcome = "TransportFailure" // chunk send errored or timed out
	OutcomeGatewayError     Outcome = "GatewayError"     // gateway returned a per-token error ticket
)

// TokenOutcome pairs one destination token with its dispatch outcome.
// Permanent is set when the gateway reported the destination gone for good,
// which deactivates the registration as a side effect.
type TokenOutcome struct {
	Token     string  `json:"token"`
	Outcome   Outcome `json:"outcome"`
	ErrorCode string  `json:"errorCode,omitempty"`
	Permanent bool    `json:"-"`
}

// DispatchReport reasons
const (
	ReasonNoActiveTokens = "NoActiveTokens" // expected steady state, not an error
	ReasonFailed         = "Failed"         // token resolution failed for this owner
)

// DispatchReport summarizes one owner's fan-out
type DispatchReport struct {
	OwnerID   string         `json:"ownerId"`
	Reason    string         `json:"reason,omitempty"`
	Attempted int            `json:"attempted"`
	Outcomes  []TokenOutcome `json:"outcomes"`
}
