package adapter

import "context"

// Event subjects carried by the notification relay. Delivery is best-effort,
// at most once per connected client; offline clients reconcile by re-fetching
// on reconnect.
const (
	// EventCafeUpdated has no payload; clients re-fetch the cafe list.
	EventCafeUpdated = "cafe.updated"
	// EventClaimRedeemed carries a ClaimRedeemedEvent; the named user's
	// client refreshes its entitlement state.
	EventClaimRedeemed = "claim.redeemed"
)

type ClaimRedeemedEvent struct {
	UserID string `json:"user_id"`
	CafeID string `json:"cafe_id"`
}

// EventPublisher is injected into the use cases that emit state-change
// events, decoupling business logic from the transport. Publishing must
// never block the triggering write.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}
