// Package pushgateway wraps the third-party push providers behind a single
// capability interface so the dispatch layer can be tested against a fake.
package pushgateway

import (
	"context"

	"github.com/kestrelapps/taskdeck-api/models"
)

// Ticket is the per-token receipt a gateway hands back for one batch entry
type Ticket struct {
	Token     string
	OK        bool
	ErrorCode string
	// Permanent means the provider reported the destination gone for good
	// (e.g. the app was uninstalled); the registration should be deactivated.
	Permanent bool
}

// Gateway is the capability the dispatcher is constructed with. Implementations
// must return one ticket per token, in input order, or an error covering the
// whole batch.
type Gateway interface {
	// ValidToken reports whether the token matches the provider's format.
	ValidToken(token string) bool
	// SendBatch delivers one notification to a provider-bounded chunk of tokens.
	SendBatch(ctx context.Context, tokens []string, notification models.Notification) ([]Ticket, error)
}
