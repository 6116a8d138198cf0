package dispatch

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kestrelapps/taskdeck-api/databases"
	"github.com/kestrelapps/taskdeck-api/models"
)

// ErrMissingOwner is returned before any I/O when the caller forgot the owner id
var ErrMissingOwner = errors.New("ownerId must not be empty")

// Notifier is the optional in-app channel; connected users get the
// notification pushed over their open websocket as well
type Notifier interface {
	SendToUser(userID string, event string, data interface{})
}

// Orchestrator resolves logical targets (user, users, group) into concrete
// token sets and drives the dispatcher
type Orchestrator struct {
	Lifecycle  *Lifecycle
	Dispatcher *Dispatcher
	Groups     databases.GroupDatabase
	Notifier   Notifier
}

// NewOrchestrator wires the fan-out layer together. Notifier may be nil.
func NewOrchestrator(lifecycle *Lifecycle, dispatcher *Dispatcher, groups databases.GroupDatabase, notifier Notifier) *Orchestrator {
	return &Orchestrator{
		Lifecycle:  lifecycle,
		Dispatcher: dispatcher,
		Groups:     groups,
		Notifier:   notifier,
	}
}

// SendToUser resolves the owner's active tokens and dispatches to all of them.
// An owner with no active tokens gets a NoActiveTokens report, not an error;
// plenty of accounts never registered a device.
func (o *Orchestrator) SendToUser(ctx context.Context, ownerID string, notification models.Notification) (models.DispatchReport, error) {
	if ownerID == "" {
		return models.DispatchReport{}, ErrMissingOwner
	}
	if notification.Title == "" || notification.Body == "" {
		// rejected before any I/O, same rule the dispatcher enforces
		return models.DispatchReport{}, ErrEmptyNotification
	}

	tokens, err := o.Lifecycle.TokensFor(ctx, ownerID)
	if err != nil {
		return models.DispatchReport{OwnerID: ownerID}, err
	}
	if len(tokens) == 0 {
		return models.DispatchReport{
			OwnerID:  ownerID,
			Reason:   models.ReasonNoActiveTokens,
			Outcomes: []models.TokenOutcome{},
		}, nil
	}

	targets := make([]Target, 0, len(tokens))
	for _, t := range tokens {
		targets = append(targets, Target{Token: t.Token, Platform: t.Platform})
	}

	outcomes, err := o.Dispatcher.Dispatch(ctx, targets, notification)
	if err != nil {
		return models.DispatchReport{OwnerID: ownerID}, err
	}

	var delivered, dead []string
	for _, oc := range outcomes {
		switch {
		case oc.Outcome == models.OutcomeDelivered:
			delivered = append(delivered, oc.Token)
		case oc.Outcome == models.OutcomeGatewayError && oc.Permanent:
			dead = append(dead, oc.Token)
		}
	}
	o.Lifecycle.Touch(ctx, delivered)
	o.Lifecycle.Deactivate(ctx, dead)

	if o.Notifier != nil {
		o.Notifier.SendToUser(ownerID, "new_notification", notification)
	}

	return models.DispatchReport{
		OwnerID:   ownerID,
		Attempted: len(targets),
		Outcomes:  outcomes,
	}, nil
}

// SendToUsers fans out to each owner independently; one owner's failure is
// recorded in their report and the rest still go out
func (o *Orchestrator) SendToUsers(ctx context.Context, ownerIDs []string, notification models.Notification) ([]models.DispatchReport, error) {
	reports := make([]models.DispatchReport, 0, len(ownerIDs))
	for _, ownerID := range ownerIDs {
		report, err := o.SendToUser(ctx, ownerID, notification)
		if err != nil {
			if errors.Is(err, ErrEmptyNotification) {
				// a bad payload affects every owner equally
				return nil, err
			}
			zap.S().Errorw("fan-out failed for owner, continuing",
				"ownerId", ownerID,
				"error", err,
			)
			report = models.DispatchReport{
				OwnerID:  ownerID,
				Reason:   models.ReasonFailed,
				Outcomes: []models.TokenOutcome{},
			}
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// SendToGroup resolves group membership through the external capability and
// then behaves exactly like SendToUsers
func (o *Orchestrator) SendToGroup(ctx context.Context, groupID string, notification models.Notification) ([]models.DispatchReport, error) {
	members, err := o.Groups.MembersOf(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return o.SendToUsers(ctx, members, notification)
}
