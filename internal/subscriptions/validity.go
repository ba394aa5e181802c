package subscriptions

import (
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
)

// IsValid reports whether an organization in the given billing state may use
// the app at now. A trial without a period end is invalid. The caller fixes
// now once per decision.
func IsValid(status enums.SubscriptionStatus, periodEnd *time.Time, now time.Time) bool {
	switch status {
	case enums.SubscriptionStatusActive, enums.SubscriptionStatusTrial:
	default:
		return false
	}
	if !status.RequiresPeriodEnd() {
		return true
	}
	return periodEnd != nil && !periodEnd.Before(now)
}

// IsValidSubscription applies IsValid to a stored row; a missing row is invalid.
func IsValidSubscription(sub *models.OrgSubscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	return IsValid(sub.Status, sub.PeriodEnd, now)
}
