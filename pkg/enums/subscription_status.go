package enums

import (
	"fmt"
	"strings"
)

// SubscriptionStatus is the billing state of an organization.
type SubscriptionStatus string

const (
	SubscriptionStatusTrial    SubscriptionStatus = "trial"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// subscriptionStatusBounded marks statuses whose access ends at the period end.
var subscriptionStatusBounded = map[SubscriptionStatus]bool{
	SubscriptionStatusTrial:    true,
	SubscriptionStatusActive:   false,
	SubscriptionStatusPastDue:  false,
	SubscriptionStatusCanceled: false,
}

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) IsValid() bool {
	_, ok := subscriptionStatusBounded[s]
	return ok
}

// RequiresPeriodEnd reports whether the status only grants access up to a
// recorded period end.
func (s SubscriptionStatus) RequiresPeriodEnd() bool {
	return subscriptionStatusBounded[s]
}

// ParseSubscriptionStatus accepts any casing and surrounding whitespace.
func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	s := SubscriptionStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid subscription status %q", value)
	}
	return s, nil
}
