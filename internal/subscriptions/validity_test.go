package subscriptions

import (
	"testing"
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/db/models"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
)

func TestIsValid(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	past := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(72 * time.Hour)
	exact := now

	cases := []struct {
		name      string
		status    enums.SubscriptionStatus
		periodEnd *time.Time
		want      bool
	}{
		{"expired trial", enums.SubscriptionStatusTrial, &past, false},
		{"running trial", enums.SubscriptionStatusTrial, &future, true},
		{"trial ending now", enums.SubscriptionStatusTrial, &exact, true},
		{"trial without period end", enums.SubscriptionStatusTrial, nil, false},
		{"active without period end", enums.SubscriptionStatusActive, nil, true},
		{"active with lapsed period end", enums.SubscriptionStatusActive, &past, true},
		{"past due", enums.SubscriptionStatusPastDue, &future, false},
		{"canceled", enums.SubscriptionStatusCanceled, &future, false},
		{"unknown status", enums.SubscriptionStatus("paused"), &future, false},
		{"empty status", "", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValid(tc.status, tc.periodEnd, now); got != tc.want {
				t.Fatalf("IsValid(%q) = %v, want %v", tc.status, got, tc.want)
			}
		})
	}
}

func TestIsValidActiveIgnoresClock(t *testing.T) {
	for _, now := range []time.Time{{}, time.Unix(0, 0), time.Now(), time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)} {
		if !IsValid(enums.SubscriptionStatusActive, nil, now) {
			t.Fatalf("active should be valid at %v", now)
		}
	}
}

func TestIsValidSubscription(t *testing.T) {
	now := time.Now()
	if IsValidSubscription(nil, now) {
		t.Fatal("missing subscription should be invalid")
	}
	end := now.Add(time.Hour)
	sub := &models.OrgSubscription{Status: enums.SubscriptionStatusTrial, PeriodEnd: &end}
	if !IsValidSubscription(sub, now) {
		t.Fatal("running trial should be valid")
	}
	if IsValidSubscription(sub, end.Add(time.Nanosecond)) {
		t.Fatal("trial should lapse right after its period end")
	}
}
