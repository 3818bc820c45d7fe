package domain

// SubscriptionState is the display status derived from a subscription's end date.
type SubscriptionState string

const (
	SubscriptionNone         SubscriptionState = "none"
	SubscriptionActive       SubscriptionState = "active"
	SubscriptionExpiringSoon SubscriptionState = "expiring_soon"
	SubscriptionExpired      SubscriptionState = "expired"
)

// ExpiringSoonDays is the window, inclusive, in which an active subscription is flagged.
const ExpiringSoonDays = 7

// DaysLeft is the signed number of days from today to end.
func DaysLeft(end, today Date) int {
	return today.DaysUntil(end)
}

// SubscriptionStatus classifies a subscription ending on end as seen on today.
func SubscriptionStatus(end, today Date) SubscriptionState {
	switch d := DaysLeft(end, today); {
	case d < 0:
		return SubscriptionExpired
	case d <= ExpiringSoonDays:
		return SubscriptionExpiringSoon
	default:
		return SubscriptionActive
	}
}

// GymExpired is true when the gym has no end date or it lies before today.
func GymExpired(end, today Date) bool {
	return end.IsZero() || end.Before(today)
}

// LatestSubscription returns the member's subscription with the greatest end date.
func LatestSubscription(subs []Subscription, memberID string) (Subscription, bool) {
	var latest Subscription
	found := false
	for _, s := range subs {
		if s.MemberID != memberID {
			continue
		}
		if !found || s.EndDate.After(latest.EndDate) {
			latest = s
			found = true
		}
	}
	return latest, found
}

// MemberSubscriptionStatus derives a member's status from their latest subscription.
func MemberSubscriptionStatus(subs []Subscription, memberID string, today Date) SubscriptionState {
	latest, ok := LatestSubscription(subs, memberID)
	if !ok {
		return SubscriptionNone
	}
	return SubscriptionStatus(latest.EndDate, today)
}

// HasCurrentSubscription reports whether any of the member's subscriptions
// ends today or later.
func HasCurrentSubscription(subs []Subscription, memberID string, today Date) bool {
	for _, s := range subs {
		if s.MemberID == memberID && !s.EndDate.Before(today) {
			return true
		}
	}
	return false
}
