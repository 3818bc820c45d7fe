// Package tenant derives the storage keys that partition data between gyms.
// Isolation rests entirely on these keys: there is no tenant column anywhere.
package tenant

import (
	"regexp"
	"strings"
)

const (
	// Prefix of every key owned by the application.
	Prefix = "f2fit"

	// PlatformID is the reserved tenant of platform-wide data.
	PlatformID = "super_admin_gym"

	rosterKey  = "f2fit_users"
	tariffsKey = "f2fit_default_tariffs"
)

// Kind names a collection within a tenant.
type Kind string

const (
	KindMembers       Kind = "members"
	KindCoaches       Kind = "coaches"
	KindClasses       Kind = "classes"
	KindEquipment     Kind = "equipment"
	KindSubscriptions Kind = "subscriptions"
	KindPlans         Kind = "subscription_plans"

	// KindConversations indexes the contacts a gym holds a conversation with.
	KindConversations Kind = "conversations"

	// Platform kinds, only addressable through PlatformID.
	KindGyms    Kind = "gyms"
	KindTariffs Kind = "tariffs"
)

// GymKinds lists every collection owned by a gym tenant.
var GymKinds = []Kind{KindMembers, KindCoaches, KindClasses, KindEquipment, KindSubscriptions, KindPlans}

// Tenant IDs other than PlatformID may not contain '_' so that the tenant part
// of a key is always unambiguous.
var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ValidTenantID reports whether id can address gym-scoped data.
func ValidTenantID(id string) bool {
	return id != "auth" && tenantIDPattern.MatchString(id)
}

// Key returns the storage key of kind for tenantID. It returns false when the
// pair has no key: a blank tenant, an unknown kind under the platform tenant,
// or a platform kind under a gym tenant.
func Key(kind Kind, tenantID string) (string, bool) {
	if strings.TrimSpace(tenantID) == "" || kind == "" {
		return "", false
	}
	if tenantID == PlatformID {
		switch kind {
		case KindGyms:
			return rosterKey, true
		case KindTariffs:
			return tariffsKey, true
		default:
			return "", false
		}
	}
	if kind == KindGyms || kind == KindTariffs || !ValidTenantID(tenantID) {
		return "", false
	}
	return Prefix + "_" + tenantID + "_" + string(kind), true
}

// ConversationKey addresses the message log between a gym and one contact.
func ConversationKey(tenantID, contactID string) (string, bool) {
	if tenantID == PlatformID || !tenantIDPattern.MatchString(contactID) {
		return "", false
	}
	return Key(Kind("chat_"+contactID), tenantID)
}

// SessionKey addresses a persisted session record.
func SessionKey(sessionID string) string {
	return Prefix + "_auth_" + sessionID
}
