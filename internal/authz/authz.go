package authz

import (
	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/calebmonroy/stocktrail-backend/pkg/tags"
)

// TagsAllowed reports whether an item with itemTags matches the allow-list.
// An empty allow-list grants everything; otherwise one shared tag suffices.
// This is the discovery check, looser than the manager scope gate below.
func TagsAllowed(allowed, itemTags []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, tag := range itemTags {
		for _, a := range allowed {
			if tag == a {
				return true
			}
		}
	}
	return false
}

// Scope is a manager's tag grant. The zero value is unrestricted, matching
// a NULL tags column; a restricted scope (including the explicit empty one)
// only allows items whose entire tag set falls inside the grant.
type Scope struct {
	restricted bool
	tags       map[string]struct{}
}

// Unrestricted returns the scope that allows every item.
func Unrestricted() Scope {
	return Scope{}
}

// Restricted returns a scope limited to the given tags. An empty or nil
// slice yields the deny-all scope; NULL columns must go through ScopeFor
// instead so unset and empty stay distinct.
func Restricted(grant []string) Scope {
	set := make(map[string]struct{}, len(grant))
	for _, tag := range grant {
		set[tag] = struct{}{}
	}
	return Scope{restricted: true, tags: set}
}

// ScopeFor maps a persisted tags column onto a Scope: NULL is unrestricted,
// anything else (empty string included) is a restricted grant.
func ScopeFor(column *string) Scope {
	if column == nil {
		return Unrestricted()
	}
	return Restricted(tags.Split(column))
}

// IsRestricted reports whether the scope carries an explicit grant.
func (s Scope) IsRestricted() bool {
	return s.restricted
}

// Allows reports whether every tag on the item is covered by the grant.
// A restricted scope denies untagged items: a scoped manager has no claim
// over an item whose tag surface it cannot account for.
func (s Scope) Allows(itemTags []string) bool {
	if !s.restricted {
		return true
	}
	if len(s.tags) == 0 {
		return false
	}
	if len(itemTags) == 0 {
		return false
	}
	for _, tag := range itemTags {
		if _, ok := s.tags[tag]; !ok {
			return false
		}
	}
	return true
}

// ManagerAllowsTags gates manager-initiated writes against the item's tag
// list using the manager's persisted scope column.
func ManagerAllowsTags(manager *models.Manager, itemTags []string) bool {
	if manager == nil {
		return false
	}
	return ScopeFor(manager.Tags).Allows(itemTags)
}

// ManagerCanAccessItem reports whether the manager's scope covers the item.
// Inventory linkage is checked first and fails closed.
func ManagerCanAccessItem(manager *models.Manager, item *models.Item) bool {
	if manager == nil || item == nil {
		return false
	}
	if manager.InventoryID != item.InventoryID {
		return false
	}
	return ManagerAllowsTags(manager, tags.Split(item.Tags))
}
