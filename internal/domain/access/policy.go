// Package access holds the authorization policy evaluated before every read
// or mutation of a user-owned record.
package access

import (
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
)

// Resource names a protected entity type
type Resource string

const (
	ResourceUser     Resource = "user"
	ResourceCustomer Resource = "customer"
	ResourceInvoice  Resource = "invoice"
	ResourcePayment  Resource = "payment"
)

// Action names an operation on a resource
type Action string

const (
	ActionList          Action = "list"
	ActionCreate        Action = "create"
	ActionRead          Action = "read"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionAddItem       Action = "add_item"
	ActionUpdateItem    Action = "update_item"
	ActionDeleteItem    Action = "delete_item"
	ActionSetSuperAdmin Action = "set_super_admin"
)

// ErrAdminFlagNotPermitted is returned when a regular user tries to change is_super_admin
var ErrAdminFlagNotPermitted = shared.NewDomainError("FORBIDDEN", "Not enough permissions to modify admin status")

// Principal is the authenticated caller
type Principal struct {
	UserID       uuid.UUID
	IsSuperAdmin bool
}

// Rule decides whether principal may act on a record owned by ownerID.
// ownerID is uuid.Nil for actions that are not tied to a record.
type Rule func(principal Principal, ownerID uuid.UUID) bool

// AnyAuthenticated allows every identified caller
func AnyAuthenticated(principal Principal, _ uuid.UUID) bool {
	return principal.UserID != uuid.Nil
}

// SuperAdminOnly allows super-admins only
func SuperAdminOnly(principal Principal, _ uuid.UUID) bool {
	return principal.UserID != uuid.Nil && principal.IsSuperAdmin
}

// OwnerOrSuperAdmin allows the record owner and super-admins
func OwnerOrSuperAdmin(principal Principal, ownerID uuid.UUID) bool {
	if principal.UserID == uuid.Nil {
		return false
	}
	return principal.IsSuperAdmin || principal.UserID == ownerID
}

// Entry is one row of the policy table
type Entry struct {
	Resource Resource
	Action   Action
	Rule     Rule
	// Scoped list entries restrict non-admin callers to their own records.
	Scoped bool
	// Denied overrides the error returned when Rule fails.
	Denied error
}

type key struct {
	resource Resource
	action   Action
}

// Policy is a lookup table of rules keyed by (resource, action).
// Pairs without an entry are denied.
type Policy struct {
	entries map[key]Entry
}

// NewPolicy builds a policy from entries. Later entries replace earlier ones.
func NewPolicy(entries ...Entry) *Policy {
	p := &Policy{entries: make(map[key]Entry, len(entries))}
	for _, e := range entries {
		p.entries[key{e.Resource, e.Action}] = e
	}
	return p
}

// DefaultEntries is the rule set of the invoicing API
func DefaultEntries() []Entry {
	entries := []Entry{
		{Resource: ResourceUser, Action: ActionList, Rule: SuperAdminOnly},
		{Resource: ResourceUser, Action: ActionRead, Rule: OwnerOrSuperAdmin},
		{Resource: ResourceUser, Action: ActionUpdate, Rule: OwnerOrSuperAdmin},
		{Resource: ResourceUser, Action: ActionDelete, Rule: SuperAdminOnly},
		{Resource: ResourceUser, Action: ActionSetSuperAdmin, Rule: SuperAdminOnly, Denied: ErrAdminFlagNotPermitted},

		{Resource: ResourceInvoice, Action: ActionList, Rule: AnyAuthenticated, Scoped: true},
		{Resource: ResourceInvoice, Action: ActionCreate, Rule: AnyAuthenticated},

		{Resource: ResourcePayment, Action: ActionList, Rule: AnyAuthenticated, Scoped: true},
		{Resource: ResourcePayment, Action: ActionCreate, Rule: OwnerOrSuperAdmin},
		{Resource: ResourcePayment, Action: ActionRead, Rule: OwnerOrSuperAdmin},
		{Resource: ResourcePayment, Action: ActionUpdate, Rule: OwnerOrSuperAdmin},
		{Resource: ResourcePayment, Action: ActionDelete, Rule: OwnerOrSuperAdmin},
	}
	for _, a := range []Action{ActionList, ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
		entries = append(entries, Entry{Resource: ResourceCustomer, Action: a, Rule: AnyAuthenticated})
	}
	for _, a := range []Action{ActionRead, ActionUpdate, ActionDelete, ActionAddItem, ActionUpdateItem, ActionDeleteItem} {
		entries = append(entries, Entry{Resource: ResourceInvoice, Action: a, Rule: OwnerOrSuperAdmin})
	}
	return entries
}

// DefaultPolicy returns the policy built from DefaultEntries
func DefaultPolicy() *Policy {
	return NewPolicy(DefaultEntries()...)
}

// Allowed reports whether principal may perform action on a resource owned by ownerID
func (p *Policy) Allowed(principal Principal, resource Resource, action Action, ownerID uuid.UUID) bool {
	e, ok := p.entries[key{resource, action}]
	if !ok || e.Rule == nil {
		return false
	}
	return e.Rule(principal, ownerID)
}

// Authorize returns nil when allowed, otherwise the entry's denial error or shared.ErrForbidden
func (p *Policy) Authorize(principal Principal, resource Resource, action Action, ownerID uuid.UUID) error {
	if p.Allowed(principal, resource, action, ownerID) {
		return nil
	}
	if e, ok := p.entries[key{resource, action}]; ok && e.Denied != nil {
		return e.Denied
	}
	return shared.ErrForbidden
}

// ListScope authorizes a list and returns the owner filter to apply.
// A nil filter means the caller sees every record.
func (p *Policy) ListScope(principal Principal, resource Resource) (*uuid.UUID, error) {
	if err := p.Authorize(principal, resource, ActionList, uuid.Nil); err != nil {
		return nil, err
	}
	e := p.entries[key{resource, ActionList}]
	if !e.Scoped || principal.IsSuperAdmin {
		return nil, nil
	}
	owner := principal.UserID
	return &owner, nil
}
