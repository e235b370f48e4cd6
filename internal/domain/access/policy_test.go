package access

import (
	"testing"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy_Authorize(t *testing.T) {
	policy := DefaultPolicy()
	owner := Principal{UserID: uuid.New()}
	other := Principal{UserID: uuid.New()}
	admin := Principal{UserID: uuid.New(), IsSuperAdmin: true}

	tests := []struct {
		name      string
		principal Principal
		resource  Resource
		action    Action
		ownerID   uuid.UUID
		allowed   bool
	}{
		{"owner reads own invoice", owner, ResourceInvoice, ActionRead, owner.UserID, true},
		{"other reads invoice", other, ResourceInvoice, ActionRead, owner.UserID, false},
		{"admin reads invoice", admin, ResourceInvoice, ActionRead, owner.UserID, true},
		{"other adds item", other, ResourceInvoice, ActionAddItem, owner.UserID, false},
		{"owner deletes item", owner, ResourceInvoice, ActionDeleteItem, owner.UserID, true},
		{"user reads self", owner, ResourceUser, ActionRead, owner.UserID, true},
		{"user updates other user", owner, ResourceUser, ActionUpdate, other.UserID, false},
		{"user lists users", owner, ResourceUser, ActionList, uuid.Nil, false},
		{"admin lists users", admin, ResourceUser, ActionList, uuid.Nil, true},
		{"user deletes self", owner, ResourceUser, ActionDelete, owner.UserID, false},
		{"admin deletes user", admin, ResourceUser, ActionDelete, owner.UserID, true},
		{"any user edits customer", other, ResourceCustomer, ActionUpdate, uuid.Nil, true},
		{"pay other user's invoice", other, ResourcePayment, ActionCreate, owner.UserID, false},
		{"pay own invoice", owner, ResourcePayment, ActionCreate, owner.UserID, true},
		{"anonymous reads customer", Principal{}, ResourceCustomer, ActionRead, uuid.Nil, false},
		{"unknown action", admin, ResourceCustomer, ActionAddItem, uuid.Nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Authorize(tt.principal, tt.resource, tt.action, tt.ownerID)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, shared.ErrForbidden)
			}
		})
	}
}

func TestDefaultPolicy_SetSuperAdmin(t *testing.T) {
	policy := DefaultPolicy()
	user := Principal{UserID: uuid.New()}

	err := policy.Authorize(user, ResourceUser, ActionSetSuperAdmin, user.UserID)

	assert.Equal(t, ErrAdminFlagNotPermitted, err)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, "Not enough permissions to modify admin status", err.Error())
}

func TestPolicy_ListScope(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("regular user is scoped to own records", func(t *testing.T) {
		user := Principal{UserID: uuid.New()}

		scope, err := policy.ListScope(user, ResourceInvoice)

		require.NoError(t, err)
		require.NotNil(t, scope)
		assert.Equal(t, user.UserID, *scope)
	})

	t.Run("super admin sees everything", func(t *testing.T) {
		scope, err := policy.ListScope(Principal{UserID: uuid.New(), IsSuperAdmin: true}, ResourcePayment)

		require.NoError(t, err)
		assert.Nil(t, scope)
	})

	t.Run("unscoped resource", func(t *testing.T) {
		scope, err := policy.ListScope(Principal{UserID: uuid.New()}, ResourceCustomer)

		require.NoError(t, err)
		assert.Nil(t, scope)
	})

	t.Run("denied list", func(t *testing.T) {
		_, err := policy.ListScope(Principal{UserID: uuid.New()}, ResourceUser)

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestNewPolicy_MissingEntryDenies(t *testing.T) {
	policy := NewPolicy(Entry{Resource: ResourceCustomer, Action: ActionRead, Rule: AnyAuthenticated})
	p := Principal{UserID: uuid.New(), IsSuperAdmin: true}

	assert.True(t, policy.Allowed(p, ResourceCustomer, ActionRead, uuid.Nil))
	assert.False(t, policy.Allowed(p, ResourceCustomer, ActionDelete, uuid.Nil))
}
