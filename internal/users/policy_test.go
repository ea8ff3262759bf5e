package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanMutateLeadPolicyTable(t *testing.T) {
	admin := &User{ID: "u-admin", Role: RoleAdmin, Status: StatusActive}
	manager := &User{ID: "u-mgr", Role: RoleManager, Status: StatusActive}
	bd := &User{ID: "u-bd", Role: RoleBDExecutive, Status: StatusActive}

	tests := []struct {
		name     string
		actor    *User
		locked   bool
		lockedBy string
		allowed  bool
	}{
		{"admin unlocked", admin, false, "", true},
		{"admin locked by other", admin, true, "u-bd", true},
		{"manager locked by other", manager, true, "u-bd", true},
		{"bd unlocked", bd, false, "", true},
		{"bd locked by self", bd, true, "u-bd", true},
		{"bd locked by other", bd, true, "u-admin", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanMutateLead(tt.actor, tt.locked, tt.lockedBy)
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestInactiveUserDeniedEverything(t *testing.T) {
	inactive := &User{ID: "u1", Role: RoleAdmin, Status: StatusInactive}

	assert.False(t, CanMutateLead(inactive, false, "").Allowed)
	assert.False(t, CanDeleteLead(inactive))
	assert.False(t, CanDeleteRemark(inactive, "u1"))
}

func TestDeletePolicies(t *testing.T) {
	admin := &User{ID: "a", Role: RoleAdmin, Status: StatusActive}
	manager := &User{ID: "m", Role: RoleManager, Status: StatusActive}
	bd := &User{ID: "b", Role: RoleBDExecutive, Status: StatusActive}

	assert.True(t, CanDeleteLead(admin))
	assert.False(t, CanDeleteLead(manager))
	assert.False(t, CanDeleteLead(bd))

	// Admin deletes any remark, a BD Executive only their own.
	assert.True(t, CanDeleteRemark(admin, "b"))
	assert.False(t, CanDeleteRemark(manager, "m"))
	assert.True(t, CanDeleteRemark(bd, "b"))
	assert.False(t, CanDeleteRemark(bd, "other-bd"))
}
