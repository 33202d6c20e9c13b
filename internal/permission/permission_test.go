// AngelaMos | 2026
// permission_test.go

package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHas(t *testing.T) {
	p := Follow | Comment | Write

	assert.True(t, p.Has(Follow))
	assert.True(t, p.Has(Follow|Write))
	assert.False(t, p.Has(Moderate))
	assert.False(t, p.Has(Follow|Administer))
	assert.False(t, None.Has(Follow))
}

func TestAddRemove(t *testing.T) {
	p := None.Add(Follow).Add(Moderate)
	assert.Equal(t, Follow|Moderate, p)
	assert.Equal(t, Moderate, p.Remove(Follow))
}

func TestString(t *testing.T) {
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "follow|comment|write", (Follow | Comment | Write).String())
}

func TestScan(t *testing.T) {
	var p Permission
	require.NoError(t, p.Scan(int64(0x0f)))
	assert.True(t, p.Has(Moderate))

	require.Error(t, p.Scan("nope"))
}

func TestCanonicalRolesHaveExactlyOneDefault(t *testing.T) {
	defaults := 0
	for _, r := range Roles {
		if r.Default {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
	assert.Equal(t, RoleUser, DefaultRole().Name)
}

func TestAdministratorHoldsEveryPermission(t *testing.T) {
	var admin Permission
	for _, r := range Roles {
		if r.Name == RoleAdministrator {
			admin = r.Permissions
		}
	}

	for _, n := range names {
		assert.True(t, admin.Has(n.perm), n.name)
	}
}

func TestDefaultRoleCannotModerateOrAdminister(t *testing.T) {
	def := DefaultRole().Permissions
	assert.True(t, def.Has(Follow))
	assert.False(t, def.Has(Moderate))
	assert.False(t, def.Has(Administer))
}
