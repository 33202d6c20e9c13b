// AngelaMos | 2026
// permission.go

// Package permission defines the capability bitmask shared by roles and
// request identities, and the canonical role table seeded at startup.
package permission

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

type Permission uint32

const (
	Follow     Permission = 0x01
	Comment    Permission = 0x02
	Write      Permission = 0x04
	Moderate   Permission = 0x08
	Administer Permission = 0x80
)

// None is the empty set carried by anonymous identities.
const None Permission = 0

var names = []struct {
	perm Permission
	name string
}{
	{Follow, "follow"},
	{Comment, "comment"},
	{Write, "write"},
	{Moderate, "moderate"},
	{Administer, "administer"},
}

// Has reports whether every bit of perm is set in p.
func (p Permission) Has(perm Permission) bool {
	return p&perm == perm
}

func (p Permission) Add(perm Permission) Permission {
	return p | perm
}

func (p Permission) Remove(perm Permission) Permission {
	return p &^ perm
}

func (p Permission) Names() []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if p.Has(n.perm) {
			out = append(out, n.name)
		}
	}
	return out
}

func (p Permission) String() string {
	if p == None {
		return "none"
	}
	return strings.Join(p.Names(), "|")
}

func (p Permission) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *Permission) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*p = Permission(v)
	case int32:
		*p = Permission(v)
	case nil:
		*p = None
	default:
		return fmt.Errorf("scan permission: unsupported type %T", src)
	}
	return nil
}

const (
	RoleUser          = "User"
	RoleModerator     = "Moderator"
	RoleAdministrator = "Administrator"
)

type RoleSpec struct {
	Name        string
	Permissions Permission
	Default     bool
}

// Roles is the canonical role table. Exactly one entry is the default.
var Roles = []RoleSpec{
	{
		Name:        RoleUser,
		Permissions: Follow | Comment | Write,
		Default:     true,
	},
	{
		Name:        RoleModerator,
		Permissions: Follow | Comment | Write | Moderate,
	},
	{
		Name:        RoleAdministrator,
		Permissions: 0xff,
	},
}

func DefaultRole() RoleSpec {
	for _, r := range Roles {
		if r.Default {
			return r
		}
	}
	panic("permission: canonical role table has no default role")
}
