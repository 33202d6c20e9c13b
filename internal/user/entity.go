// AngelaMos | 2026
// entity.go

package user

import (
	"crypto/md5" //nolint:gosec // gravatar addresses are md5 by protocol
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

type User struct {
	ID           string                `db:"id"`
	Email        string                `db:"email"`
	Username     string                `db:"username"`
	PasswordHash string                `db:"password_hash"`
	Confirmed    bool                  `db:"confirmed"`
	RoleID       int64                 `db:"role_id"`
	RoleName     string                `db:"role_name"`
	Permissions  permission.Permission `db:"permissions"`
	Name         string                `db:"name"`
	Location     string                `db:"location"`
	AboutMe      string                `db:"about_me"`
	AvatarHash   string                `db:"avatar_hash"`
	PostCount    int                   `db:"post_count"`
	MemberSince  time.Time             `db:"member_since"`
	LastSeen     time.Time             `db:"last_seen"`
	DeletedAt    *time.Time            `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) Can(p permission.Permission) bool {
	return u.Permissions.Has(p)
}

func (u *User) IsAdministrator() bool {
	return u.Can(permission.Administer)
}

// Gravatar returns the avatar URL for the user at the given pixel size.
func (u *User) Gravatar(size int) string {
	hash := u.AvatarHash
	if hash == "" {
		hash = GravatarHash(u.Email)
	}
	return fmt.Sprintf(
		"https://secure.gravatar.com/avatar/%s?s=%d&d=identicon&r=g",
		hash,
		size,
	)
}

func GravatarHash(email string) string {
	//nolint:gosec // G401: gravatar protocol mandates md5
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// Follow is one edge of the follow graph seen from the listed user.
type Follow struct {
	UserID   string    `db:"user_id"`
	Username string    `db:"username"`
	Since    time.Time `db:"created_at"`
}
