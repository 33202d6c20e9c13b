// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/blog-api/internal/auth"
	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
	"github.com/carterperez-dev/templates/blog-api/internal/role"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

type RoleResolver interface {
	Default(ctx context.Context) (*role.Role, error)
	ByName(ctx context.Context, name string) (*role.Role, error)
}

// SeenMarker records that a user was seen recently so last_seen is not
// rewritten on every request.
type SeenMarker interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type Service struct {
	repo      Repository
	roles     RoleResolver
	seen      SeenMarker
	seenEvery time.Duration
}

func NewService(repo Repository, roles RoleResolver) *Service {
	return &Service{repo: repo, roles: roles}
}

// WithSeenThrottle limits last_seen writes to one per interval per user.
func (s *Service) WithSeenThrottle(marker SeenMarker, interval time.Duration) *Service {
	if interval > 0 {
		s.seen = marker
		s.seenEvery = interval
	}
	return s
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Create stores a new unconfirmed account under the default role, or the
// Administrator role when requested.
func (s *Service) Create(
	ctx context.Context,
	account auth.NewAccount,
) (*auth.UserInfo, error) {
	var (
		r   *role.Role
		err error
	)
	if account.Administrator {
		r, err = s.roles.ByName(ctx, permission.RoleAdministrator)
	} else {
		r, err = s.roles.Default(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve role: %w", err)
	}

	email := strings.ToLower(account.Email)
	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		RoleID:       r.ID,
		RoleName:     r.Name,
		Permissions:  r.Permissions,
		AvatarHash:   GravatarHash(email),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Confirm(ctx context.Context, userID string) error {
	return s.repo.SetConfirmed(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) UpdateEmail(
	ctx context.Context,
	userID, email string,
) error {
	email = strings.ToLower(email)
	return s.repo.UpdateEmail(ctx, userID, email, GravatarHash(email))
}

// Touch refreshes last_seen. A marker store failure falls through to the
// database write.
func (s *Service) Touch(ctx context.Context, userID string) error {
	if s.seen != nil {
		first, err := s.seen.MarkOnce(ctx, "seen:user:"+userID, s.seenEvery)
		if err == nil && !first {
			return nil
		}
	}

	return s.repo.Touch(ctx, userID)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete soft deletes the account. Its credentials stop authenticating
// and its tokens no longer resolve to a user.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update profile: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.AboutMe != nil {
		user.AboutMe = *req.AboutMe
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateAccount applies an administrator's edit to any account.
func (s *Service) UpdateAccount(
	ctx context.Context,
	id string,
	req AdminUpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
		user.AvatarHash = GravatarHash(user.Email)
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Confirmed != nil {
		user.Confirmed = *req.Confirmed
	}
	if req.Role != nil {
		r, err := s.roles.ByName(ctx, *req.Role)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, fmt.Errorf(
					"update account: unknown role %q: %w",
					*req.Role,
					core.ErrInvalidInput,
				)
			}
			return nil, err
		}
		user.RoleID = r.ID
		user.RoleName = r.Name
		user.Permissions = r.Permissions
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.AboutMe != nil {
		user.AboutMe = *req.AboutMe
	}

	if err := s.repo.UpdateAccount(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Follow(ctx context.Context, followerID, followedID string) error {
	if followerID == followedID {
		return ErrSelfFollow
	}

	if _, err := s.repo.GetByID(ctx, followedID); err != nil {
		return err
	}

	return s.repo.Follow(ctx, followerID, followedID)
}

func (s *Service) Unfollow(ctx context.Context, followerID, followedID string) error {
	if _, err := s.repo.GetByID(ctx, followedID); err != nil {
		return err
	}

	return s.repo.Unfollow(ctx, followerID, followedID)
}

func (s *Service) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	return s.repo.IsFollowing(ctx, followerID, followedID)
}

func (s *Service) Followers(
	ctx context.Context,
	id string,
	page, perPage int,
) ([]Follow, int, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.repo.Followers(ctx, id, perPage, (page-1)*perPage)
}

func (s *Service) Following(
	ctx context.Context,
	id string,
	page, perPage int,
) ([]Follow, int, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.repo.Following(ctx, id, perPage, (page-1)*perPage)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Confirmed:    u.Confirmed,
		Permissions:  u.Permissions,
	}
}

var _ auth.UserProvider = (*Service)(nil)
