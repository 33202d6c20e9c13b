// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	UpdateAccount(ctx context.Context, user *User) error
	SetConfirmed(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateEmail(ctx context.Context, id, email, avatarHash string) error
	Touch(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	Follow(ctx context.Context, followerID, followedID string) error
	Unfollow(ctx context.Context, followerID, followedID string) error
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	Followers(ctx context.Context, id string, limit, offset int) ([]Follow, int, error)
	Following(ctx context.Context, id string, limit, offset int) ([]Follow, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectUser = `
		SELECT u.id, u.email, u.username, u.password_hash, u.confirmed,
		       u.role_id, r.name AS role_name, r.permissions,
		       u.name, u.location, u.about_me, u.avatar_hash,
		       (SELECT COUNT(*) FROM posts p WHERE p.author_id = u.id) AS post_count,
		       u.member_since, u.last_seen, u.deleted_at
		FROM users u
		JOIN roles r ON r.id = u.role_id`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, role_id, avatar_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING member_since, last_seen`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.RoleID,
		user.AvatarHash,
	).Scan(&user.MemberSince, &user.LastSeen)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) getOne(
	ctx context.Context,
	op, where string,
	arg any,
) (*User, error) {
	query := selectUser + `
		WHERE ` + where + ` AND u.deleted_at IS NULL`

	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "get user", "u.id = $1", id)
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.getOne(ctx, "get user by email", "u.email = $1", email)
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	return r.getOne(ctx, "get user by username", "u.username = $1", username)
}

func (r *repository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, location = $3, about_me = $4
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update profile", query,
		user.ID,
		user.Name,
		user.Location,
		user.AboutMe,
	)
}

// UpdateAccount writes the administrator-editable fields of user.
func (r *repository) UpdateAccount(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET email = $2, username = $3, confirmed = $4, role_id = $5,
		    name = $6, location = $7, about_me = $8, avatar_hash = $9
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update account", query,
		user.ID,
		user.Email,
		user.Username,
		user.Confirmed,
		user.RoleID,
		user.Name,
		user.Location,
		user.AboutMe,
		user.AvatarHash,
	)
}

func (r *repository) SetConfirmed(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET confirmed = TRUE
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "confirm user", query, id)
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

// UpdateEmail relies on the unique email index; a concurrent writer that
// claimed the address first surfaces as core.ErrDuplicateKey.
func (r *repository) UpdateEmail(
	ctx context.Context,
	id, email, avatarHash string,
) error {
	query := `
		UPDATE users
		SET email = $2, avatar_hash = $3
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "update email", query, id, email, avatarHash)
}

func (r *repository) Touch(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET last_seen = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "ping last seen", query, id)
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execOne(ctx, "delete user", query, id)
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, core.ErrDuplicateKey)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "u.deleted_at IS NULL")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(u.email ILIKE $%d OR u.username ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("r.name = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	if params.Confirmed != nil {
		conditions = append(conditions, fmt.Sprintf("u.confirmed = $%d", argIdx))
		args = append(args, *params.Confirmed)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users u JOIN roles r ON r.id = u.role_id WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY u.member_since DESC
		LIMIT $%d OFFSET $%d`,
		selectUser, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

// Follow is idempotent; following an already followed user is a no-op.
func (r *repository) Follow(
	ctx context.Context,
	followerID, followedID string,
) error {
	query := `
		INSERT INTO follows (follower_id, followed_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followed_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, followerID, followedID); err != nil {
		return fmt.Errorf("follow user: %w", err)
	}

	return nil
}

func (r *repository) Unfollow(
	ctx context.Context,
	followerID, followedID string,
) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`

	if _, err := r.db.ExecContext(ctx, query, followerID, followedID); err != nil {
		return fmt.Errorf("unfollow user: %w", err)
	}

	return nil
}

func (r *repository) IsFollowing(
	ctx context.Context,
	followerID, followedID string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, followerID, followedID); err != nil {
		return false, fmt.Errorf("check following: %w", err)
	}

	return exists, nil
}

func (r *repository) Followers(
	ctx context.Context,
	id string,
	limit, offset int,
) ([]Follow, int, error) {
	return r.listFollows(ctx, "followers", "followed_id", "follower_id", id, limit, offset)
}

func (r *repository) Following(
	ctx context.Context,
	id string,
	limit, offset int,
) ([]Follow, int, error) {
	return r.listFollows(ctx, "following", "follower_id", "followed_id", id, limit, offset)
}

func (r *repository) listFollows(
	ctx context.Context,
	op, matchCol, otherCol, id string,
	limit, offset int,
) ([]Follow, int, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM follows f
		JOIN users u ON u.id = f.%s
		WHERE f.%s = $1 AND u.deleted_at IS NULL`, otherCol, matchCol)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, id); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", op, err)
	}

	query := fmt.Sprintf(`
		SELECT u.id AS user_id, u.username, f.created_at
		FROM follows f
		JOIN users u ON u.id = f.%s
		WHERE f.%s = $1 AND u.deleted_at IS NULL
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3`, otherCol, matchCol)

	var follows []Follow
	if err := r.db.SelectContext(ctx, &follows, query, id, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", op, err)
	}

	return follows, total, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
