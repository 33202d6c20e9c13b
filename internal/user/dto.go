// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,max=64"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=64"`
	AboutMe  *string `json:"about_me,omitempty" validate:"omitempty,max=2000"`
}

// AdminUpdateUserRequest carries the fields an administrator may change on
// any account. Absent fields stay as they are.
type AdminUpdateUserRequest struct {
	Email     *string `json:"email,omitempty"     validate:"omitempty,email,max=64"`
	Username  *string `json:"username,omitempty"  validate:"omitempty,min=1,max=64,username"`
	Confirmed *bool   `json:"confirmed,omitempty"`
	Role      *string `json:"role,omitempty"      validate:"omitempty,oneof=User Moderator Administrator"`
	Name      *string `json:"name,omitempty"      validate:"omitempty,max=64"`
	Location  *string `json:"location,omitempty"  validate:"omitempty,max=64"`
	AboutMe   *string `json:"about_me,omitempty"  validate:"omitempty,max=2000"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID               string    `json:"id"`
	URL              string    `json:"url"`
	Username         string    `json:"username"`
	Name             string    `json:"name,omitempty"`
	Location         string    `json:"location,omitempty"`
	AboutMe          string    `json:"about_me,omitempty"`
	AvatarURL        string    `json:"avatar_url"`
	MemberSince      time.Time `json:"member_since"`
	LastSeen         time.Time `json:"last_seen"`
	PostsURL         string    `json:"posts_url"`
	FollowedPostsURL string    `json:"followed_posts_url"`
	PostCount        int       `json:"post_count"`
	IsFollowing      *bool     `json:"is_following,omitempty"`
}

// AccountResponse adds the private fields shown to the account owner and
// administrators.
type AccountResponse struct {
	UserResponse
	Email       string   `json:"email"`
	Confirmed   bool     `json:"confirmed"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type FollowResponse struct {
	User      string    `json:"user"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

type FollowListResponse struct {
	Follows []FollowResponse `json:"follows"`
	Prev    *string          `json:"prev"`
	Next    *string          `json:"next"`
	Count   int              `json:"count"`
}

type ListUsersParams struct {
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	Search    string `json:"search"`
	Role      string `json:"role"`
	Confirmed *bool  `json:"confirmed"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func userURL(id string) string {
	return core.APIPrefix + "/users/" + id
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		URL:              userURL(u.ID),
		Username:         u.Username,
		Name:             u.Name,
		Location:         u.Location,
		AboutMe:          u.AboutMe,
		AvatarURL:        u.Gravatar(100),
		MemberSince:      u.MemberSince,
		LastSeen:         u.LastSeen,
		PostsURL:         userURL(u.ID) + "/posts",
		FollowedPostsURL: userURL(u.ID) + "/timeline",
		PostCount:        u.PostCount,
	}
}

func ToAccountResponse(u *User) AccountResponse {
	return AccountResponse{
		UserResponse: ToUserResponse(u),
		Email:        u.Email,
		Confirmed:    u.Confirmed,
		Role:         u.RoleName,
		Permissions:  u.Permissions.Names(),
	}
}

func ToAccountResponseList(users []User) []AccountResponse {
	responses := make([]AccountResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToAccountResponse(&users[i]))
	}
	return responses
}

func ToFollowResponseList(follows []Follow) []FollowResponse {
	responses := make([]FollowResponse, 0, len(follows))
	for _, f := range follows {
		responses = append(responses, FollowResponse{
			User:      userURL(f.UserID),
			Username:  f.Username,
			Timestamp: f.Since,
		})
	}
	return responses
}
