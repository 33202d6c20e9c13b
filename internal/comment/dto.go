// AngelaMos | 2026
// dto.go

package comment

import (
	"time"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/post"
)

type CommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

type ModerationRequest struct {
	Disabled *bool `json:"disabled" validate:"required"`
}

type CommentResponse struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	PostURL        string    `json:"post_url"`
	Body           string    `json:"body"`
	BodyHTML       string    `json:"body_html"`
	Disabled       bool      `json:"disabled"`
	Timestamp      time.Time `json:"timestamp"`
	AuthorURL      string    `json:"author_url"`
	AuthorUsername string    `json:"author"`
}

type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Prev     *string           `json:"prev"`
	Next     *string           `json:"next"`
	Count    int               `json:"count"`
}

func URL(id string) string {
	return core.APIPrefix + "/comments/" + id
}

func ToCommentResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:             c.ID,
		URL:            URL(c.ID),
		PostURL:        post.URL(c.PostID),
		Body:           c.Body,
		BodyHTML:       c.BodyHTML,
		Disabled:       c.Disabled,
		Timestamp:      c.CreatedAt,
		AuthorURL:      core.APIPrefix + "/users/" + c.AuthorID,
		AuthorUsername: c.AuthorUsername,
	}
}

func ToCommentResponseList(comments []Comment) []CommentResponse {
	responses := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, ToCommentResponse(&comments[i]))
	}
	return responses
}
