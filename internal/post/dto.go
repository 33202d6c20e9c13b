// AngelaMos | 2026
// dto.go

package post

import (
	"time"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

type PostRequest struct {
	Body string `json:"body" validate:"required,max=20000"`
}

type PostResponse struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	Body           string    `json:"body"`
	BodyHTML       string    `json:"body_html"`
	Timestamp      time.Time `json:"timestamp"`
	Author         string    `json:"author_url"`
	AuthorUsername string    `json:"author"`
	CommentsURL    string    `json:"comments_url"`
	CommentCount   int       `json:"comment_count"`
}

type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
	Prev  *string        `json:"prev"`
	Next  *string        `json:"next"`
	Count int            `json:"count"`
}

func URL(id string) string {
	return core.APIPrefix + "/posts/" + id
}

func ToPostResponse(p *Post) PostResponse {
	return PostResponse{
		ID:             p.ID,
		URL:            URL(p.ID),
		Body:           p.Body,
		BodyHTML:       p.BodyHTML,
		Timestamp:      p.CreatedAt,
		Author:         core.APIPrefix + "/users/" + p.AuthorID,
		AuthorUsername: p.AuthorUsername,
		CommentsURL:    URL(p.ID) + "/comments",
		CommentCount:   p.CommentCount,
	}
}

func ToPostResponseList(posts []Post) []PostResponse {
	responses := make([]PostResponse, 0, len(posts))
	for i := range posts {
		responses = append(responses, ToPostResponse(&posts[i]))
	}
	return responses
}
