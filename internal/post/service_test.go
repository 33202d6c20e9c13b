// AngelaMos | 2026
// service_test.go

package post

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

func TestCreateRendersMarkdown(t *testing.T) {
	svc := NewService(newMemoryPosts(), 20)

	p, err := svc.Create(context.Background(), "u1", "*hello*")
	require.NoError(t, err)
	assert.Equal(t, "*hello*", p.Body)
	assert.Equal(t, "<p><em>hello</em></p>", p.BodyHTML)
	assert.NotEmpty(t, p.ID)
}

func TestUpdatePermissions(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryPosts(), 20)

	p, err := svc.Create(ctx, "author", "first")
	require.NoError(t, err)

	userPerms := permission.Follow | permission.Comment | permission.Write

	_, err = svc.Update(ctx, p.ID, "someone-else", userPerms, "hijack")
	assert.ErrorIs(t, err, core.ErrForbidden)

	updated, err := svc.Update(ctx, p.ID, "author", userPerms, "second")
	require.NoError(t, err)
	assert.Equal(t, "<p>second</p>", updated.BodyHTML)

	updated, err = svc.Update(ctx, p.ID, "admin", permission.Administer, "third")
	require.NoError(t, err)
	assert.Equal(t, "third", updated.Body)

	_, err = svc.Update(ctx, "missing", "author", userPerms, "x")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestTimelinePagination(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPosts()
	repo.follows["u1"] = []string{"u2"}
	svc := NewService(repo, 2)

	for _, author := range []string{"u1", "u2", "u3", "u2"} {
		_, err := svc.Create(ctx, author, "post by "+author)
		require.NoError(t, err)
	}

	first, total, err := svc.Timeline(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, first, 2)
	assert.Equal(t, "u2", first[0].AuthorID)

	second, _, err := svc.Timeline(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "u1", second[0].AuthorID)

	zero, _, err := svc.Timeline(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, first, zero)
}
