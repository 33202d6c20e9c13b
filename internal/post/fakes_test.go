// AngelaMos | 2026
// fakes_test.go

package post

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

type memoryPosts struct {
	mu      sync.Mutex
	posts   map[string]*Post
	follows map[string][]string
	clock   time.Time
}

func newMemoryPosts() *memoryPosts {
	return &memoryPosts{
		posts:   make(map[string]*Post),
		follows: make(map[string][]string),
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryPosts) Create(_ context.Context, p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clock = m.clock.Add(time.Minute)
	p.CreatedAt = m.clock
	p.AuthorUsername = "user-" + p.AuthorID
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memoryPosts) GetByID(_ context.Context, id string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryPosts) Update(_ context.Context, p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.posts[p.ID]
	if !ok {
		return core.ErrNotFound
	}
	stored.Body = p.Body
	stored.BodyHTML = p.BodyHTML
	return nil
}

func (m *memoryPosts) List(_ context.Context, limit, offset int) ([]Post, int, error) {
	return m.filter(func(*Post) bool { return true }, limit, offset)
}

func (m *memoryPosts) ListByAuthor(
	_ context.Context,
	authorID string,
	limit, offset int,
) ([]Post, int, error) {
	return m.filter(func(p *Post) bool { return p.AuthorID == authorID }, limit, offset)
}

func (m *memoryPosts) Timeline(
	_ context.Context,
	userID string,
	limit, offset int,
) ([]Post, int, error) {
	authors := map[string]bool{userID: true}
	for _, id := range m.follows[userID] {
		authors[id] = true
	}
	return m.filter(func(p *Post) bool { return authors[p.AuthorID] }, limit, offset)
}

func (m *memoryPosts) filter(
	keep func(*Post) bool,
	limit, offset int,
) ([]Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []Post
	for _, p := range m.posts {
		if keep(p) {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return []Post{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}
