package commands

import (
	"github.com/marshallshelly/arrowquery/examples/blog/models"
	"github.com/marshallshelly/arrowquery/pkg/dsl"
	"github.com/marshallshelly/arrowquery/pkg/queryable"
	"github.com/marshallshelly/arrowquery/pkg/schema"
)

// scenario is one canned chain the explain and repl commands can
// compile without a live database connection: composition is pure,
// so a scenario only needs a query state, not an engine.
type scenario struct {
	Name  string
	Chain string
	State func() queryable.State
}

// scenarios lists the chains explain/repl demonstrate against the
// bundled blog example's entities.
func scenarios() []scenario {
	declareBlogEntities()

	return []scenario{
		{
			Name:  "editors",
			Chain: `users.Filter(u => u.Role == "editor").OrderByDescending("username")`,
			State: func() queryable.State {
				b := queryable.New(nil, schema.Default, models.User{}).
					Filter(func(u *models.User) bool { return u.Role == "editor" }).
					OrderByDescending("username")
				return b.GetState()
			},
		},
		{
			Name:  "popular-posts",
			Chain: `posts.Filter(p => p.Views > 10).Map(p => {title, views})`,
			State: func() queryable.State {
				b := queryable.New(nil, schema.Default, models.Post{}).
					Filter(func(p *models.Post) bool { return p.Views > 10 }).
					Map(func(p *models.Post) any {
						return map[string]any{"title": p.Title, "views": p.Views}
					})
				return b.GetState()
			},
		},
		{
			Name:  "users-with-posts",
			Chain: `users.Include("Posts").Map(u => {username, posts: u.posts.map(p => {title})})`,
			State: func() queryable.State {
				b := queryable.New(nil, schema.Default, models.User{}).
					Include("Posts").
					Map(func(u *models.User) any {
						return map[string]any{
							"username": u.Username,
							"posts": dsl.MapEach(u.Posts, func(p models.Post) any {
								return map[string]any{"title": p.Title}
							}),
						}
					})
				return b.GetState()
			},
		},
		{
			Name:  "paginated-posts",
			Chain: `posts.Skip(2).Take(2)`,
			State: func() queryable.State {
				b := queryable.New(nil, schema.Default, models.Post{}).
					Skip(2).
					Take(2)
				return b.GetState()
			},
		},
	}
}

func declareBlogEntities() {
	_ = schema.Declare(schema.Default, models.User{})
	_ = schema.Declare(schema.Default, models.Post{})
}
