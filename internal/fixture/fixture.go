// Package fixture generates fake blog posts for seeding and tests.
package fixture

import (
	"github.com/brianvoe/gofakeit/v6"

	"github.com/inkwell/inkwell/internal/model"
)

// Generator produces fake posts. It is not safe for concurrent use.
type Generator struct {
	faker *gofakeit.Faker
}

// New returns a Generator. The same seed yields the same posts.
func New(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Post returns one fake post without an ID or creation time.
func (g *Generator) Post() *model.BlogPost {
	return &model.BlogPost{
		Author: model.Author{
			FirstName: g.faker.FirstName(),
			LastName:  g.faker.LastName(),
		},
		Title:   g.faker.Sentence(6),
		Content: g.faker.Paragraph(3, 4, 12, "\n\n"),
	}
}

// Posts returns n fake posts.
func (g *Generator) Posts(n int) []*model.BlogPost {
	if n < 0 {
		n = 0
	}
	posts := make([]*model.BlogPost, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, g.Post())
	}
	return posts
}
