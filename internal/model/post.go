// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// Author is the byline of a blog post.
type Author struct {
	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName" bson:"lastName"`
}

// Name returns the author's display name.
func (a Author) Name() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// IsZero reports whether neither name part is set.
func (a Author) IsZero() bool {
	return strings.TrimSpace(a.FirstName) == "" && strings.TrimSpace(a.LastName) == ""
}

// BlogPost is a blog article record.
type BlogPost struct {
	ID      string    `json:"id"`
	Author  Author    `json:"author"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
}

// AuthorName returns the display string exposed by the API.
func (p *BlogPost) AuthorName() string {
	return p.Author.Name()
}

// Clone returns a copy that shares no state with p.
func (p *BlogPost) Clone() *BlogPost {
	c := *p
	return &c
}

// PostUpdate carries the updatable fields of a post.
// Nil fields are left unchanged.
type PostUpdate struct {
	Title   *string
	Content *string
	Author  *Author
}

// Apply copies the set fields of u onto p.
func (u PostUpdate) Apply(p *BlogPost) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Author != nil {
		p.Author = *u.Author
	}
}

// IsEmpty reports whether the update changes nothing.
func (u PostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Author == nil
}
