package models

import "time"

type Post struct {
	ID        string
	Title     string
	Content   string
	ImageURL  string
	CreatorID string
	// Creator is populated by queries that join the author.
	Creator   *User
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostPage is one page of the reverse-chronological post listing.
type PostPage struct {
	Posts      []*Post
	TotalPosts int
}
