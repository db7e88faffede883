package models

import "time"

// Post represents a single published blog entry.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Body      string    `json:"body"`
	ImgURL    string    `json:"imgUrl"`
	Author    string    `json:"author"`  // Display name shown on the post
	OwnerID   string    `json:"ownerId"` // Account allowed to edit or delete it
	CreatedAt time.Time `json:"createdAt"`
}

// Comment represents a visitor comment left on a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
