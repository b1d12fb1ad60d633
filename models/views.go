package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthorSummary is the public part of a user profile joined into content views.
type AuthorSummary struct {
	UID      string  `json:"uid"`
	Name     string  `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	PhotoURL *string `json:"photoURL,omitempty"`
}

func NewAuthorSummary(uid string, user *User) AuthorSummary {
	if user == nil {
		return AuthorSummary{UID: uid}
	}
	return AuthorSummary{UID: user.UID, Name: user.Name, Email: user.Email, PhotoURL: user.PhotoURL}
}

type QuestionView struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	Tags      []string      `json:"tags"`
	Edited    bool          `json:"edited"`
	Author    AuthorSummary `json:"author"`
	PostCount int64         `json:"postCount"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type PostView struct {
	ID           uuid.UUID     `json:"id"`
	Kind         PostKind      `json:"kind"`
	Flashcard    bool          `json:"flashcard"`
	Post         bool          `json:"post"`
	QuestionID   *uuid.UUID    `json:"question,omitempty"`
	Title        *string       `json:"title,omitempty"`
	Body         string        `json:"body"`
	Tags         []string      `json:"tags"`
	ReadTime     *string       `json:"readtime,omitempty"`
	Edited       bool          `json:"edited"`
	Author       AuthorSummary `json:"author"`
	LikeCount    int64         `json:"likeCount"`
	CommentCount int64         `json:"commentCount"`
	Liked        bool          `json:"liked"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type CommentView struct {
	ID            uuid.UUID      `json:"id"`
	PostID        uuid.UUID      `json:"post"`
	ParentComment *uuid.UUID     `json:"parentComment"`
	Body          string         `json:"body"`
	Edited        bool           `json:"edited"`
	Author        AuthorSummary  `json:"author"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	Replies       []*CommentView `json:"replies,omitempty"`
}
