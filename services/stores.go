// Package services holds the forum's business rules: identity resolution,
// ownership checks, mutations and the composition of read views.
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/mymedicos/discuss-backend/models"
)

// The stores below are implemented by the repositories in package database.
// A nil record with a nil error means "not found". The FromSource lookups
// bypass read replicas; updates and deletes read through them.

type UserStore interface {
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	FindByUIDs(ctx context.Context, uids []string) ([]*models.User, error)
	Add(ctx context.Context, user *models.User) error
}

type LegacyDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*models.LegacyProfile, error)
}

type QuestionStore interface {
	Add(ctx context.Context, question *models.Question) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	FindByIDFromSource(ctx context.Context, id uuid.UUID) (*models.Question, error)
	FindRecent(ctx context.Context, limit int) ([]*models.Question, error)
	FindByAnyTag(ctx context.Context, tags []string) ([]*models.Question, error)
	FindByAuthor(ctx context.Context, authorUID string) ([]*models.Question, error)
	Update(ctx context.Context, id uuid.UUID, patch models.QuestionPatch) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type PostStore interface {
	Add(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindByIDFromSource(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.Post, error)
	FindByKind(ctx context.Context, kind models.PostKind) ([]*models.Post, error)
	FindByAuthorAndKind(ctx context.Context, authorUID string, kind models.PostKind) ([]*models.Post, error)
	Update(ctx context.Context, id uuid.UUID, patch models.PostPatch) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ToggleLike(ctx context.Context, postID uuid.UUID, uid string) (bool, error)
	LikeCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	LikedBy(ctx context.Context, postIDs []uuid.UUID, uid string) (map[uuid.UUID]bool, error)
	CountByQuestions(ctx context.Context, questionIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type CommentStore interface {
	Add(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	FindByIDFromSource(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	FindByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	FindByAuthor(ctx context.Context, authorUID string) ([]*models.Comment, error)
	Update(ctx context.Context, id uuid.UUID, patch models.CommentPatch) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	CountByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}
