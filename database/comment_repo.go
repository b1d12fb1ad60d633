package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

func (r *CommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return errs.NewDatabaseError("create", "comment", err)
	}
	return nil
}

// FindByID returns the comment whatever its deleted flag, or nil when absent.
func (r *CommentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDFromSource is FindByID pinned to the primary.
func (r *CommentRepo) FindByIDFromSource(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(dbresolver.Write), id)
}

func (r *CommentRepo) findByID(tx *gorm.DB, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := tx.First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comment", err)
	}
	return &comment, nil
}

// FindByPost returns the non-deleted comments of a post, oldest first.
func (r *CommentRepo) FindByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND deleted = ?", postID, false).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comments", err)
	}
	return comments, nil
}

// FindByAuthor returns the non-deleted comments of an author, newest first.
func (r *CommentRepo) FindByAuthor(ctx context.Context, authorUID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("author_uid = ? AND deleted = ?", authorUID, false).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comments", err)
	}
	return comments, nil
}

func (r *CommentRepo) Update(ctx context.Context, id uuid.UUID, patch models.CommentPatch) error {
	fields := map[string]any{"edited": true}
	if patch.Body != nil {
		fields["body"] = *patch.Body
	}
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return errs.NewDatabaseError("update", "comment", err)
	}
	return nil
}

func (r *CommentRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("deleted", true).Error
	if err != nil {
		return errs.NewDatabaseError("delete", "comment", err)
	}
	return nil
}

// CountByPosts returns the number of non-deleted comments per post.
func (r *CommentRepo) CountByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []countRow
	if len(postIDs) == 0 {
		return toCounts(rows), nil
	}
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id AS ref_id, COUNT(*) AS total").
		Where("post_id IN ? AND deleted = ?", postIDs, false).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errs.NewDatabaseError("count", "comments", err)
	}
	return toCounts(rows), nil
}
