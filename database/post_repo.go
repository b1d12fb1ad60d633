package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

func (r *PostRepo) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Tags", byPosition).
		Where("deleted = ?", false).
		Order("created_at DESC")
}

func (r *PostRepo) Add(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return errs.NewDatabaseError("create", "post", err)
	}
	return nil
}

// FindByID returns the post whatever its deleted flag, or nil when absent.
func (r *PostRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDFromSource is FindByID pinned to the primary.
func (r *PostRepo) FindByIDFromSource(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(dbresolver.Write), id)
}

func (r *PostRepo) findByID(tx *gorm.DB, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := tx.Preload("Tags", byPosition).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "post", err)
	}
	return &post, nil
}

// FindByQuestion returns the non-deleted answers of a question.
func (r *PostRepo) FindByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.live(ctx).Where("question_id = ?", questionID).Find(&posts).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "posts", err)
	}
	return posts, nil
}

func (r *PostRepo) FindByKind(ctx context.Context, kind models.PostKind) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.live(ctx).Where("kind = ?", kind).Find(&posts).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "posts", err)
	}
	return posts, nil
}

func (r *PostRepo) FindByAuthorAndKind(ctx context.Context, authorUID string, kind models.PostKind) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.live(ctx).Where("author_uid = ? AND kind = ?", authorUID, kind).Find(&posts).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "posts", err)
	}
	return posts, nil
}

// Update applies the non-nil fields of patch and marks the post edited.
func (r *PostRepo) Update(ctx context.Context, id uuid.UUID, patch models.PostPatch) error {
	fields := map[string]any{"edited": true}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Body != nil {
		fields["body"] = *patch.Body
	}
	if patch.ReadTime != nil {
		fields["read_time"] = *patch.ReadTime
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}
		if patch.Tags == nil {
			return nil
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		tags := models.NewPostTags(*patch.Tags)
		if len(tags) == 0 {
			return nil
		}
		for i := range tags {
			tags[i].PostID = id
		}
		return tx.Create(&tags).Error
	})
	if err != nil {
		return errs.NewDatabaseError("update", "post", err)
	}
	return nil
}

func (r *PostRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("deleted", true).Error
	if err != nil {
		return errs.NewDatabaseError("delete", "post", err)
	}
	return nil
}

// ToggleLike adds uid to the post's liker set, or removes it when already
// present. The post row is locked for the duration of the transaction so
// toggles on one post are serialized. liked reports the resulting membership.
func (r *PostRepo) ToggleLike(ctx context.Context, postID uuid.UUID, uid string) (liked bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ? AND deleted = ?", postID, false).
			First(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewNotFoundError("post not found")
		}
		if err != nil {
			return err
		}

		removed := tx.Where("post_id = ? AND user_uid = ?", postID, uid).Delete(&models.PostLike{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected > 0 {
			liked = false
			return nil
		}

		liked = true
		return tx.Create(&models.PostLike{PostID: postID, UserUID: uid}).Error
	})
	if err != nil {
		var apiErr *errs.ApiErr
		if errors.As(err, &apiErr) {
			return false, apiErr
		}
		return false, errs.NewTransactionFailedError("toggle like on post", err)
	}
	return liked, nil
}

// LikerUIDs returns the liker set of a post.
func (r *PostRepo) LikerUIDs(ctx context.Context, postID uuid.UUID) ([]string, error) {
	var uids []string
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id = ?", postID).
		Order("user_uid").
		Pluck("user_uid", &uids).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "post likes", err)
	}
	return uids, nil
}

type countRow struct {
	RefID uuid.UUID
	Total int64
}

func toCounts(rows []countRow) map[uuid.UUID]int64 {
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.RefID] = row.Total
	}
	return counts
}

// LikeCounts returns the liker set size per post. Posts without likes are absent.
func (r *PostRepo) LikeCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []countRow
	if len(postIDs) == 0 {
		return toCounts(rows), nil
	}
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Select("post_id AS ref_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errs.NewDatabaseError("count", "post likes", err)
	}
	return toCounts(rows), nil
}

// LikedBy returns the subset of postIDs that uid has liked.
func (r *PostRepo) LikedBy(ctx context.Context, postIDs []uuid.UUID, uid string) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool)
	if len(postIDs) == 0 || uid == "" {
		return liked, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id IN ? AND user_uid = ?", postIDs, uid).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "post likes", err)
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// CountByQuestions returns the number of non-deleted answers per question.
func (r *PostRepo) CountByQuestions(ctx context.Context, questionIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []countRow
	if len(questionIDs) == 0 {
		return toCounts(rows), nil
	}
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("question_id AS ref_id, COUNT(*) AS total").
		Where("question_id IN ? AND deleted = ?", questionIDs, false).
		Group("question_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errs.NewDatabaseError("count", "posts", err)
	}
	return toCounts(rows), nil
}
