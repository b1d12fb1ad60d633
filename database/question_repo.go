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

type QuestionRepo struct {
	db *gorm.DB
}

func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *QuestionRepo) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Tags", byPosition).
		Where("deleted = ?", false).
		Order("created_at DESC")
}

// Add inserts a question together with its tags.
func (r *QuestionRepo) Add(ctx context.Context, question *models.Question) error {
	if err := r.db.WithContext(ctx).Create(question).Error; err != nil {
		return errs.NewDatabaseError("create", "question", err)
	}
	return nil
}

// FindByID returns the question whatever its deleted flag, or nil when absent.
func (r *QuestionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDFromSource is FindByID pinned to the primary, for reads that must
// observe the caller's own writes.
func (r *QuestionRepo) FindByIDFromSource(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(dbresolver.Write), id)
}

func (r *QuestionRepo) findByID(tx *gorm.DB, id uuid.UUID) (*models.Question, error) {
	var question models.Question
	err := tx.Preload("Tags", byPosition).First(&question, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "question", err)
	}
	return &question, nil
}

// FindRecent returns the newest non-deleted questions.
func (r *QuestionRepo) FindRecent(ctx context.Context, limit int) ([]*models.Question, error) {
	var questions []*models.Question
	if err := r.live(ctx).Limit(limit).Find(&questions).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "questions", err)
	}
	return questions, nil
}

// FindByAnyTag returns the non-deleted questions carrying at least one of tags.
func (r *QuestionRepo) FindByAnyTag(ctx context.Context, tags []string) ([]*models.Question, error) {
	var questions []*models.Question
	tagged := r.db.Model(&models.QuestionTag{}).Select("question_id").Where("value IN ?", tags)
	if err := r.live(ctx).Where("id IN (?)", tagged).Find(&questions).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "questions", err)
	}
	return questions, nil
}

func (r *QuestionRepo) FindByAuthor(ctx context.Context, authorUID string) ([]*models.Question, error) {
	var questions []*models.Question
	if err := r.live(ctx).Where("author_uid = ?", authorUID).Find(&questions).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "questions", err)
	}
	return questions, nil
}

// Update applies the non-nil fields of patch and marks the question edited.
func (r *QuestionRepo) Update(ctx context.Context, id uuid.UUID, patch models.QuestionPatch) error {
	fields := map[string]any{"edited": true}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Body != nil {
		fields["body"] = *patch.Body
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Question{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}
		if patch.Tags == nil {
			return nil
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionTag{}).Error; err != nil {
			return err
		}
		tags := models.NewQuestionTags(*patch.Tags)
		if len(tags) == 0 {
			return nil
		}
		for i := range tags {
			tags[i].QuestionID = id
		}
		return tx.Create(&tags).Error
	})
	if err != nil {
		return errs.NewDatabaseError("update", "question", err)
	}
	return nil
}

func (r *QuestionRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).Update("deleted", true).Error
	if err != nil {
		return errs.NewDatabaseError("delete", "question", err)
	}
	return nil
}
