package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID        uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;not null"`
	Title     string        `json:"title" gorm:"type:text;not null"`
	Body      string        `json:"body" gorm:"type:text;not null"`
	AuthorUID string        `json:"author" gorm:"type:text;not null;index"`
	Deleted   bool          `json:"deleted" gorm:"not null;default:false;index"`
	Edited    bool          `json:"edited" gorm:"not null;default:false"`
	Tags      []QuestionTag `json:"-" gorm:"foreignKey:QuestionID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (q *Question) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// TagValues returns the tags in their stored order.
func (q Question) TagValues() []string {
	return tagValues(q.Tags, func(t QuestionTag) (int, string) { return t.Position, t.Value })
}

// QuestionTag keeps one tag of a question at its position in the tag list.
type QuestionTag struct {
	QuestionID uuid.UUID `json:"questionId" gorm:"type:uuid;primaryKey;autoIncrement:false"`
	Position   int       `json:"position" gorm:"primaryKey;autoIncrement:false"`
	Value      string    `json:"value" gorm:"type:text;not null;index"`
}

func NewQuestionTags(values []string) []QuestionTag {
	tags := make([]QuestionTag, 0, len(values))
	for i, v := range values {
		tags = append(tags, QuestionTag{Position: i, Value: v})
	}
	return tags
}

// QuestionPatch carries the fields of a partial question update; nil means unchanged.
type QuestionPatch struct {
	Title *string
	Body  *string
	Tags  *[]string
}

func (p QuestionPatch) Empty() bool {
	return p.Title == nil && p.Body == nil && p.Tags == nil
}
