package database

import (
	"gorm.io/gorm"
)

type Database struct {
	userRepo     *UserRepo
	legacyRepo   *LegacyProfileRepo
	questionRepo *QuestionRepo
	postRepo     *PostRepo
	commentRepo  *CommentRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		userRepo:     NewUserRepo(db),
		legacyRepo:   NewLegacyProfileRepo(db),
		questionRepo: NewQuestionRepo(db),
		postRepo:     NewPostRepo(db),
		commentRepo:  NewCommentRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) LegacyProfileRepo() *LegacyProfileRepo {
	return d.legacyRepo
}

func (d Database) QuestionRepo() *QuestionRepo {
	return d.questionRepo
}

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}
