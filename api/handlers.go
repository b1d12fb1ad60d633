package api

import (
	"github.com/mymedicos/discuss-backend/database"
	"github.com/mymedicos/discuss-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, identity *services.IdentityService) *routeHandlers {
	views := services.NewComposer(database.UserRepo(), database.PostRepo(), database.CommentRepo())

	questions := services.NewQuestionService(database.QuestionRepo(), database.PostRepo(), views)
	posts := services.NewPostService(database.PostRepo(), database.QuestionRepo(), views)
	comments := services.NewCommentService(database.CommentRepo(), database.PostRepo(), views)

	return &routeHandlers{
		userHandler:     newUserHandler(identity, questions, posts, comments),
		questionHandler: newQuestionHandler(questions),
		postHandler:     newPostHandler(posts),
		commentHandler:  newCommentHandler(comments),
	}
}
