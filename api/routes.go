package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/mymedicos/discuss-backend/models"
)

// setupForumRoutes mounts the forum API. Reads are public, with the caller
// attached when a credential is present; writes require authentication.
func setupForumRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	users := handlers.userHandler
	questions := handlers.questionHandler
	posts := handlers.postHandler
	comments := handlers.commentHandler

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/users/{uid}/questions", users.questionsByUser())
		r.Get("/users/{uid}/comments", users.commentsByUser())
		r.Get("/users/{uid}/posts", users.postsByUser(models.KindLongForm, "Posts fetched successfully"))
		r.Get("/users/{uid}/answers", users.postsByUser(models.KindAnswer, "Answers fetched successfully"))
		r.Get("/users/{uid}/flashcards", users.postsByUser(models.KindFlashcard, "Flashcards fetched successfully"))

		r.Get("/questions/feed", questions.feed())
		r.Get("/questions/tags", questions.questionsByTags())

		r.Get("/posts/{postID}/comments", comments.commentsForPost())
	})

	// Optionally authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.optional)

		r.Get("/questions/{questionID}", questions.getQuestion())

		r.Get("/posts/feed", posts.feed(models.KindLongForm))
		r.Get("/posts/flashcards/feed", posts.feed(models.KindFlashcard))
		r.Get("/posts/{postID}", posts.getPost())
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Post("/users/login", users.login())

		r.Post("/questions", questions.createQuestion())
		r.Get("/questions/my-questions", questions.myQuestions())
		r.Patch("/questions/{questionID}", questions.updateQuestion())
		r.Delete("/questions/{questionID}", questions.deleteQuestion())

		r.Post("/posts", posts.createPost())
		r.Patch("/posts/{postID}", posts.updatePost())
		r.Delete("/posts/{postID}", posts.deletePost())
		r.Patch("/posts/{postID}/like", posts.likePost())
		r.Post("/posts/{postID}/comments", comments.createComment())

		r.Patch("/comments/{commentID}", comments.updateComment())
		r.Delete("/comments/{commentID}", comments.deleteComment())
	})
}
