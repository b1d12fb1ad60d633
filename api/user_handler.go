package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"github.com/mymedicos/discuss-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	identity  *services.IdentityService
	questions *services.QuestionService
	posts     *services.PostService
	comments  *services.CommentService
}

func newUserHandler(identity *services.IdentityService, questions *services.QuestionService, posts *services.PostService, comments *services.CommentService) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		identity:  identity,
		questions: questions,
		posts:     posts,
		comments:  comments,
	}
}

// login returns the caller's profile, provisioned from the legacy directory on first sight
// @Summary Log in
// @Tags Users
// @Produce json
// @Success 201 {object} models.User "Profile created by this login"
// @Success 200 {object} models.User "Existing profile"
// @Failure 401 {object} ErrorResponse "Missing or invalid credential"
// @Failure 404 {object} ErrorResponse "Phone number not in the legacy directory"
// @Router /users/login [post]
func (h userHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, created := ctxGetUser(r.Context())
		if user == nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		if created {
			h.responder.WriteSuccess(w, http.StatusCreated, user, "User created successfully")
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, user, "User logged in successfully")
	}
}

// @Summary List a user's questions
// @Tags Users
// @Param uid path string true "User uid"
// @Router /users/{uid}/questions [get]
func (h userHandler) questionsByUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := h.questions.ByAuthor(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, questions, "Questions fetched successfully")
	}
}

// @Summary List a user's comments
// @Tags Users
// @Param uid path string true "User uid"
// @Router /users/{uid}/comments [get]
func (h userHandler) commentsByUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comments, err := h.comments.ByAuthor(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, comments, "Comments fetched successfully")
	}
}

// postsByUser serves the answers, flashcards and long-form posts listings
func (h userHandler) postsByUser(kind models.PostKind, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.ByAuthor(r.Context(), chi.URLParam(r, "uid"), kind)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, posts, message)
	}
}
