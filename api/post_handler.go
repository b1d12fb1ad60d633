package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/mymedicos/discuss-backend/models"
	"github.com/mymedicos/discuss-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type postHandler struct {
	responder Responder
	logger    zerolog.Logger
	posts     *services.PostService
}

func newPostHandler(posts *services.PostService) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()

	return postHandler{
		responder: NewResponder(logger),
		logger:    logger,
		posts:     posts,
	}
}

// createPost creates an answer, a flashcard or a long-form post
// @Summary Create post
// @Description The kind is chosen by the flashcard and post flags; with neither set the post is an answer to question.
// @Tags Posts
// @Accept json
// @Produce json
// @Param post body createPostRequest true "Post"
// @Success 201 {object} models.PostView
// @Failure 400 {object} ErrorResponse "Fields missing for the requested kind"
// @Failure 404 {object} ErrorResponse "Answered question not found"
// @Router /posts [post]
func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPostRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		input := services.NewPost{
			Body:      req.Body,
			Title:     req.Title,
			Tags:      req.Tags,
			ReadTime:  req.ReadTime,
			Flashcard: req.Flashcard,
			Post:      req.Post,
		}
		if req.Question != nil {
			// validated as a uuid by the DTO
			questionID := uuid.MustParse(*req.Question)
			input.Question = &questionID
		}

		post, err := h.posts.Create(r.Context(), callerUID(r.Context()), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Debug().Str("postID", post.ID.String()).Str("kind", string(post.Kind)).Msg("post created")
		h.responder.WriteSuccess(w, http.StatusCreated, post, "Post created successfully")
	}
}

// feed serves the long-form and flashcard feeds
func (h postHandler) feed(kind models.PostKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.posts.Feed(r.Context(), kind, callerUID(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, posts, "Posts fetched successfully")
	}
}

// @Summary Post detail
// @Tags Posts
// @Param postID path string true "Post ID" format(uuid)
// @Success 200 {object} models.PostView
// @Failure 404 {object} ErrorResponse "Post not found"
// @Router /posts/{postID} [get]
func (h postHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.Detail(r.Context(), id, callerUID(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, post, "Post fetched successfully")
	}
}

// @Summary Update post
// @Tags Posts
// @Param postID path string true "Post ID" format(uuid)
// @Param patch body updatePostRequest true "Fields to change"
// @Failure 400 {object} ErrorResponse "Field not applicable to the post kind"
// @Failure 403 {object} ErrorResponse "Caller is not the author"
// @Router /posts/{postID} [patch]
func (h postHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req updatePostRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.posts.Update(r.Context(), id, callerUID(r.Context()), models.PostPatch{
			Title:    req.Title,
			Body:     req.Body,
			ReadTime: req.ReadTime,
			Tags:     req.Tags,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, post, "Post updated successfully")
	}
}

// @Summary Delete post
// @Tags Posts
// @Param postID path string true "Post ID" format(uuid)
// @Router /posts/{postID} [delete]
func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.posts.Delete(r.Context(), id, callerUID(r.Context())); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, nil, "Post deleted successfully")
	}
}

// likePost toggles the caller's like
// @Summary Like or unlike post
// @Tags Posts
// @Param postID path string true "Post ID" format(uuid)
// @Success 200 {object} services.LikeResult
// @Router /posts/{postID}/like [patch]
func (h postHandler) likePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.posts.ToggleLike(r.Context(), id, callerUID(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, result, result.Message())
	}
}
