package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"github.com/mymedicos/discuss-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type commentHandler struct {
	responder Responder
	logger    zerolog.Logger
	comments  *services.CommentService
}

func newCommentHandler(comments *services.CommentService) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder: NewResponder(logger),
		logger:    logger,
		comments:  comments,
	}
}

// commentsForPost lists the live comments of a post, oldest first
// @Summary Post comments
// @Tags Comments
// @Param postID path string true "Post ID" format(uuid)
// @Param threaded query bool false "Nest replies under their parent"
// @Router /posts/{postID}/comments [get]
func (h commentHandler) commentsForPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathID(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		threaded := false
		if raw := r.URL.Query().Get("threaded"); raw != "" {
			if threaded, err = strconv.ParseBool(raw); err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("threaded", "must be a boolean"))
				return
			}
		}

		comments, err := h.comments.ForPost(r.Context(), postID, threaded)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, comments, "Comments fetched successfully")
	}
}

// @Summary Comment on post
// @Tags Comments
// @Param postID path string true "Post ID" format(uuid)
// @Param comment body createCommentRequest true "Comment"
// @Failure 404 {object} ErrorResponse "Post or parent comment not found"
// @Router /posts/{postID}/comments [post]
func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathID(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req createCommentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		input := services.NewComment{Body: req.Body}
		if req.ParentComment != nil {
			parentID := uuid.MustParse(*req.ParentComment)
			input.ParentComment = &parentID
		}

		comment, err := h.comments.Create(r.Context(), postID, callerUID(r.Context()), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusCreated, comment, "Comment created successfully")
	}
}

// @Summary Update comment
// @Tags Comments
// @Param commentID path string true "Comment ID" format(uuid)
// @Router /comments/{commentID} [patch]
func (h commentHandler) updateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "commentID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req updateCommentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.comments.Update(r.Context(), id, callerUID(r.Context()), models.CommentPatch{Body: req.Body})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, comment, "Comment updated successfully")
	}
}

// @Summary Delete comment
// @Tags Comments
// @Param commentID path string true "Comment ID" format(uuid)
// @Router /comments/{commentID} [delete]
func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "commentID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.comments.Delete(r.Context(), id, callerUID(r.Context())); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, nil, "Comment deleted successfully")
	}
}
