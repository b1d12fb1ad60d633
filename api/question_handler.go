package api

import (
	"net/http"

	"github.com/mymedicos/discuss-backend/models"
	"github.com/mymedicos/discuss-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type questionHandler struct {
	responder Responder
	logger    zerolog.Logger
	questions *services.QuestionService
}

func newQuestionHandler(questions *services.QuestionService) questionHandler {
	logger := log.With().Str("handlerName", "questionHandler").Logger()

	return questionHandler{
		responder: NewResponder(logger),
		logger:    logger,
		questions: questions,
	}
}

// createQuestion creates a question authored by the caller
// @Summary Create question
// @Tags Questions
// @Accept json
// @Produce json
// @Param question body createQuestionRequest true "Question"
// @Success 201 {object} models.QuestionView
// @Failure 400 {object} ErrorResponse "Missing title or body"
// @Router /questions [post]
func (h questionHandler) createQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createQuestionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		question, err := h.questions.Create(r.Context(), callerUID(r.Context()), services.NewQuestion{
			Title: req.Title,
			Body:  req.Body,
			Tags:  req.Tags,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Debug().Str("questionID", question.ID.String()).Msg("question created")
		h.responder.WriteSuccess(w, http.StatusCreated, question, "Question created successfully")
	}
}

// @Summary Caller's questions
// @Tags Questions
// @Router /questions/my-questions [get]
func (h questionHandler) myQuestions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := h.questions.ByAuthor(r.Context(), callerUID(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, questions, "Questions fetched successfully")
	}
}

// questionsByTags returns questions carrying any of the requested tags
// @Summary Questions by tag
// @Tags Questions
// @Param tags query string true "Comma separated tags"
// @Failure 400 {object} ErrorResponse "No tags supplied"
// @Router /questions/tags [get]
func (h questionHandler) questionsByTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := h.questions.ByTags(r.Context(), queryList(r, "tags"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, questions, "Questions fetched successfully")
	}
}

// @Summary Recent questions
// @Tags Questions
// @Router /questions/feed [get]
func (h questionHandler) feed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := h.questions.Feed(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, questions, "Questions fetched successfully")
	}
}

// getQuestion returns a question with its answers
// @Summary Question detail
// @Tags Questions
// @Param questionID path string true "Question ID" format(uuid)
// @Success 200 {object} services.QuestionDetail
// @Failure 404 {object} ErrorResponse "Question not found"
// @Router /questions/{questionID} [get]
func (h questionHandler) getQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		detail, err := h.questions.Detail(r.Context(), id, callerUID(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, detail, "Question fetched successfully")
	}
}

// @Summary Update question
// @Tags Questions
// @Param questionID path string true "Question ID" format(uuid)
// @Param patch body updateQuestionRequest true "Fields to change"
// @Failure 403 {object} ErrorResponse "Caller is not the author"
// @Router /questions/{questionID} [patch]
func (h questionHandler) updateQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req updateQuestionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		question, err := h.questions.Update(r.Context(), id, callerUID(r.Context()), models.QuestionPatch{
			Title: req.Title,
			Body:  req.Body,
			Tags:  req.Tags,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, question, "Question updated successfully")
	}
}

// @Summary Delete question
// @Tags Questions
// @Param questionID path string true "Question ID" format(uuid)
// @Router /questions/{questionID} [delete]
func (h questionHandler) deleteQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.questions.Delete(r.Context(), id, callerUID(r.Context())); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, nil, "Question deleted successfully")
	}
}
