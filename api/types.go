package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	userHandler     userHandler
	questionHandler questionHandler
	postHandler     postHandler
	commentHandler  commentHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	StatusCode int    `json:"statusCode" example:"400"`
	Message    string `json:"message" example:"title is required: missing required field"`
	Success    bool   `json:"success" example:"false"`
	Field      string `json:"field,omitempty" example:"title"`
	Details    string `json:"details,omitempty" example:"Additional error details"`
}

type createQuestionRequest struct {
	Title string   `json:"title" validate:"required,max=300"`
	Body  string   `json:"body" validate:"required"`
	Tags  []string `json:"tags" validate:"omitempty,dive,required,max=64"`
}

type updateQuestionRequest struct {
	Title *string   `json:"title" validate:"omitnil,min=1,max=300"`
	Body  *string   `json:"body" validate:"omitnil,min=1"`
	Tags  *[]string `json:"tags" validate:"omitnil,dive,required,max=64"`
}

// createPostRequest covers all three kinds; the kind rules are enforced by
// services.PostService.
type createPostRequest struct {
	Question  *string  `json:"question" validate:"omitnil,uuid"`
	Body      string   `json:"body" validate:"required"`
	Title     *string  `json:"title" validate:"omitnil,max=300"`
	Tags      []string `json:"tags" validate:"omitempty,dive,required,max=64"`
	ReadTime  *string  `json:"readtime"`
	Flashcard bool     `json:"flashcard"`
	Post      bool     `json:"post"`
}

type updatePostRequest struct {
	Title    *string   `json:"title" validate:"omitnil,min=1,max=300"`
	Body     *string   `json:"body"`
	ReadTime *string   `json:"readtime" validate:"omitnil,min=1"`
	Tags     *[]string `json:"tags" validate:"omitnil,dive,required,max=64"`
}

type createCommentRequest struct {
	Body          string  `json:"body" validate:"required"`
	ParentComment *string `json:"parentComment" validate:"omitnil,uuid"`
}

type updateCommentRequest struct {
	Body *string `json:"body" validate:"omitnil,min=1"`
}
