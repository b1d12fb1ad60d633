package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FeedSize is the number of questions in the recent-questions feed.
const FeedSize = 10

type QuestionService struct {
	questions QuestionStore
	posts     PostStore
	views     *Composer
	logger    zerolog.Logger
}

func NewQuestionService(questions QuestionStore, posts PostStore, views *Composer) *QuestionService {
	return &QuestionService{
		questions: questions,
		posts:     posts,
		views:     views,
		logger:    log.With().Str("service", "questions").Logger(),
	}
}

type NewQuestion struct {
	Title string
	Body  string
	Tags  []string
}

// QuestionDetail is a question together with its live answers.
type QuestionDetail struct {
	Question     models.QuestionView `json:"question"`
	RelatedPosts []models.PostView   `json:"relatedPosts"`
}

func (s *QuestionService) Create(ctx context.Context, callerUID string, input NewQuestion) (models.QuestionView, error) {
	if input.Title == "" {
		return models.QuestionView{}, errs.NewMissingRequiredFieldError("title")
	}
	if input.Body == "" {
		return models.QuestionView{}, errs.NewMissingRequiredFieldError("body")
	}

	question := &models.Question{
		Title:     input.Title,
		Body:      input.Body,
		AuthorUID: callerUID,
		Tags:      models.NewQuestionTags(input.Tags),
	}
	if err := s.questions.Add(ctx, question); err != nil {
		return models.QuestionView{}, err
	}

	s.logger.Info().Str("questionID", question.ID.String()).Str("author", callerUID).Msg("question created")
	return s.views.Question(ctx, question)
}

// live loads a question, treating soft-deleted questions as absent.
func (s *QuestionService) live(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return liveQuestion(s.questions.FindByID(ctx, id))
}

func (s *QuestionService) liveFromSource(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return liveQuestion(s.questions.FindByIDFromSource(ctx, id))
}

func liveQuestion(question *models.Question, err error) (*models.Question, error) {
	if err != nil {
		return nil, err
	}
	if question == nil || question.Deleted {
		return nil, errs.NewNotFoundError("question not found")
	}
	return question, nil
}

func (s *QuestionService) Detail(ctx context.Context, id uuid.UUID, viewerUID string) (QuestionDetail, error) {
	question, err := s.live(ctx, id)
	if err != nil {
		return QuestionDetail{}, err
	}

	view, err := s.views.Question(ctx, question)
	if err != nil {
		return QuestionDetail{}, err
	}

	posts, err := s.posts.FindByQuestion(ctx, id)
	if err != nil {
		return QuestionDetail{}, err
	}
	related, err := s.views.Posts(ctx, posts, viewerUID)
	if err != nil {
		return QuestionDetail{}, err
	}

	return QuestionDetail{Question: view, RelatedPosts: related}, nil
}

func (s *QuestionService) Feed(ctx context.Context) ([]models.QuestionView, error) {
	questions, err := s.questions.FindRecent(ctx, FeedSize)
	if err != nil {
		return nil, err
	}
	return s.views.Questions(ctx, questions)
}

// ByTags returns questions carrying any of tags, newest first.
func (s *QuestionService) ByTags(ctx context.Context, tags []string) ([]models.QuestionView, error) {
	if len(tags) == 0 {
		return nil, errs.NewBadRequestErrorWithField("tags are required", "tags", "provide a comma separated list of tags")
	}

	questions, err := s.questions.FindByAnyTag(ctx, tags)
	if err != nil {
		return nil, err
	}
	return s.views.Questions(ctx, questions)
}

func (s *QuestionService) ByAuthor(ctx context.Context, authorUID string) ([]models.QuestionView, error) {
	questions, err := s.questions.FindByAuthor(ctx, authorUID)
	if err != nil {
		return nil, err
	}
	return s.views.Questions(ctx, questions)
}

func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, callerUID string, patch models.QuestionPatch) (models.QuestionView, error) {
	if patch.Empty() {
		return models.QuestionView{}, errs.NewBadRequestError("at least one field is required to update a question")
	}
	if (patch.Title != nil && *patch.Title == "") || (patch.Body != nil && *patch.Body == "") {
		return models.QuestionView{}, errs.NewBadRequestError("title and body cannot be empty")
	}

	question, err := s.liveFromSource(ctx, id)
	if err != nil {
		return models.QuestionView{}, err
	}
	if err := requireAuthor("question", "update", question.AuthorUID, callerUID); err != nil {
		return models.QuestionView{}, err
	}

	if err := s.questions.Update(ctx, id, patch); err != nil {
		return models.QuestionView{}, err
	}

	updated, err := s.liveFromSource(ctx, id)
	if err != nil {
		return models.QuestionView{}, err
	}
	return s.views.Question(ctx, updated)
}

func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID, callerUID string) error {
	question, err := s.liveFromSource(ctx, id)
	if err != nil {
		return err
	}
	if err := requireAuthor("question", "delete", question.AuthorUID, callerUID); err != nil {
		return err
	}

	if err := s.questions.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("questionID", id.String()).Msg("question deleted")
	return nil
}
