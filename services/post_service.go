package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"github.com/mymedicos/discuss-backend/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MinPostBodyLength is the minimum number of characters in a post body.
const MinPostBodyLength = 10

type PostService struct {
	posts     PostStore
	questions QuestionStore
	views     *Composer
	logger    zerolog.Logger
}

func NewPostService(posts PostStore, questions QuestionStore, views *Composer) *PostService {
	return &PostService{
		posts:     posts,
		questions: questions,
		views:     views,
		logger:    log.With().Str("service", "posts").Logger(),
	}
}

// NewPost is the input of Create. Flashcard and Post select the kind; both
// false means an answer to Question.
type NewPost struct {
	Question  *uuid.UUID
	Body      string
	Title     *string
	Tags      []string
	ReadTime  *string
	Flashcard bool
	Post      bool
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Post  models.PostView `json:"post"`
	Liked bool            `json:"liked"`
}

func (r LikeResult) Message() string {
	if r.Liked {
		return "Post liked successfully"
	}
	return "Post unliked successfully"
}

func validBody(body string) error {
	if utf8.RuneCountInString(body) < MinPostBodyLength {
		return errs.NewInvalidFieldError("body", "must be at least 10 characters long")
	}
	return nil
}

func (s *PostService) Create(ctx context.Context, callerUID string, input NewPost) (models.PostView, error) {
	kind, ok := models.KindFromFlags(input.Flashcard, input.Post)
	if !ok {
		return models.PostView{}, errs.NewBadRequestError("a post cannot be both a flashcard and a long-form post")
	}
	if err := validBody(input.Body); err != nil {
		return models.PostView{}, err
	}

	post := &models.Post{Kind: kind, Body: input.Body, AuthorUID: callerUID}

	switch kind {
	case models.KindAnswer:
		if input.Question == nil {
			return models.PostView{}, errs.NewMissingRequiredFieldError("question")
		}
		question, err := s.questions.FindByID(ctx, *input.Question)
		if err != nil {
			return models.PostView{}, err
		}
		if question == nil || question.Deleted {
			return models.PostView{}, errs.NewNotFoundError("question not found")
		}
		post.QuestionID = &question.ID

	case models.KindFlashcard:
		if input.ReadTime == nil || *input.ReadTime == "" {
			return models.PostView{}, errs.NewBadRequestErrorWithField("readtime is required for flashcards", "readtime", "")
		}
		post.ReadTime = input.ReadTime
		fallthrough

	case models.KindLongForm:
		if input.Title == nil || *input.Title == "" {
			return models.PostView{}, errs.NewBadRequestErrorWithField("title is required for "+string(kind)+"s", "title", "")
		}
		if len(input.Tags) == 0 {
			return models.PostView{}, errs.NewBadRequestErrorWithField("tags are required for "+string(kind)+"s", "tags", "")
		}
		post.Title = input.Title
		post.Tags = models.NewPostTags(input.Tags)
	}

	if err := s.posts.Add(ctx, post); err != nil {
		return models.PostView{}, err
	}

	s.logger.Info().
		Str("postID", post.ID.String()).
		Str("kind", string(kind)).
		Str("author", callerUID).
		Msg("post created")
	return s.views.Post(ctx, post, callerUID)
}

// live loads a post, treating soft-deleted posts as absent.
func (s *PostService) live(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return livePost(s.posts.FindByID(ctx, id))
}

func (s *PostService) liveFromSource(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return livePost(s.posts.FindByIDFromSource(ctx, id))
}

func livePost(post *models.Post, err error) (*models.Post, error) {
	if err != nil {
		return nil, err
	}
	if post == nil || post.Deleted {
		return nil, errs.NewNotFoundError("post not found")
	}
	return post, nil
}

func (s *PostService) Detail(ctx context.Context, id uuid.UUID, viewerUID string) (models.PostView, error) {
	post, err := s.live(ctx, id)
	if err != nil {
		return models.PostView{}, err
	}
	return s.views.Post(ctx, post, viewerUID)
}

// Feed lists the live posts of one kind, newest first.
func (s *PostService) Feed(ctx context.Context, kind models.PostKind, viewerUID string) ([]models.PostView, error) {
	if !kind.Valid() {
		return nil, errs.NewInvalidFieldError("kind", fmt.Sprintf("%q is not a post kind", kind))
	}

	posts, err := s.posts.FindByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	return s.views.Posts(ctx, posts, viewerUID)
}

func (s *PostService) ByAuthor(ctx context.Context, authorUID string, kind models.PostKind) ([]models.PostView, error) {
	if !kind.Valid() {
		return nil, errs.NewInvalidFieldError("kind", fmt.Sprintf("%q is not a post kind", kind))
	}

	posts, err := s.posts.FindByAuthorAndKind(ctx, authorUID, kind)
	if err != nil {
		return nil, err
	}
	return s.views.Posts(ctx, posts, "")
}

func checkPatchForKind(kind models.PostKind, patch models.PostPatch) error {
	if kind == models.KindAnswer && (patch.Title != nil || patch.Tags != nil) {
		return errs.NewBadRequestError("answers only have a body")
	}
	if kind != models.KindFlashcard && patch.ReadTime != nil {
		return errs.NewBadRequestError("readtime can only be set on flashcards")
	}
	if patch.Title != nil && *patch.Title == "" {
		return errs.NewInvalidFieldError("title", "cannot be empty")
	}
	if patch.ReadTime != nil && *patch.ReadTime == "" {
		return errs.NewInvalidFieldError("readtime", "cannot be empty")
	}
	if patch.Tags != nil && len(*patch.Tags) == 0 {
		return errs.NewInvalidFieldError("tags", "cannot be empty")
	}
	if patch.Body != nil {
		return validBody(*patch.Body)
	}
	return nil
}

func (s *PostService) Update(ctx context.Context, id uuid.UUID, callerUID string, patch models.PostPatch) (models.PostView, error) {
	if patch.Empty() {
		return models.PostView{}, errs.NewBadRequestError("at least one field is required to update a post")
	}

	post, err := s.liveFromSource(ctx, id)
	if err != nil {
		return models.PostView{}, err
	}
	if err := requireAuthor("post", "update", post.AuthorUID, callerUID); err != nil {
		return models.PostView{}, err
	}
	if err := checkPatchForKind(post.Kind, patch); err != nil {
		return models.PostView{}, err
	}

	if err := s.posts.Update(ctx, id, patch); err != nil {
		return models.PostView{}, err
	}

	updated, err := s.liveFromSource(ctx, id)
	if err != nil {
		return models.PostView{}, err
	}
	return s.views.Post(ctx, updated, callerUID)
}

func (s *PostService) Delete(ctx context.Context, id uuid.UUID, callerUID string) error {
	post, err := s.liveFromSource(ctx, id)
	if err != nil {
		return err
	}
	if err := requireAuthor("post", "delete", post.AuthorUID, callerUID); err != nil {
		return err
	}

	if err := s.posts.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("postID", id.String()).Msg("post deleted")
	return nil
}

// ToggleLike likes the post for callerUID, or unlikes it when already liked.
func (s *PostService) ToggleLike(ctx context.Context, id uuid.UUID, callerUID string) (LikeResult, error) {
	liked, err := s.posts.ToggleLike(ctx, id, callerUID)
	if err != nil {
		return LikeResult{}, err
	}

	action := "unlike"
	if liked {
		action = "like"
	}
	observability.LikeToggles.WithLabelValues(action).Inc()

	view, err := s.Detail(ctx, id, callerUID)
	if err != nil {
		return LikeResult{}, err
	}
	return LikeResult{Post: view, Liked: liked}, nil
}
