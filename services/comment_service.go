package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type CommentService struct {
	comments CommentStore
	posts    PostStore
	views    *Composer
	logger   zerolog.Logger
}

func NewCommentService(comments CommentStore, posts PostStore, views *Composer) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		views:    views,
		logger:   log.With().Str("service", "comments").Logger(),
	}
}

type NewComment struct {
	Body          string
	ParentComment *uuid.UUID
}

// Create comments on a live post. A parent, when given, must be a live
// comment of the same post.
func (s *CommentService) Create(ctx context.Context, postID uuid.UUID, callerUID string, input NewComment) (*models.CommentView, error) {
	if input.Body == "" {
		return nil, errs.NewMissingRequiredFieldError("body")
	}

	if err := s.requireLivePost(ctx, postID); err != nil {
		return nil, err
	}

	if input.ParentComment != nil {
		parent, err := s.comments.FindByID(ctx, *input.ParentComment)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.Deleted || parent.PostID != postID {
			return nil, errs.NewNotFoundError("parent comment not found")
		}
	}

	comment := &models.Comment{
		PostID:    postID,
		ParentID:  input.ParentComment,
		Body:      input.Body,
		AuthorUID: callerUID,
	}
	if err := s.comments.Add(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info().Str("commentID", comment.ID.String()).Str("postID", postID.String()).Msg("comment created")
	return s.views.Comment(ctx, comment)
}

func (s *CommentService) requireLivePost(ctx context.Context, postID uuid.UUID) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.Deleted {
		return errs.NewNotFoundError("post not found")
	}
	return nil
}

// ForPost lists a live post's comments oldest first, nested when threaded.
func (s *CommentService) ForPost(ctx context.Context, postID uuid.UUID, threaded bool) ([]*models.CommentView, error) {
	if err := s.requireLivePost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.comments.FindByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	views, err := s.views.Comments(ctx, comments)
	if err != nil {
		return nil, err
	}
	if threaded {
		return Thread(views), nil
	}
	return views, nil
}

func (s *CommentService) ByAuthor(ctx context.Context, authorUID string) ([]*models.CommentView, error) {
	comments, err := s.comments.FindByAuthor(ctx, authorUID)
	if err != nil {
		return nil, err
	}
	return s.views.Comments(ctx, comments)
}

func (s *CommentService) live(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return liveComment(s.comments.FindByID(ctx, id))
}

func (s *CommentService) liveFromSource(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return liveComment(s.comments.FindByIDFromSource(ctx, id))
}

func liveComment(comment *models.Comment, err error) (*models.Comment, error) {
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.Deleted {
		return nil, errs.NewNotFoundError("comment not found")
	}
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, id uuid.UUID, callerUID string, patch models.CommentPatch) (*models.CommentView, error) {
	if patch.Empty() || *patch.Body == "" {
		return nil, errs.NewMissingRequiredFieldError("body")
	}

	comment, err := s.liveFromSource(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAuthor("comment", "update", comment.AuthorUID, callerUID); err != nil {
		return nil, err
	}

	if err := s.comments.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	updated, err := s.liveFromSource(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views.Comment(ctx, updated)
}

func (s *CommentService) Delete(ctx context.Context, id uuid.UUID, callerUID string) error {
	comment, err := s.liveFromSource(ctx, id)
	if err != nil {
		return err
	}
	if err := requireAuthor("comment", "delete", comment.AuthorUID, callerUID); err != nil {
		return err
	}

	if err := s.comments.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("commentID", id.String()).Msg("comment deleted")
	return nil
}
