package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/mymedicos/discuss-backend/models"
	"golang.org/x/sync/errgroup"
)

// Composer joins author profiles and derived counts into read views. Each
// listing costs a fixed number of batched queries, run concurrently.
type Composer struct {
	users    UserStore
	posts    PostStore
	comments CommentStore
}

func NewComposer(users UserStore, posts PostStore, comments CommentStore) *Composer {
	return &Composer{users: users, posts: posts, comments: comments}
}

func (c *Composer) authors(ctx context.Context, uids []string) (map[string]*models.User, error) {
	byUID := make(map[string]*models.User, len(uids))
	users, err := c.users.FindByUIDs(ctx, distinct(uids))
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		byUID[user.UID] = user
	}
	return byUID, nil
}

// Questions builds question views with the number of live answers.
func (c *Composer) Questions(ctx context.Context, questions []*models.Question) ([]models.QuestionView, error) {
	ids := make([]uuid.UUID, 0, len(questions))
	uids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
		uids = append(uids, q.AuthorUID)
	}

	var authors map[string]*models.User
	var postCounts map[uuid.UUID]int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		authors, err = c.authors(gctx, uids)
		return err
	})
	g.Go(func() (err error) {
		postCounts, err = c.posts.CountByQuestions(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]models.QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, models.QuestionView{
			ID:        q.ID,
			Title:     q.Title,
			Body:      q.Body,
			Tags:      q.TagValues(),
			Edited:    q.Edited,
			Author:    models.NewAuthorSummary(q.AuthorUID, authors[q.AuthorUID]),
			PostCount: postCounts[q.ID],
			CreatedAt: q.CreatedAt,
			UpdatedAt: q.UpdatedAt,
		})
	}
	return views, nil
}

func (c *Composer) Question(ctx context.Context, question *models.Question) (models.QuestionView, error) {
	views, err := c.Questions(ctx, []*models.Question{question})
	if err != nil {
		return models.QuestionView{}, err
	}
	return views[0], nil
}

// Posts builds post views. viewerUID is empty for anonymous callers.
func (c *Composer) Posts(ctx context.Context, posts []*models.Post, viewerUID string) ([]models.PostView, error) {
	ids := make([]uuid.UUID, 0, len(posts))
	uids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		uids = append(uids, p.AuthorUID)
	}

	var authors map[string]*models.User
	var likeCounts, commentCounts map[uuid.UUID]int64
	var liked map[uuid.UUID]bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		authors, err = c.authors(gctx, uids)
		return err
	})
	g.Go(func() (err error) {
		likeCounts, err = c.posts.LikeCounts(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		commentCounts, err = c.comments.CountByPosts(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		liked, err = c.posts.LikedBy(gctx, ids, viewerUID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, models.PostView{
			ID:           p.ID,
			Kind:         p.Kind,
			Flashcard:    p.Kind == models.KindFlashcard,
			Post:         p.Kind == models.KindLongForm,
			QuestionID:   p.QuestionID,
			Title:        p.Title,
			Body:         p.Body,
			Tags:         p.TagValues(),
			ReadTime:     p.ReadTime,
			Edited:       p.Edited,
			Author:       models.NewAuthorSummary(p.AuthorUID, authors[p.AuthorUID]),
			LikeCount:    likeCounts[p.ID],
			CommentCount: commentCounts[p.ID],
			Liked:        liked[p.ID],
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		})
	}
	return views, nil
}

func (c *Composer) Post(ctx context.Context, post *models.Post, viewerUID string) (models.PostView, error) {
	views, err := c.Posts(ctx, []*models.Post{post}, viewerUID)
	if err != nil {
		return models.PostView{}, err
	}
	return views[0], nil
}

// Comments builds flat comment views in the order given.
func (c *Composer) Comments(ctx context.Context, comments []*models.Comment) ([]*models.CommentView, error) {
	uids := make([]string, 0, len(comments))
	for _, comment := range comments {
		uids = append(uids, comment.AuthorUID)
	}

	authors, err := c.authors(ctx, uids)
	if err != nil {
		return nil, err
	}

	views := make([]*models.CommentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, &models.CommentView{
			ID:            comment.ID,
			PostID:        comment.PostID,
			ParentComment: comment.ParentID,
			Body:          comment.Body,
			Edited:        comment.Edited,
			Author:        models.NewAuthorSummary(comment.AuthorUID, authors[comment.AuthorUID]),
			CreatedAt:     comment.CreatedAt,
			UpdatedAt:     comment.UpdatedAt,
		})
	}
	return views, nil
}

func (c *Composer) Comment(ctx context.Context, comment *models.Comment) (*models.CommentView, error) {
	views, err := c.Comments(ctx, []*models.Comment{comment})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Thread nests replies under their parents, keeping the input order at every
// level. Replies whose parent is not in the list become roots.
func Thread(flat []*models.CommentView) []*models.CommentView {
	byID := make(map[uuid.UUID]*models.CommentView, len(flat))
	for _, view := range flat {
		byID[view.ID] = view
	}

	roots := make([]*models.CommentView, 0)
	for _, view := range flat {
		if view.ParentComment != nil {
			if parent, ok := byID[*view.ParentComment]; ok && parent != view {
				parent.Replies = append(parent.Replies, view)
				continue
			}
		}
		roots = append(roots, view)
	}
	return roots
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
