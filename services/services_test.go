package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mymedicos/discuss-backend/database"
	"github.com/mymedicos/discuss-backend/database/dbtest"
	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        database.Database
	views     *Composer
	questions *QuestionService
	posts     *PostService
	comments  *CommentService
}

func newFixture(t *testing.T) fixture {
	return newFixtureOn(dbtest.Open(t))
}

func newFixtureOn(gormDB *gorm.DB) fixture {
	db := database.New(gormDB)
	views := NewComposer(db.UserRepo(), db.PostRepo(), db.CommentRepo())
	return fixture{
		db:        db,
		views:     views,
		questions: NewQuestionService(db.QuestionRepo(), db.PostRepo(), views),
		posts:     NewPostService(db.PostRepo(), db.QuestionRepo(), views),
		comments:  NewCommentService(db.CommentRepo(), db.PostRepo(), views),
	}
}

func (f fixture) addUser(t *testing.T, uid, name string) {
	t.Helper()
	require.NoError(t, f.db.UserRepo().Add(context.Background(), &models.User{UID: uid, Name: name, PhoneNumber: "+91" + uid}))
}

func ptr[T any](v T) *T {
	return &v
}

const longBody = "this body is long enough"

func (f fixture) newQuestion(t *testing.T, author string, tags ...string) models.QuestionView {
	t.Helper()
	q, err := f.questions.Create(context.Background(), author, NewQuestion{Title: "Q", Body: "why?", Tags: tags})
	require.NoError(t, err)
	return q
}

func (f fixture) newLongForm(t *testing.T, author string) models.PostView {
	t.Helper()
	p, err := f.posts.Create(context.Background(), author, NewPost{Post: true, Title: ptr("Title"), Tags: []string{"t"}, Body: longBody})
	require.NoError(t, err)
	return p
}

func TestScenario_QuestionAnswerLikeForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "U1", "User One")
	f.addUser(t, "U2", "User Two")

	q1, err := f.questions.Create(ctx, "U1", NewQuestion{Title: "Q1", Body: "…", Tags: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "U1", q1.Author.UID)
	assert.Equal(t, "User One", q1.Author.Name)
	assert.False(t, q1.Edited)
	assert.Equal(t, []string{}, q1.Tags)

	answer, err := f.posts.Create(ctx, "U2", NewPost{Question: &q1.ID, Body: "an answer of 10+ chars"})
	require.NoError(t, err)
	assert.Equal(t, models.KindAnswer, answer.Kind)

	detail, err := f.questions.Detail(ctx, q1.ID, "")
	require.NoError(t, err)
	require.Len(t, detail.RelatedPosts, 1)
	assert.Equal(t, "U2", detail.RelatedPosts[0].Author.UID)
	assert.Equal(t, int64(1), detail.Question.PostCount)

	liked, err := f.posts.ToggleLike(ctx, answer.ID, "U1")
	require.NoError(t, err)
	assert.True(t, liked.Liked)
	assert.Equal(t, int64(1), liked.Post.LikeCount)
	assert.True(t, liked.Post.Liked)
	assert.Equal(t, "Post liked successfully", liked.Message())

	unliked, err := f.posts.ToggleLike(ctx, answer.ID, "U1")
	require.NoError(t, err)
	assert.False(t, unliked.Liked)
	assert.Equal(t, int64(0), unliked.Post.LikeCount)
	assert.False(t, unliked.Post.Liked)
	assert.Equal(t, "Post unliked successfully", unliked.Message())

	_, err = f.posts.Update(ctx, answer.ID, "U3", models.PostPatch{Body: ptr("hijacked body text")})
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))
	assert.Equal(t, 403, errs.StatusCode(err))
}

func TestCreatePost_KindRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   NewPost
		status  int
		message string
	}{
		{
			name:    "flashcard without readtime",
			input:   NewPost{Flashcard: true, Title: ptr("T"), Tags: []string{"a"}, Body: longBody},
			status:  400,
			message: "readtime is required",
		},
		{
			name:    "flashcard without title",
			input:   NewPost{Flashcard: true, ReadTime: ptr("3 min"), Tags: []string{"a"}, Body: longBody},
			status:  400,
			message: "title is required",
		},
		{
			name:    "long form without tags",
			input:   NewPost{Post: true, Title: ptr("T"), Body: longBody},
			status:  400,
			message: "tags are required",
		},
		{
			name:    "both kinds",
			input:   NewPost{Post: true, Flashcard: true, Title: ptr("T"), Tags: []string{"a"}, ReadTime: ptr("1"), Body: longBody},
			status:  400,
			message: "both",
		},
		{
			name:    "answer without question",
			input:   NewPost{Body: longBody},
			status:  400,
			message: "question",
		},
		{
			name:    "answer to unknown question",
			input:   NewPost{Question: ptr(uuid.New()), Body: longBody},
			status:  404,
			message: "question not found",
		},
		{
			name:    "short body",
			input:   NewPost{Post: true, Title: ptr("T"), Tags: []string{"a"}, Body: "short"},
			status:  400,
			message: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.posts.Create(ctx, "U1", tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.status, errs.StatusCode(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCreatePost_Flashcard(t *testing.T) {
	f := newFixture(t)

	card, err := f.posts.Create(context.Background(), "U1", NewPost{
		Flashcard: true,
		Title:     ptr("Krebs cycle"),
		Tags:      []string{"biochem", "Biochem "},
		ReadTime:  ptr("5 min"),
		Body:      longBody,
	})
	require.NoError(t, err)
	assert.Equal(t, models.KindFlashcard, card.Kind)
	assert.True(t, card.Flashcard)
	assert.False(t, card.Post)
	assert.Nil(t, card.QuestionID)
	assert.Equal(t, []string{"biochem", "Biochem "}, card.Tags)
	assert.Equal(t, "5 min", *card.ReadTime)
}

func TestAnswerToDeletedQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := f.newQuestion(t, "U1")
	require.NoError(t, f.questions.Delete(ctx, q.ID, "U1"))

	_, err := f.posts.Create(ctx, "U2", NewPost{Question: &q.ID, Body: longBody})
	assert.True(t, errs.IsNotFound(err))
}

func TestPartialUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("question", func(t *testing.T) {
		q := f.newQuestion(t, "U1", "x")
		updated, err := f.questions.Update(ctx, q.ID, "U1", models.QuestionPatch{Body: ptr("new body")})
		require.NoError(t, err)
		assert.Equal(t, "new body", updated.Body)
		assert.Equal(t, q.Title, updated.Title)
		assert.Equal(t, []string{"x"}, updated.Tags)
		assert.True(t, updated.Edited)
		assert.True(t, updated.UpdatedAt.After(q.UpdatedAt))
	})

	t.Run("post", func(t *testing.T) {
		p := f.newLongForm(t, "U1")
		updated, err := f.posts.Update(ctx, p.ID, "U1", models.PostPatch{Tags: &[]string{"n1", "n2"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"n1", "n2"}, updated.Tags)
		assert.Equal(t, p.Body, updated.Body)
		assert.Equal(t, *p.Title, *updated.Title)
		assert.True(t, updated.Edited)
		assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))
	})

	t.Run("comment", func(t *testing.T) {
		p := f.newLongForm(t, "U1")
		c, err := f.comments.Create(ctx, p.ID, "U2", NewComment{Body: "first"})
		require.NoError(t, err)
		updated, err := f.comments.Update(ctx, c.ID, "U2", models.CommentPatch{Body: ptr("second")})
		require.NoError(t, err)
		assert.Equal(t, "second", updated.Body)
		assert.Equal(t, c.PostID, updated.PostID)
		assert.True(t, updated.Edited)
		assert.True(t, updated.UpdatedAt.After(c.UpdatedAt))
	})

	t.Run("empty patches", func(t *testing.T) {
		q := f.newQuestion(t, "U1")
		_, err := f.questions.Update(ctx, q.ID, "U1", models.QuestionPatch{})
		assert.True(t, errs.IsBadRequest(err))

		p := f.newLongForm(t, "U1")
		_, err = f.posts.Update(ctx, p.ID, "U1", models.PostPatch{})
		assert.True(t, errs.IsBadRequest(err))

		c, err := f.comments.Create(ctx, p.ID, "U1", NewComment{Body: "hi"})
		require.NoError(t, err)
		_, err = f.comments.Update(ctx, c.ID, "U1", models.CommentPatch{})
		assert.True(t, errs.IsBadRequest(err))
	})

	t.Run("field not valid for kind", func(t *testing.T) {
		q := f.newQuestion(t, "U1")
		answer, err := f.posts.Create(ctx, "U2", NewPost{Question: &q.ID, Body: longBody})
		require.NoError(t, err)
		_, err = f.posts.Update(ctx, answer.ID, "U2", models.PostPatch{Title: ptr("no")})
		assert.True(t, errs.IsBadRequest(err))

		p := f.newLongForm(t, "U1")
		_, err = f.posts.Update(ctx, p.ID, "U1", models.PostPatch{ReadTime: ptr("2 min")})
		assert.True(t, errs.IsBadRequest(err))
	})
}

func TestOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := f.newQuestion(t, "owner")
	p := f.newLongForm(t, "owner")
	c, err := f.comments.Create(ctx, p.ID, "owner", NewComment{Body: "mine"})
	require.NoError(t, err)

	checks := map[string]error{}
	_, checks["update question"] = f.questions.Update(ctx, q.ID, "intruder", models.QuestionPatch{Title: ptr("x")})
	checks["delete question"] = f.questions.Delete(ctx, q.ID, "intruder")
	_, checks["update post"] = f.posts.Update(ctx, p.ID, "intruder", models.PostPatch{Body: ptr(longBody)})
	checks["delete post"] = f.posts.Delete(ctx, p.ID, "intruder")
	_, checks["update comment"] = f.comments.Update(ctx, c.ID, "intruder", models.CommentPatch{Body: ptr("x")})
	checks["delete comment"] = f.comments.Delete(ctx, c.ID, "intruder")

	for name, err := range checks {
		assert.Truef(t, errs.IsForbidden(err), "%s: expected forbidden, got %v", name, err)
	}

	// existence is checked before ownership
	err = f.questions.Delete(ctx, uuid.New(), "intruder")
	assert.True(t, errs.IsNotFound(err))
	err = f.posts.Delete(ctx, uuid.New(), "intruder")
	assert.True(t, errs.IsNotFound(err))
	err = f.comments.Delete(ctx, uuid.New(), "intruder")
	assert.True(t, errs.IsNotFound(err))
}

func TestSoftDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := f.newQuestion(t, "U1", "gone")
	require.NoError(t, f.questions.Delete(ctx, q.ID, "U1"))

	_, err := f.questions.Detail(ctx, q.ID, "")
	assert.True(t, errs.IsNotFound(err))
	assert.True(t, errs.IsNotFound(f.questions.Delete(ctx, q.ID, "U1")))

	stored, err := f.db.QuestionRepo().FindByID(ctx, q.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Deleted)

	feed, err := f.questions.Feed(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)
	tagged, err := f.questions.ByTags(ctx, []string{"gone"})
	require.NoError(t, err)
	assert.Empty(t, tagged)

	p := f.newLongForm(t, "U1")
	require.NoError(t, f.posts.Delete(ctx, p.ID, "U1"))
	_, err = f.posts.Detail(ctx, p.ID, "")
	assert.True(t, errs.IsNotFound(err))
	_, err = f.posts.ToggleLike(ctx, p.ID, "U2")
	assert.True(t, errs.IsNotFound(err))
	_, err = f.comments.Create(ctx, p.ID, "U2", NewComment{Body: "late"})
	assert.True(t, errs.IsNotFound(err))
	postFeed, err := f.posts.Feed(ctx, models.KindLongForm, "")
	require.NoError(t, err)
	assert.Empty(t, postFeed)
}

func TestLikes_ConcurrentDistinctCallers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newLongForm(t, "author")

	const callers = 20
	var wg sync.WaitGroup
	errCh := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.posts.ToggleLike(ctx, p.ID, fmt.Sprintf("caller-%d", i))
			errCh <- err
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	view, err := f.posts.Detail(ctx, p.ID, "caller-3")
	require.NoError(t, err)
	assert.Equal(t, int64(callers), view.LikeCount)
	assert.True(t, view.Liked)

	anonymous, err := f.posts.Detail(ctx, p.ID, "")
	require.NoError(t, err)
	assert.False(t, anonymous.Liked)
}

func TestLikes_PairRestoresLikers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newLongForm(t, "author")

	_, err := f.posts.ToggleLike(ctx, p.ID, "other")
	require.NoError(t, err)
	before, err := f.db.PostRepo().LikerUIDs(ctx, p.ID)
	require.NoError(t, err)

	_, err = f.posts.ToggleLike(ctx, p.ID, "me")
	require.NoError(t, err)
	res, err := f.posts.ToggleLike(ctx, p.ID, "me")
	require.NoError(t, err)

	after, err := f.db.PostRepo().LikerUIDs(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, int64(1), res.Post.LikeCount)
}

func TestQuestionsByTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	qa := f.newQuestion(t, "U1", "a")
	qb := f.newQuestion(t, "U1", "b")
	qab := f.newQuestion(t, "U1", "a", "b")
	f.newQuestion(t, "U1", "c")

	found, err := f.questions.ByTags(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, []uuid.UUID{qab.ID, qb.ID, qa.ID}, []uuid.UUID{found[0].ID, found[1].ID, found[2].ID})

	_, err = f.questions.ByTags(ctx, nil)
	assert.True(t, errs.IsBadRequest(err))
}

func TestAuthorListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q := f.newQuestion(t, "U1")
	f.newQuestion(t, "U2")
	_, err := f.posts.Create(ctx, "U1", NewPost{Question: &q.ID, Body: longBody})
	require.NoError(t, err)
	f.newLongForm(t, "U1")
	_, err = f.posts.Create(ctx, "U1", NewPost{Flashcard: true, Title: ptr("T"), Tags: []string{"a"}, ReadTime: ptr("1m"), Body: longBody})
	require.NoError(t, err)

	questions, err := f.questions.ByAuthor(ctx, "U1")
	require.NoError(t, err)
	assert.Len(t, questions, 1)

	for _, kind := range []models.PostKind{models.KindAnswer, models.KindLongForm, models.KindFlashcard} {
		posts, err := f.posts.ByAuthor(ctx, "U1", kind)
		require.NoError(t, err)
		require.Len(t, posts, 1, string(kind))
		assert.Equal(t, kind, posts[0].Kind)
	}
}

func TestComments_ThreadAndParentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "U2", "Two")

	p := f.newLongForm(t, "U1")
	other := f.newLongForm(t, "U1")

	root, err := f.comments.Create(ctx, p.ID, "U2", NewComment{Body: "root"})
	require.NoError(t, err)
	assert.Equal(t, "Two", root.Author.Name)
	reply, err := f.comments.Create(ctx, p.ID, "U1", NewComment{Body: "reply", ParentComment: &root.ID})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, p.ID, "U2", NewComment{Body: "nested", ParentComment: &reply.ID})
	require.NoError(t, err)

	_, err = f.comments.Create(ctx, other.ID, "U2", NewComment{Body: "x", ParentComment: &root.ID})
	assert.True(t, errs.IsNotFound(err))
	_, err = f.comments.Create(ctx, p.ID, "U2", NewComment{Body: "x", ParentComment: ptr(uuid.New())})
	assert.True(t, errs.IsNotFound(err))

	flat, err := f.comments.ForPost(ctx, p.ID, false)
	require.NoError(t, err)
	require.Len(t, flat, 3)
	assert.Equal(t, []string{"root", "reply", "nested"}, []string{flat[0].Body, flat[1].Body, flat[2].Body})

	threaded, err := f.comments.ForPost(ctx, p.ID, true)
	require.NoError(t, err)
	require.Len(t, threaded, 1)
	require.Len(t, threaded[0].Replies, 1)
	require.Len(t, threaded[0].Replies[0].Replies, 1)
	assert.Equal(t, "nested", threaded[0].Replies[0].Replies[0].Body)

	view, err := f.posts.Detail(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), view.CommentCount)

	require.NoError(t, f.comments.Delete(ctx, root.ID, "U2"))
	threaded, err = f.comments.ForPost(ctx, p.ID, true)
	require.NoError(t, err)
	require.Len(t, threaded, 1)
	assert.Equal(t, "reply", threaded[0].Body)

	mine, err := f.comments.ByAuthor(ctx, "U2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, strings.HasPrefix(mine[0].Body, "nested"))
}

func TestComposer_MissingAuthorProfile(t *testing.T) {
	f := newFixture(t)

	q := f.newQuestion(t, "ghost")
	assert.Equal(t, "ghost", q.Author.UID)
	assert.Empty(t, q.Author.Name)
}

func TestComments_ForPostRequiresLivePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.newLongForm(t, "U1")
	_, err := f.comments.Create(ctx, p.ID, "U1", NewComment{Body: "before delete"})
	require.NoError(t, err)

	require.NoError(t, f.posts.Delete(ctx, p.ID, "U1"))

	comments, err := f.comments.ForPost(ctx, p.ID, false)
	assert.True(t, errs.IsNotFound(err))
	assert.Nil(t, comments)

	_, err = f.comments.ForPost(ctx, uuid.New(), true)
	assert.True(t, errs.IsNotFound(err))
}

func TestUpdates_ReadTheirOwnWrites(t *testing.T) {
	f := newFixtureOn(dbtest.OpenWithLaggingReplica(t))
	ctx := context.Background()

	t.Run("question", func(t *testing.T) {
		q := f.newQuestion(t, "U1", "x")
		updated, err := f.questions.Update(ctx, q.ID, "U1", models.QuestionPatch{Title: ptr("fresh title")})
		require.NoError(t, err)
		assert.Equal(t, "fresh title", updated.Title)
		assert.True(t, updated.Edited)
	})

	t.Run("post", func(t *testing.T) {
		p := f.newLongForm(t, "U1")
		updated, err := f.posts.Update(ctx, p.ID, "U1", models.PostPatch{Body: ptr("a fresher body than before")})
		require.NoError(t, err)
		assert.Equal(t, "a fresher body than before", updated.Body)
		assert.True(t, updated.Edited)
	})

	t.Run("comment", func(t *testing.T) {
		p := f.newLongForm(t, "U1")
		comment := &models.Comment{PostID: p.ID, Body: "first", AuthorUID: "U2"}
		require.NoError(t, f.db.CommentRepo().Add(ctx, comment))

		updated, err := f.comments.Update(ctx, comment.ID, "U2", models.CommentPatch{Body: ptr("second")})
		require.NoError(t, err)
		assert.Equal(t, "second", updated.Body)
		assert.True(t, updated.Edited)
	})

	t.Run("delete", func(t *testing.T) {
		q := f.newQuestion(t, "U1")
		require.NoError(t, f.questions.Delete(ctx, q.ID, "U1"))

		_, err := f.questions.Update(ctx, q.ID, "U1", models.QuestionPatch{Title: ptr("again")})
		assert.True(t, errs.IsNotFound(err))
	})
}
