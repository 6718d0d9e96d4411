package reviews

import (
	"context"
	"sync"
	"testing"
	"time"

	"yemenflix/src/auth"
	"yemenflix/src/cache"
	"yemenflix/src/database"
	lib "yemenflix/src/modules/reviews/lib"
	users "yemenflix/src/modules/users/models"
	"yemenflix/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sent struct {
	userID uint
	kind   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint, kind, _, _ string, _ map[string]interface{}) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sent{userID, kind})
	return true, nil
}

func setup(t *testing.T) (*ReviewService, *database.Manager, *recordingNotifier) {
	t.Helper()
	m := database.NewTestManager(t)
	n := &recordingNotifier{}
	return NewReviewService(m, cache.New(cache.NewMemoryStore(), time.Minute), n), m, n
}

func addUser(t *testing.T, m *database.Manager, name string) uint {
	t.Helper()
	hash, err := auth.HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	u := users.User{Username: name, Email: name + "@example.com", PasswordHash: hash, IsActive: true}
	require.NoError(t, m.DB().Create(&u).Error)
	return u.ID
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	se, ok := err.(*utils.ServiceError)
	require.True(t, ok, "expected a ServiceError, got %v", err)
	return se.StatusCode
}

func strPtr(s string) *string { return &s }

func TestReviewLifecycle(t *testing.T) {
	svc, m, _ := setup(t)
	ctx := context.Background()
	author := addUser(t, m, "author")
	other := addUser(t, m, "other")

	r, err := svc.CreateReview(ctx, author, 1, lib.ReviewRequest{Rating: 5, Title: "رائع", Review: "فيلم جميل"})
	require.NoError(t, err)
	require.NotNil(t, r.User)
	assert.Equal(t, "author", r.User.Username)

	_, err = svc.CreateReview(ctx, author, 1, lib.ReviewRequest{Rating: 4, Title: "again", Review: "again"})
	assert.Equal(t, 409, statusCode(t, err))
	_, err = svc.CreateReview(ctx, other, 1, lib.ReviewRequest{Rating: 6, Title: "t", Review: "r"})
	assert.Equal(t, 400, statusCode(t, err))
	_, err = svc.CreateReview(ctx, other, 999, lib.ReviewRequest{Rating: 3, Title: "t", Review: "r"})
	assert.Equal(t, 404, statusCode(t, err))

	_, err = svc.CreateReview(ctx, other, 1, lib.ReviewRequest{Rating: 2, Title: "meh", Review: "ok"})
	require.NoError(t, err)

	list, err := svc.ListReviews(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 3.5, list.AverageRating)

	_, err = svc.UpdateReview(ctx, r.ID, other, false, lib.ReviewPatch{Title: strPtr("x")})
	assert.Equal(t, 403, statusCode(t, err))
	_, err = svc.UpdateReview(ctx, r.ID, author, false, lib.ReviewPatch{})
	assert.Equal(t, 400, statusCode(t, err))
	updated, err := svc.UpdateReview(ctx, r.ID, author, false, lib.ReviewPatch{Title: strPtr("ممتاز")})
	require.NoError(t, err)
	assert.Equal(t, "ممتاز", updated.Title)

	mine, err := svc.UserReview(ctx, author, 1)
	require.NoError(t, err)
	assert.Equal(t, r.ID, mine.ID)

	assert.Equal(t, 403, statusCode(t, svc.DeleteReview(ctx, r.ID, other, false)))
	require.NoError(t, svc.DeleteReview(ctx, r.ID, 1, true))
	_, err = svc.UserReview(ctx, author, 1)
	assert.Equal(t, 404, statusCode(t, err))
}

func TestReviewsDisabled(t *testing.T) {
	svc, m, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, m.UpdateSiteSettings(ctx, []database.SettingUpdate{
		{Key: "enable_reviews", Value: "false"},
		{Key: "enable_comments", Value: "false"},
	}))
	u := addUser(t, m, "writer")

	_, err := svc.CreateReview(ctx, u, 1, lib.ReviewRequest{Rating: 3, Title: "t", Review: "r"})
	assert.Equal(t, 403, statusCode(t, err))
	_, err = svc.CreateComment(ctx, u, 1, lib.CommentRequest{Comment: "hi"})
	assert.Equal(t, 403, statusCode(t, err))
}

func TestLikeReplacesVote(t *testing.T) {
	svc, m, n := setup(t)
	ctx := context.Background()
	author := addUser(t, m, "author")
	fan := addUser(t, m, "fan")

	r, err := svc.CreateReview(ctx, author, 2, lib.ReviewRequest{Rating: 4, Title: "t", Review: "r"})
	require.NoError(t, err)

	got, err := svc.LikeReview(ctx, r.ID, fan, true)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, 0, got.Dislikes)

	got, err = svc.LikeReview(ctx, r.ID, fan, true)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes, "repeating a vote is a no-op")

	got, err = svc.LikeReview(ctx, r.ID, fan, false)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Likes)
	assert.Equal(t, 1, got.Dislikes)

	_, err = svc.LikeReview(ctx, r.ID, author, true)
	require.NoError(t, err)

	assert.Equal(t, []sent{{author, users.NotifyReviewLike}}, n.sent, "only the first like by someone else notifies")

	_, err = svc.LikeReview(ctx, 999, fan, true)
	assert.Equal(t, 404, statusCode(t, err))
}

func TestCommentThreads(t *testing.T) {
	svc, m, n := setup(t)
	ctx := context.Background()
	a := addUser(t, m, "first")
	b := addUser(t, m, "second")

	root, err := svc.CreateComment(ctx, a, 1, lib.CommentRequest{Comment: "أول تعليق"})
	require.NoError(t, err)
	reply, err := svc.CreateComment(ctx, b, 1, lib.CommentRequest{Comment: "رد", ParentID: &root.ID})
	require.NoError(t, err)
	nested, err := svc.CreateComment(ctx, a, 1, lib.CommentRequest{Comment: "رد على الرد", ParentID: &reply.ID})
	require.NoError(t, err)
	require.NotNil(t, nested.ParentID)
	assert.Equal(t, root.ID, *nested.ParentID)

	_, err = svc.CreateComment(ctx, a, 1, lib.CommentRequest{Comment: "  "})
	assert.Equal(t, 400, statusCode(t, err))
	bad := uint(999)
	_, err = svc.CreateComment(ctx, a, 1, lib.CommentRequest{Comment: "x", ParentID: &bad})
	assert.Equal(t, 400, statusCode(t, err))
	_, err = svc.CreateComment(ctx, a, 2, lib.CommentRequest{Comment: "x", ParentID: &root.ID})
	assert.Equal(t, 400, statusCode(t, err), "parent must belong to the same content")

	_, err = svc.CreateComment(ctx, b, 1, lib.CommentRequest{Comment: "ثاني"})
	require.NoError(t, err)

	threads, err := svc.ListComments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, "ثاني", threads[0].Body)
	require.Len(t, threads[1].Replies, 2)
	assert.Equal(t, reply.ID, threads[1].Replies[0].ID)

	// b replied to a, then a replied to b
	assert.Equal(t, []sent{{a, users.NotifyCommentReply}, {b, users.NotifyCommentReply}}, n.sent)

	assert.Equal(t, 403, statusCode(t, svc.DeleteComment(ctx, root.ID, b, false)))
	require.NoError(t, svc.DeleteComment(ctx, root.ID, a, false))
	threads, err = svc.ListComments(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, threads, 1)
}
