package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hanpage/bookreview_go_server/config"
	"github.com/hanpage/bookreview_go_server/internal/model/dto"
	"github.com/hanpage/bookreview_go_server/internal/repository"
	"github.com/hanpage/bookreview_go_server/internal/testutil"
)

func setupReviewService(t *testing.T) (*ReviewService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestDB(t, db)
	})

	reviewRepo := repository.NewReviewRepository(db)
	userRepo := repository.NewUserRepository(db)
	return NewReviewService(reviewRepo, userRepo, &config.Config{}), db
}

func strPtr(s string) *string {
	return &s
}

func TestReviewService_Create_Success(t *testing.T) {
	service, db := setupReviewService(t)
	user := testutil.TestUser(t, db, testutil.WithUsername("reader"))

	item, err := service.Create(user.ID, &dto.CreateReviewRequest{
		Title:     "A quiet masterpiece",
		BookTitle: "Stoner",
		Content:   "Deserves every bit of its late fame.",
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "reader", item.Username)
	assert.Zero(t, item.Views)
}

func TestReviewService_Create_MissingFields(t *testing.T) {
	service, db := setupReviewService(t)
	user := testutil.TestUser(t, db)

	cases := []dto.CreateReviewRequest{
		{BookTitle: "Stoner", Content: "text"},
		{Title: "A title", Content: "text"},
		{Title: "A title", BookTitle: "Stoner"},
		{Title: "   ", BookTitle: "Stoner", Content: "text"},
	}

	for _, req := range cases {
		_, err := service.Create(user.ID, &req)
		assert.ErrorIs(t, err, ErrMissingFields)
	}
}

func TestReviewService_Get_DoesNotCountView(t *testing.T) {
	service, db := setupReviewService(t)
	user := testutil.TestUser(t, db)
	review := testutil.TestReview(t, db, user)

	for i := 0; i < 3; i++ {
		item, err := service.Get(review.ID)
		require.NoError(t, err)
		assert.Zero(t, item.Views)
	}
}

func TestReviewService_Get_NotFound(t *testing.T) {
	service, _ := setupReviewService(t)

	_, err := service.Get(99999)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewService_RecordView(t *testing.T) {
	service, db := setupReviewService(t)
	user := testutil.TestUser(t, db)
	review := testutil.TestReview(t, db, user)

	require.NoError(t, service.RecordView(review.ID))
	require.NoError(t, service.RecordView(review.ID))

	item, err := service.Get(review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Views)
}

func TestReviewService_RecordView_NotFound(t *testing.T) {
	service, _ := setupReviewService(t)

	err := service.RecordView(99999)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewService_Update_Owner(t *testing.T) {
	service, db := setupReviewService(t)
	user := testutil.TestUser(t, db)
	review := testutil.TestReview(t, db, user)

	item, err := service.Update(user.ID, review.ID, &dto.UpdateReviewRequest{
		Title: strPtr("Second thoughts"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Second thoughts", item.Title)
	assert.Equal(t, review.BookTitle, item.BookTitle)
}

func TestReviewService_Update_BlankMandatoryField(t *testing.T) {
	service, db := setupReviewService(t)
	user := testutil.TestUser(t, db)
	review := testutil.TestReview(t, db, user)

	_, err := service.Update(user.ID, review.ID, &dto.UpdateReviewRequest{
		BookTitle: strPtr("  "),
	})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestReviewService_Update_ClearOptionalField(t *testing.T) {
	service, db := setupReviewService(t)
	user := testutil.TestUser(t, db)

	created, err := service.Create(user.ID, &dto.CreateReviewRequest{
		Title:      "With author",
		BookTitle:  "Stoner",
		BookAuthor: "John Williams",
		Content:    "text",
	})
	require.NoError(t, err)

	item, err := service.Update(user.ID, created.ID, &dto.UpdateReviewRequest{
		BookAuthor: strPtr(""),
	})
	require.NoError(t, err)
	assert.Empty(t, item.BookAuthor)
}

func TestReviewService_Update_NotOwner(t *testing.T) {
	service, db := setupReviewService(t)
	owner := testutil.TestUser(t, db)
	stranger := testutil.TestUser(t, db)
	review := testutil.TestReview(t, db, owner)

	_, err := service.Update(stranger.ID, review.ID, &dto.UpdateReviewRequest{
		Title: strPtr("Hijacked"),
	})
	assert.ErrorIs(t, err, ErrReviewPermission)
}

func TestReviewService_Update_AdminOverride(t *testing.T) {
	service, db := setupReviewService(t)
	owner := testutil.TestUser(t, db)
	admin := testutil.TestUser(t, db, testutil.WithAdmin())
	review := testutil.TestReview(t, db, owner)

	item, err := service.Update(admin.ID, review.ID, &dto.UpdateReviewRequest{
		Title: strPtr("Moderated title"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Moderated title", item.Title)
	// Authorship is untouched by an admin edit.
	assert.Equal(t, owner.Username, item.Username)
}

func TestReviewService_Delete_Owner(t *testing.T) {
	service, db := setupReviewService(t)
	user := testutil.TestUser(t, db)
	review := testutil.TestReview(t, db, user)
	comment := testutil.TestComment(t, db, user, review)
	testutil.TestReply(t, db, user, comment)

	require.NoError(t, service.Delete(user.ID, review.ID))

	_, err := service.Get(review.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)

	commentRepo := repository.NewCommentRepository(db)
	count, err := commentRepo.CountByReviewID(review.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReviewService_Delete_NotOwner(t *testing.T) {
	service, db := setupReviewService(t)
	owner := testutil.TestUser(t, db)
	stranger := testutil.TestUser(t, db)
	review := testutil.TestReview(t, db, owner)

	err := service.Delete(stranger.ID, review.ID)
	assert.ErrorIs(t, err, ErrReviewPermission)

	_, err = service.Get(review.ID)
	assert.NoError(t, err)
}

func TestReviewService_Delete_Admin(t *testing.T) {
	service, db := setupReviewService(t)
	owner := testutil.TestUser(t, db)
	admin := testutil.TestUser(t, db, testutil.WithAdmin())
	review := testutil.TestReview(t, db, owner)

	require.NoError(t, service.Delete(admin.ID, review.ID))
}

func TestReviewService_List_UnknownSortFallsBack(t *testing.T) {
	service, db := setupReviewService(t)
	user := testutil.TestUser(t, db)
	testutil.TestReview(t, db, user)
	testutil.TestReview(t, db, user)

	items, total, err := service.List(1, "shuffled", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func TestReviewService_List_OutOfRangePage(t *testing.T) {
	service, db := setupReviewService(t)
	user := testutil.TestUser(t, db)
	testutil.TestReview(t, db, user)

	items, total, err := service.List(42, repository.SortLatest, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Empty(t, items)
}

func TestReviewService_List_OmitsContent(t *testing.T) {
	service, db := setupReviewService(t)
	user := testutil.TestUser(t, db)
	testutil.TestReview(t, db, user)

	items, _, err := service.List(1, repository.SortLatest, "", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Content)
}

func TestReviewService_ListByAuthor(t *testing.T) {
	service, db := setupReviewService(t)
	author := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	testutil.TestReview(t, db, author)
	testutil.TestReview(t, db, other)

	items, total, err := service.ListByAuthor(author.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}
