package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contentFixture struct {
	*fixture
	posts   *ContentService
	spotted *ContentService
	creator models.User
	school  models.School
	city    models.City
}

func newContentFixture(t *testing.T) *contentFixture {
	f := newFixture(t)
	city := testutil.City(t, f.db, "Milano", "Lombardia")
	school := testutil.School(t, f.db, "Liceo X", city.ID, "liceox.it")
	creator := testutil.User(t, f.db, "Anna", "Bianchi", "anna@liceox.it", &school.ID, testutil.Date(2024, 1, 10))
	return &contentFixture{
		fixture: f,
		posts:   NewContentService(f.db, f.acl, models.KindPost),
		spotted: NewContentService(f.db, f.acl, models.KindSpotted),
		creator: creator,
		school:  school,
		city:    city,
	}
}

func (f *contentFixture) item(t *testing.T, kind models.ContentKind, content string, created time.Time) models.ContentItem {
	return testutil.Item(t, f.db, kind, f.creator.ID, &f.school.ID, content, created)
}

func ids(rows []dto.ContentRow) []uint {
	out := make([]uint, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestListPendingOldestFirst(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	newer := f.item(t, models.KindPost, "newer", testutil.Date(2024, 3, 2))
	older := f.item(t, models.KindPost, "older", testutil.Date(2024, 3, 1))
	tie := f.item(t, models.KindPost, "same day as newer", testutil.Date(2024, 3, 2))
	f.item(t, models.KindSpotted, "other kind", testutil.Date(2024, 2, 1))

	rows, err := f.posts.ListPending(ctx, fullSession)
	require.NoError(t, err)
	assert.Equal(t, []uint{older.ID, newer.ID, tie.ID}, ids(rows))

	for _, r := range rows {
		assert.Equal(t, string(models.StatusReceived), r.Status)
		assert.Equal(t, string(models.KindPost), r.Kind)
	}
}

func TestContentRowCarriesCreatorSchoolAndCity(t *testing.T) {
	f := newContentFixture(t)
	item := f.item(t, models.KindPost, "hello", testutil.Date(2024, 3, 1))

	row, err := f.posts.Get(context.Background(), fullSession, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", row.CreatorFirstName)
	assert.Equal(t, "Bianchi", row.CreatorLastName)
	assert.Equal(t, "anna@liceox.it", row.CreatorEmail)
	require.NotNil(t, row.SchoolName)
	assert.Equal(t, "Liceo X", *row.SchoolName)
	require.NotNil(t, row.CityName)
	assert.Equal(t, "Milano", *row.CityName)
}

func TestApproveLeavesPending(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	item := f.item(t, models.KindPost, "approve me", testutil.Date(2024, 3, 1))

	require.NoError(t, f.posts.Approve(ctx, fullSession, item.ID))

	pending, err := f.posts.ListPending(ctx, fullSession)
	require.NoError(t, err)
	assert.Empty(t, pending)

	row, err := f.posts.Get(ctx, fullSession, item.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusApproved), row.Status)
	assert.NotNil(t, row.ApprovedAt)
}

func TestSetStatusAnyTransition(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	item := f.item(t, models.KindSpotted, "round trip", testutil.Date(2024, 3, 1))

	steps := []models.Status{
		models.StatusRejected, models.StatusApproved, models.StatusApproved,
		models.StatusReceived, models.StatusRejected,
	}
	for _, status := range steps {
		require.NoError(t, f.spotted.SetStatus(ctx, fullSession, item.ID, string(status)))
		row, err := f.spotted.Get(ctx, fullSession, item.ID)
		require.NoError(t, err)
		assert.Equal(t, string(status), row.Status)
	}

	require.NoError(t, f.spotted.SetStatus(ctx, fullSession, item.ID, "received"))
	pending, err := f.spotted.ListPending(ctx, fullSession)
	require.NoError(t, err)
	assert.Equal(t, []uint{item.ID}, ids(pending))
}

func TestSetStatusEveryPair(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	for _, from := range models.Statuses {
		for _, to := range models.Statuses {
			item := f.item(t, models.KindPost, string(from)+" to "+string(to), testutil.Date(2024, 3, 1))
			require.NoError(t, f.posts.SetStatus(ctx, fullSession, item.ID, string(from)))
			require.NoError(t, f.posts.SetStatus(ctx, fullSession, item.ID, string(to)))

			row, err := f.posts.Get(ctx, fullSession, item.ID)
			require.NoError(t, err)
			assert.Equal(t, string(to), row.Status, "%s -> %s", from, to)
		}
	}
}

func TestDeleteLeavesPending(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	a := f.item(t, models.KindSpotted, "a", testutil.Date(2024, 3, 1))
	b := f.item(t, models.KindSpotted, "b", testutil.Date(2024, 3, 2))

	require.NoError(t, f.spotted.Delete(ctx, fullSession, a.ID))

	pending, err := f.spotted.ListPending(ctx, fullSession)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, ids(pending))
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	item := f.item(t, models.KindPost, "x", testutil.Date(2024, 3, 1))

	err := f.posts.SetStatus(ctx, fullSession, item.ID, "published")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	row, err := f.posts.Get(ctx, fullSession, item.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusReceived), row.Status)
}

func TestMissingItemIsNotFound(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	post := f.item(t, models.KindPost, "a post", testutil.Date(2024, 3, 1))

	assert.ErrorIs(t, f.posts.Approve(ctx, fullSession, 9999), ErrNotFound)
	assert.ErrorIs(t, f.posts.Delete(ctx, fullSession, 9999), ErrNotFound)
	_, err := f.posts.Get(ctx, fullSession, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	// a post id is unknown to the spotted engine
	assert.ErrorIs(t, f.spotted.Reject(ctx, fullSession, post.ID), ErrNotFound)
	assert.ErrorIs(t, f.spotted.RecordReport(ctx, post.ID, nil, "spam"), ErrNotFound)
}

func TestReportsSurviveModeration(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	item := f.item(t, models.KindPost, "controversial", testutil.Date(2024, 3, 1))

	for i := 0; i < 3; i++ {
		require.NoError(t, f.posts.RecordReport(ctx, item.ID, &f.creator.ID, "offensive"))
	}

	reported, err := f.posts.ListReported(ctx, fullSession)
	require.NoError(t, err)
	require.Len(t, reported, 1)
	assert.Equal(t, 3, reported[0].ReportCount)

	pending, err := f.posts.ListPending(ctx, fullSession)
	require.NoError(t, err)
	assert.Equal(t, []uint{item.ID}, ids(pending))

	require.NoError(t, f.posts.Approve(ctx, fullSession, item.ID))

	pending, err = f.posts.ListPending(ctx, fullSession)
	require.NoError(t, err)
	assert.Empty(t, pending)

	reported, err = f.posts.ListReported(ctx, fullSession)
	require.NoError(t, err)
	require.Len(t, reported, 1)
	assert.Equal(t, 3, reported[0].ReportCount)
	assert.Equal(t, string(models.StatusApproved), reported[0].Status)

	require.NoError(t, f.posts.Reject(ctx, fullSession, item.ID))
	reported, err = f.posts.ListReported(ctx, fullSession)
	require.NoError(t, err)
	require.Len(t, reported, 1)
	assert.Equal(t, 3, reported[0].ReportCount)
}

func TestListReportedOrdering(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	once := f.item(t, models.KindSpotted, "once", testutil.Date(2024, 1, 1))
	twiceNew := f.item(t, models.KindSpotted, "twice new", testutil.Date(2024, 2, 1))
	twiceOld := f.item(t, models.KindSpotted, "twice old", testutil.Date(2024, 1, 15))
	f.item(t, models.KindSpotted, "never", testutil.Date(2024, 1, 2))

	report := func(id uint, n int) {
		for i := 0; i < n; i++ {
			require.NoError(t, f.spotted.RecordReport(ctx, id, nil, ""))
		}
	}
	report(once.ID, 1)
	report(twiceNew.ID, 2)
	report(twiceOld.ID, 2)

	rows, err := f.spotted.ListReported(ctx, fullSession)
	require.NoError(t, err)
	assert.Equal(t, []uint{twiceOld.ID, twiceNew.ID, once.ID}, ids(rows))
}

func TestDeleteRemovesItemAndReports(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	item := f.item(t, models.KindPost, "doomed", testutil.Date(2024, 3, 1))
	keep := f.item(t, models.KindPost, "kept", testutil.Date(2024, 3, 2))

	require.NoError(t, f.posts.RecordReport(ctx, item.ID, nil, "a"))
	require.NoError(t, f.posts.RecordReport(ctx, keep.ID, nil, "b"))

	require.NoError(t, f.posts.Delete(ctx, fullSession, item.ID))

	_, err := f.posts.Get(ctx, fullSession, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var remaining int64
	require.NoError(t, f.db.Model(&models.ContentReport{}).Where("item_id = ?", item.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	reported, err := f.posts.ListReported(ctx, fullSession)
	require.NoError(t, err)
	assert.Equal(t, []uint{keep.ID}, ids(reported))

	assert.ErrorIs(t, f.posts.Delete(ctx, fullSession, item.ID), ErrNotFound)
}

func TestListAllOldestFirst(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	newer := f.item(t, models.KindPost, "newer", testutil.Date(2024, 2, 1))
	older := f.item(t, models.KindPost, "older", testutil.Date(2024, 1, 1))
	tied := f.item(t, models.KindPost, "tied", testutil.Date(2024, 1, 1))
	require.NoError(t, f.posts.Reject(ctx, fullSession, older.ID))
	require.NoError(t, f.posts.Approve(ctx, fullSession, newer.ID))

	rows, err := f.posts.ListAll(ctx, fullSession)
	require.NoError(t, err)
	assert.Equal(t, []uint{older.ID, tied.ID, newer.ID}, ids(rows))
}

func TestContentRequiresFullRole(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	item := f.item(t, models.KindPost, "x", testutil.Date(2024, 3, 1))

	_, err := f.posts.ListPending(ctx, usersOnlySession)
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.ErrorIs(t, f.posts.Approve(ctx, usersOnlySession, item.ID), access.ErrForbidden)
	assert.ErrorIs(t, f.spotted.Delete(ctx, usersOnlySession, item.ID), access.ErrForbidden)

	_, err = f.posts.ListReported(ctx, nil)
	assert.ErrorIs(t, err, access.ErrUnauthenticated)
	assert.ErrorIs(t, f.posts.SetStatus(ctx, nil, item.ID, "approved"), access.ErrUnauthenticated)

	row, err := f.posts.Get(ctx, fullSession, item.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusReceived), row.Status)
}

func TestSubmitContent(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	row, err := f.spotted.Submit(ctx, &dto.SubmitContentRequest{
		CreatorID: f.creator.ID,
		SchoolID:  &f.school.ID,
		Content:   "  <b>Ti ho visto</b> in biblioteca ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ti ho visto in biblioteca", row.Content)
	assert.Equal(t, string(models.StatusReceived), row.Status)
	assert.Equal(t, models.DefaultSpottedColor, row.Color)
	assert.Zero(t, row.ReportCount)

	created := testutil.Date(2023, 12, 24)
	post, err := f.posts.Submit(ctx, &dto.SubmitContentRequest{
		CreatorID:         f.creator.ID,
		CityID:            &f.city.ID,
		Content:           "Buone feste",
		Color:             "#000000",
		CreationTimestamp: &created,
	})
	require.NoError(t, err)
	assert.Empty(t, post.Color)
	assert.True(t, created.Equal(post.CreationTimestamp))
	require.NotNil(t, post.CityName)
	assert.Equal(t, "Milano", *post.CityName)
}

func TestSubmitRejectsBadInput(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	_, err := f.posts.Submit(ctx, &dto.SubmitContentRequest{CreatorID: f.creator.ID, Content: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.posts.Submit(ctx, &dto.SubmitContentRequest{CreatorID: 4242, Content: "hi"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.posts.Submit(ctx, &dto.SubmitContentRequest{CreatorID: f.creator.ID, SchoolID: testutil.UintPtr(777), Content: "hi"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	var n int64
	require.NoError(t, f.db.Model(&models.ContentItem{}).Count(&n).Error)
	assert.Zero(t, n)
}
