package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"spotboard/internal/database"
	"spotboard/internal/models"
	"spotboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	locations LocationRepository
	posters   PosterRepository
	comments  CommentRepository
	members   MemberRepository
	likes     LikeRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	return &fixture{
		db:        db,
		locations: NewLocationRepository(db),
		posters:   NewPosterRepository(db),
		comments:  NewCommentRepository(db),
		members:   NewMemberRepository(db),
		likes:     NewLikeRepository(db),
	}
}

func ids[T any](rows []T, id func(T) uint) []uint {
	out := make([]uint, len(rows))
	for i, r := range rows {
		out[i] = id(r)
	}
	return out
}

func posterID(p models.PosterSummary) uint { return p.ID }

func TestPagination_MathAndTotalCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	writer := testutil.CreateMember(t, f.db, "writer", models.RoleUser)
	loc := testutil.CreateLocation(t, f.db, "park")
	other := testutil.CreateLocation(t, f.db, "beach")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var created []uint
	for i := 0; i < 7; i++ {
		p := &models.Poster{LocationID: loc.ID, MemberID: writer.ID, Title: fmt.Sprintf("p%d", i), Content: "x", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, f.posters.Create(ctx, p))
		created = append(created, p.ID)
	}
	testutil.CreatePoster(t, f.db, other.ID, writer.ID, "elsewhere")

	// recent: newest first
	want := []uint{created[6], created[5], created[4], created[3], created[2], created[1], created[0]}

	var seen []uint
	for page := 1; page <= 3; page++ {
		rows, total, err := f.posters.ListByLocation(ctx, loc.ID, ListQuery{Page: page, Size: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(7), total, "totalCount must not depend on the page")
		assert.LessOrEqual(t, len(rows), 3)
		seen = append(seen, ids(rows, posterID)...)
	}
	assert.Equal(t, want, seen)

	rows, total, err := f.posters.ListByLocation(ctx, loc.ID, ListQuery{Page: 4, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Empty(t, rows)
}

func TestSortStability_TiesBrokenByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	writer := testutil.CreateMember(t, f.db, "writer", models.RoleUser)
	fan := testutil.CreateMember(t, f.db, "fan", models.RoleUser)
	loc := testutil.CreateLocation(t, f.db, "park")

	same := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var created []uint
	for i := 0; i < 4; i++ {
		p := &models.Poster{LocationID: loc.ID, MemberID: writer.ID, Title: fmt.Sprintf("p%d", i), Content: "x", CreatedAt: same}
		require.NoError(t, f.posters.Create(ctx, p))
		created = append(created, p.ID)
	}
	require.NoError(t, f.likes.Like(ctx, LikePoster, fan.ID, created[1]))

	for _, sort := range []Sort{SortRecent, SortLike} {
		first, _, err := f.posters.ListByLocation(ctx, loc.ID, ListQuery{Page: 1, Size: 10, Sort: sort})
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			again, _, err := f.posters.ListByLocation(ctx, loc.ID, ListQuery{Page: 1, Size: 10, Sort: sort})
			require.NoError(t, err)
			assert.Equal(t, ids(first, posterID), ids(again, posterID), "sort %s", sort)
		}
	}

	recent, _, err := f.posters.ListByLocation(ctx, loc.ID, ListQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint{created[3], created[2], created[1], created[0]}, ids(recent, posterID))

	liked, _, err := f.posters.ListByLocation(ctx, loc.ID, ListQuery{Page: 1, Size: 10, Sort: SortLike})
	require.NoError(t, err)
	assert.Equal(t, []uint{created[1], created[3], created[2], created[0]}, ids(liked, posterID))
}

func TestCountCorrectness_LikesAndComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	writer := testutil.CreateMember(t, f.db, "writer", models.RoleUser)
	a := testutil.CreateMember(t, f.db, "alice", models.RoleUser)
	b := testutil.CreateMember(t, f.db, "bobby", models.RoleUser)
	loc := testutil.CreateLocation(t, f.db, "park")
	p := testutil.CreatePoster(t, f.db, loc.ID, writer.ID, "post")

	c1 := testutil.CreateComment(t, f.db, p.ID, a.ID, "one")
	c2 := testutil.CreateComment(t, f.db, p.ID, b.ID, "two")
	testutil.CreateComment(t, f.db, p.ID, b.ID, "three")

	require.NoError(t, f.likes.Like(ctx, LikePoster, a.ID, p.ID))
	require.NoError(t, f.likes.Like(ctx, LikePoster, b.ID, p.ID))
	require.NoError(t, f.likes.Like(ctx, LikePoster, writer.ID, p.ID))
	require.NoError(t, f.likes.Unlike(ctx, LikePoster, b.ID, p.ID))
	require.NoError(t, f.db.Delete(&models.Comment{}, c2.ID).Error)
	require.NoError(t, f.likes.Like(ctx, LikeComment, b.ID, c1.ID))
	require.NoError(t, f.likes.Like(ctx, LikeLocation, a.ID, loc.ID))

	summary, err := f.posters.Summary(ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.LikeCount)
	assert.Equal(t, int64(2), summary.CommentCount)
	assert.True(t, summary.Liked)
	assert.Equal(t, "nick-writer", summary.WriterNickname)

	n, err := f.likes.Count(ctx, LikePoster, p.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.LikeCount, n)

	anon, err := f.posters.Summary(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.False(t, anon.Liked)

	comments, total, err := f.comments.ListByPoster(ctx, p.ID, ListQuery{Page: 1, Size: 5, ViewerID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, comments, 2)
	for _, c := range comments {
		if c.ID == c1.ID {
			assert.Equal(t, int64(1), c.LikeCount)
			assert.True(t, c.Liked)
		} else {
			assert.Equal(t, int64(0), c.LikeCount)
		}
	}

	locRow, err := f.locations.Summary(ctx, loc.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), locRow.LikeCount)
	assert.Equal(t, int64(1), locRow.PosterCount)
}

func TestLike_DuplicateRejectedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := testutil.CreateMember(t, f.db, "alice", models.RoleUser)
	loc := testutil.CreateLocation(t, f.db, "park")

	require.NoError(t, f.likes.Like(ctx, LikeLocation, m.ID, loc.ID))
	err := f.likes.Like(ctx, LikeLocation, m.ID, loc.ID)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeDuplicateLike))

	var rows int64
	require.NoError(t, f.db.Model(&models.LocationLike{}).Where("member_id = ? AND location_id = ?", m.ID, loc.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestLike_UniqueIndexIsTheBackstop(t *testing.T) {
	f := newFixture(t)
	m := testutil.CreateMember(t, f.db, "alice", models.RoleUser)
	loc := testutil.CreateLocation(t, f.db, "park")

	require.NoError(t, f.db.Create(&models.LocationLike{MemberID: m.ID, LocationID: loc.ID}).Error)
	err := f.db.Create(&models.LocationLike{MemberID: m.ID, LocationID: loc.ID}).Error
	require.Error(t, err, "a second row for the same pair must be refused by storage")
}

func TestLike_MissingTargetAndUnlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := testutil.CreateMember(t, f.db, "alice", models.RoleUser)

	err := f.likes.Like(ctx, LikeComment, m.ID, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	err = f.likes.Unlike(ctx, LikePoster, m.ID, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestCreate_ChildOfMissingParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := testutil.CreateMember(t, f.db, "alice", models.RoleUser)

	err := f.posters.Create(ctx, &models.Poster{LocationID: 42, MemberID: m.ID, Title: "t", Content: "c"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	err = f.comments.Create(ctx, &models.Comment{PosterID: 42, MemberID: m.ID, Content: "c"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	err = f.likes.Like(ctx, LikeLocation, 4242, testutil.CreateLocation(t, f.db, "park").ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound), "a deleted liker is NOT_FOUND")
}

func TestStorage_RefusesOrphanRows(t *testing.T) {
	f := newFixture(t)
	m := testutil.CreateMember(t, f.db, "alice", models.RoleUser)
	loc := testutil.CreateLocation(t, f.db, "park")
	p := testutil.CreatePoster(t, f.db, loc.ID, m.ID, "hello")
	c := testutil.CreateComment(t, f.db, p.ID, m.ID, "hi")

	tests := []struct {
		name string
		row  interface{}
	}{
		{"poster under missing location", &models.Poster{LocationID: 999, MemberID: m.ID, Title: "t", Content: "c"}},
		{"poster by missing member", &models.Poster{LocationID: loc.ID, MemberID: 999, Title: "t", Content: "c"}},
		{"comment under missing poster", &models.Comment{PosterID: 999, MemberID: m.ID, Content: "c"}},
		{"location like by missing member", &models.LocationLike{MemberID: 999, LocationID: loc.ID}},
		{"location like of missing location", &models.LocationLike{MemberID: m.ID, LocationID: 999}},
		{"poster like of missing poster", &models.PosterLike{MemberID: m.ID, PosterID: 999}},
		{"comment like by missing member", &models.CommentLike{MemberID: 999, CommentID: c.ID}},
		{"comment like of missing comment", &models.CommentLike{MemberID: m.ID, CommentID: 999}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.db.Create(tt.row).Error
			require.Error(t, err)
			assert.True(t, database.IsForeignKeyViolation(err), "unexpected error: %v", err)
		})
	}

	t.Run("referenced parent cannot be deleted directly", func(t *testing.T) {
		err := f.db.Delete(&models.Poster{}, p.ID).Error
		require.Error(t, err)
		assert.True(t, database.IsForeignKeyViolation(err))
	})
}

func TestLocationRepository_ListFiltersAndBest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fan := testutil.CreateMember(t, f.db, "fanfan", models.RoleUser)

	seoul := &models.Location{Latitude: 37.56, Longitude: 126.97, Title: "Seoul Tower", Address: "Namsan", Approved: true}
	busan := &models.Location{Latitude: 35.1, Longitude: 129.04, Title: "Haeundae", Description: "Beach in Busan"}
	jeju := &models.Location{Latitude: 33.4, Longitude: 126.5, Title: "Hallasan", Approved: true,
		Images: []models.LocationImage{{UploadName: "a.png", StoreName: "1b5c9a4e-3a66-4f3c-9b71-0d5a8b8f5d11.png"}}}
	for _, l := range []*models.Location{seoul, busan, jeju} {
		require.NoError(t, f.locations.Create(ctx, l))
	}
	require.NoError(t, f.likes.Like(ctx, LikeLocation, fan.ID, jeju.ID))

	rows, total, err := f.locations.List(ctx, LocationFilter{Bounds: &BoundingBox{MinLat: 35, MaxLat: 38, MinLng: 126, MaxLng: 130}}, ListQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.ElementsMatch(t, []uint{seoul.ID, busan.ID}, ids(rows, func(l models.LocationSummary) uint { return l.ID }))

	rows, total, err = f.locations.List(ctx, LocationFilter{Keyword: "BUSAN"}, ListQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, busan.ID, rows[0].ID)

	approved := true
	_, total, err = f.locations.List(ctx, LocationFilter{Approved: &approved}, ListQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	best, err := f.locations.Best(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, best, 3)
	assert.Equal(t, jeju.ID, best[0].ID)
	assert.True(t, best[0].Liked)
	require.Len(t, best[0].Images, 1)
	assert.Equal(t, "/api/images/1b5c9a4e-3a66-4f3c-9b71-0d5a8b8f5d11.png", best[0].Images[0].URL)

	require.NoError(t, f.locations.SetApproved(ctx, busan.ID, true))
	got, err := f.locations.GetByID(ctx, busan.ID)
	require.NoError(t, err)
	assert.True(t, got.Approved)

	err = f.locations.SetApproved(ctx, 999, true)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestLocationRepository_KeywordMatchesWildcardsLiterally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	full := &models.Location{Latitude: 1, Longitude: 1, Title: "100% Harbor"}
	plain := &models.Location{Latitude: 1, Longitude: 1, Title: "1000 Harbor"}
	under := &models.Location{Latitude: 1, Longitude: 1, Title: "a_b bridge"}
	other := &models.Location{Latitude: 1, Longitude: 1, Title: "axb bridge"}
	slash := &models.Location{Latitude: 1, Longitude: 1, Title: `back\slash`}
	for _, l := range []*models.Location{full, plain, under, other, slash} {
		require.NoError(t, f.locations.Create(ctx, l))
	}

	tests := []struct {
		keyword string
		want    []uint
	}{
		{"100%", []uint{full.ID}},
		{"a_b", []uint{under.ID}},
		{`k\s`, []uint{slash.ID}},
		{"harbor", []uint{full.ID, plain.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			rows, total, err := f.locations.List(ctx, LocationFilter{Keyword: tt.keyword}, ListQuery{Page: 1, Size: 10})
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
			assert.ElementsMatch(t, tt.want, ids(rows, func(l models.LocationSummary) uint { return l.ID }))
		})
	}
}

func TestBest_LimitedToFive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	writer := testutil.CreateMember(t, f.db, "writer", models.RoleUser)
	loc := testutil.CreateLocation(t, f.db, "park")
	for i := 0; i < 8; i++ {
		testutil.CreatePoster(t, f.db, loc.ID, writer.ID, fmt.Sprintf("p%d", i))
	}

	best, err := f.posters.Best(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, best, BestOfLimit)
}

func TestListings_EmptyResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rows, total, err := f.comments.ListByPoster(ctx, 12345, ListQuery{Page: 1, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, rows)

	locs, total, err := f.locations.List(ctx, LocationFilter{}, ListQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, locs)

	best, err := f.posters.Best(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, best)
}

func TestMemberRepository_UniquenessChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := testutil.CreateMember(t, f.db, "alice", models.RoleUser)

	taken, err := f.members.LoginIDTaken(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = f.members.NicknameTaken(ctx, m.Nickname, m.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a member's own nickname is not taken for them")

	taken, err = f.members.NicknameTaken(ctx, m.Nickname, 0)
	require.NoError(t, err)
	assert.True(t, taken)

	got, err := f.members.GetByLoginID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)

	dup := &models.Member{LoginID: "alice", Password: "x", Nickname: "other"}
	assert.Error(t, f.members.Create(ctx, dup), "login id unique index")

	require.NoError(t, f.members.SetRole(ctx, m.ID, models.RoleAdmin))
	reloaded, err := f.members.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsAdmin())
}

func TestMemberRepository_ReplaceImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := testutil.CreateMember(t, f.db, "alice", models.RoleUser)

	first := &models.MemberImage{UploadName: "a.png", StoreName: "2b5c9a4e-3a66-4f3c-9b71-0d5a8b8f5d11.png"}
	replaced, err := f.members.ReplaceImage(ctx, m.ID, first)
	require.NoError(t, err)
	assert.Empty(t, replaced)

	second := &models.MemberImage{UploadName: "b.png", StoreName: "3b5c9a4e-3a66-4f3c-9b71-0d5a8b8f5d11.png"}
	replaced, err = f.members.ReplaceImage(ctx, m.ID, second)
	require.NoError(t, err)
	assert.Equal(t, first.StoreName, replaced)

	got, err := f.members.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Image)
	assert.Equal(t, second.StoreName, got.Image.StoreName)
	assert.Equal(t, models.ImagePath(second.StoreName), got.Image.URL)
}
