package seed

import (
	"context"
	"log/slog"
	"testing"

	"spotboard/internal/models"
	"spotboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testOptions() Options {
	return Options{Members: 4, Locations: 3, PostersPerLocation: 2, CommentsPerPoster: 2, Seed: 42, FastHash: true}
}

func TestFactory_Run(t *testing.T) {
	db := testutil.NewTestDB(t)
	f := NewFactory(db, testOptions(), slog.New(slog.DiscardHandler))

	res, err := f.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Members)
	assert.Equal(t, 3, res.Locations)
	assert.Equal(t, 6, res.Posters)
	assert.Equal(t, 12, res.Comments)

	var count int64
	require.NoError(t, db.Model(&models.Member{}).Count(&count).Error)
	assert.EqualValues(t, 4, count)
	require.NoError(t, db.Model(&models.Poster{}).Count(&count).Error)
	assert.EqualValues(t, 6, count)
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.EqualValues(t, 12, count)

	var likes, n int64
	for _, model := range []interface{}{&models.LocationLike{}, &models.PosterLike{}, &models.CommentLike{}} {
		require.NoError(t, db.Model(model).Count(&n).Error)
		likes += n
	}
	assert.EqualValues(t, res.Likes, likes)

	var members []models.Member
	require.NoError(t, db.Order("id").Find(&members).Error)
	assert.Equal(t, models.RoleAdmin, members[0].Role)
	for _, m := range members[1:] {
		assert.Equal(t, models.RoleUser, m.Role)
	}
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(members[1].Password), []byte(DemoPassword)))
}

func TestFactory_NoMembersSkipsContent(t *testing.T) {
	db := testutil.NewTestDB(t)
	opts := testOptions()
	opts.Members = 0

	res, err := NewFactory(db, opts, slog.New(slog.DiscardHandler)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Result{}, res)
}

func TestFactory_SameSeedSameData(t *testing.T) {
	a := NewFactory(nil, testOptions(), slog.New(slog.DiscardHandler))
	b := NewFactory(nil, testOptions(), slog.New(slog.DiscardHandler))

	for i := 0; i < 5; i++ {
		ma, mb := a.BuildMember(i), b.BuildMember(i)
		assert.Equal(t, ma.LoginID, mb.LoginID)
		assert.Equal(t, ma.Nickname, mb.Nickname)
	}
}

func TestFactory_BuildersRespectFieldLimits(t *testing.T) {
	f := NewFactory(nil, testOptions(), slog.New(slog.DiscardHandler))
	for i := 0; i < 50; i++ {
		m := f.BuildMember(i)
		assert.LessOrEqual(t, len(m.Nickname), 20)
		assert.Regexp(t, `^[a-z0-9]+_\d+$`, m.LoginID)
		assert.Equal(t, models.KindNormal, m.Kind)

		loc := f.BuildLocation()
		assert.LessOrEqual(t, len(loc.Title), 100)
		assert.LessOrEqual(t, len(loc.Address), 255)
		assert.InDelta(t, 0, loc.Latitude, 90)
		assert.InDelta(t, 0, loc.Longitude, 180)
	}
}
