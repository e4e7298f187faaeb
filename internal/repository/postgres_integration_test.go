//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"spotboard/internal/config"
	"spotboard/internal/database"
	"spotboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("spotboard"),
		postgres.WithUsername("spotboard"),
		postgres.WithPassword("spotboard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(gormpostgres.Open(dsn), &config.Config{Env: "test", DBDriver: "postgres", DBMaxOpenConns: 20})
	require.NoError(t, err)
	return db
}

func TestPostgres_ConcurrentLikesLeaveOneRow(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	likes := NewLikeRepository(db)

	member := &models.Member{LoginID: "racer", Password: "x", Nickname: "racer"}
	require.NoError(t, db.Create(member).Error)
	loc := &models.Location{Latitude: 1, Longitude: 1, Title: "spot"}
	require.NoError(t, db.Create(loc).Error)

	const workers = 12
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- likes.Like(ctx, LikeLocation, member.ID, loc.ID)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case models.HasCode(err, models.CodeDuplicateLike):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)

	n, err := likes.Count(ctx, LikeLocation, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPostgres_AggregatedListing(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	posters := NewPosterRepository(db)
	likes := NewLikeRepository(db)

	writer := &models.Member{LoginID: "writer", Password: "x", Nickname: "writer"}
	fan := &models.Member{LoginID: "fan", Password: "x", Nickname: "fan"}
	require.NoError(t, db.Create(writer).Error)
	require.NoError(t, db.Create(fan).Error)
	loc := &models.Location{Latitude: 1, Longitude: 1, Title: "spot"}
	require.NoError(t, db.Create(loc).Error)

	var last *models.Poster
	for i := 0; i < 3; i++ {
		last = &models.Poster{LocationID: loc.ID, MemberID: writer.ID, Title: "p", Content: "c"}
		require.NoError(t, posters.Create(ctx, last))
		require.NoError(t, db.Create(&models.Comment{PosterID: last.ID, MemberID: fan.ID, Content: "hi"}).Error)
	}
	require.NoError(t, likes.Like(ctx, LikePoster, fan.ID, last.ID))
	require.NoError(t, likes.Like(ctx, LikePoster, writer.ID, last.ID))

	rows, total, err := posters.ListByLocation(ctx, loc.ID, ListQuery{Page: 1, Size: 2, Sort: SortLike, ViewerID: fan.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 2)
	assert.Equal(t, last.ID, rows[0].ID)
	assert.Equal(t, int64(2), rows[0].LikeCount)
	assert.Equal(t, int64(1), rows[0].CommentCount)
	assert.True(t, rows[0].Liked)
	assert.Equal(t, "writer", rows[0].WriterNickname)
}
