package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestParseSort(t *testing.T) {
	t.Parallel()
	assert.Equal(t, SortRecent, ParseSort(""))
	assert.Equal(t, SortRecent, ParseSort("recent"))
	assert.Equal(t, SortLike, ParseSort(" LIKE "))
	assert.Equal(t, SortPopular, ParseSort("popular"))
	assert.Equal(t, SortRecent, ParseSort("hot"), "unknown sort tokens fall back to recent")
}

func TestListQuery_Offset(t *testing.T) {
	t.Parallel()
	tests := []struct {
		q    ListQuery
		want int
	}{
		{ListQuery{Page: 1, Size: 10}, 0},
		{ListQuery{Page: 3, Size: 10}, 20},
		{ListQuery{Page: 2, Size: 5}, 5},
		{ListQuery{Page: 0, Size: 5}, 0},
		{ListQuery{Page: 2, Size: 99}, MaxPageSize},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.q.Offset(), "%+v", tt.q)
	}
}

func TestPosterRepository_ListByLocation_QueryShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPosterRepository(db)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	// The count query must stay free of the aggregation joins.
	mock.ExpectQuery(`^SELECT count\(\*\) FROM "posters" WHERE posters\.location_id = \$1$`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posters.*, COUNT(DISTINCT poster_likes.id) AS like_count, COUNT(DISTINCT comments.id) AS comment_count, members.nickname AS writer_nickname, false AS liked FROM "posters" `) +
		regexp.QuoteMeta(`LEFT JOIN poster_likes ON poster_likes.poster_id = posters.id `) +
		regexp.QuoteMeta(`LEFT JOIN comments ON comments.poster_id = posters.id `) +
		regexp.QuoteMeta(`LEFT JOIN members ON members.id = posters.member_id `) +
		regexp.QuoteMeta(`WHERE posters.location_id = $1 GROUP BY posters.id, members.id ORDER BY like_count DESC, posters.created_at DESC, posters.id DESC LIMIT $2 OFFSET $3`)).
		WithArgs(7, 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "location_id", "member_id", "title", "content", "created_at",
			"like_count", "comment_count", "writer_nickname", "liked",
		}).
			AddRow(21, 7, 3, "first", "c", created, 4, 2, "bob", false).
			AddRow(20, 7, 3, "second", "c", created, 1, 0, "bob", false))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "poster_images" WHERE poster_id IN ($1,$2) ORDER BY id`)).
		WithArgs(21, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "poster_id", "upload_name", "store_name"}).
			AddRow(1, 21, "a.jpg", "0b5c9a4e-3a66-4f3c-9b71-0d5a8b8f5d11.jpg"))

	rows, total, err := repo.ListByLocation(context.Background(), 7, ListQuery{Page: 2, Size: 5, Sort: SortLike})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(4), rows[0].LikeCount)
	assert.Equal(t, int64(2), rows[0].CommentCount)
	assert.Equal(t, "bob", rows[0].WriterNickname)
	require.Len(t, rows[0].Images, 1)
	assert.Equal(t, "/api/images/0b5c9a4e-3a66-4f3c-9b71-0d5a8b8f5d11.jpg", rows[0].Images[0].URL)
	assert.Empty(t, rows[1].Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByPoster_ViewerLikedSubquery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(`^SELECT count\(\*\) FROM "comments" WHERE comments\.poster_id = \$1$`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(regexp.QuoteMeta(`EXISTS(SELECT 1 FROM comment_likes viewer_like WHERE viewer_like.comment_id = comments.id AND viewer_like.member_id = $1) AS liked FROM "comments"`) +
		`.*` + regexp.QuoteMeta(`ORDER BY comments.created_at DESC, comments.id DESC LIMIT $3`)).
		WithArgs(9, 3, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "poster_id", "member_id", "content", "like_count", "writer_nickname", "liked"}).
			AddRow(1, 3, 9, "hi", 1, "me", true))

	rows, total, err := repo.ListByPoster(context.Background(), 3, ListQuery{Page: 1, Size: 5, ViewerID: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListByPoster_EmptySkipsRowQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(`^SELECT count\(\*\) FROM "comments" WHERE comments\.poster_id = \$1$`).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rows, total, err := repo.ListByPoster(context.Background(), 404, ListQuery{Page: 1, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
