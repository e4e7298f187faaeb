package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"spotboard/internal/config"
	"spotboard/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:                 "postgres",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_SQLiteUsesSingleConnection(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, configurePool(db, &config.Config{DBDriver: "sqlite", DBMaxOpenConns: 40}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestOpen_MigratesOutsideProduction(t *testing.T) {
	cfg := &config.Config{Env: "test", DBDriver: "sqlite"}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())

	db, err := Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, db.Migrator().HasIndex(&models.PosterLike{}, "idx_poster_likes_member_target"))
}

func TestPersistentModels_IncludesEveryLikeTable(t *testing.T) {
	var likes int
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.LocationLike, *models.PosterLike, *models.CommentLike:
			likes++
		}
	}
	assert.Equal(t, 3, likes)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"postgres 23505", &pgconn.PgError{Code: "23505", ConstraintName: "idx_members_nickname"}, true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite", errors.New("UNIQUE constraint failed: members.login_id"), true},
		{"other", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestViolatedConstraint(t *testing.T) {
	assert.Equal(t, "idx_members_email", ViolatedConstraint(&pgconn.PgError{Code: "23505", ConstraintName: "idx_members_email"}))
	assert.Equal(t, "members.nickname", ViolatedConstraint(errors.New("UNIQUE constraint failed: members.nickname")))
	assert.Equal(t, "", ViolatedConstraint(errors.New("boom")))
}

func TestIsForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("insert: %w", gorm.ErrForeignKeyViolated), true},
		{"postgres 23503", &pgconn.PgError{Code: "23503", ConstraintName: "fk_posters_location"}, true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite", errors.New("FOREIGN KEY constraint failed"), true},
		{"sqlite unique", errors.New("UNIQUE constraint failed: members.login_id"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsForeignKeyViolation(tt.err))
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "spot.db?_foreign_keys=on", SQLiteDSN("spot.db"))
	assert.Equal(t, "file:spot.db?cache=shared&_foreign_keys=on", SQLiteDSN("file:spot.db?cache=shared"))
	assert.Equal(t, "spot.db?_foreign_keys=off", SQLiteDSN("spot.db?_foreign_keys=off"))
}

func TestDialector_SQLiteEnforcesForeignKeys(t *testing.T) {
	cfg := &config.Config{Env: "test", DBDriver: "sqlite", DBSQLitePath: filepath.Join(t.TempDir(), "fk.db")}
	db, err := Open(Dialector(cfg), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	err = db.Create(&models.Comment{PosterID: 77, MemberID: 77, Content: "orphan"}).Error
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
}
