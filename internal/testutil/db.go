// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"spotboard/internal/config"
	"spotboard/internal/database"
	"spotboard/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Uint64

// NewTestDB opens a private, migrated in-memory SQLite database. Each call
// gets its own named database so parallel tests never share rows.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbSeq.Add(1))

	db, err := database.Open(sqlite.Open(dsn), &config.Config{Env: "test", DBDriver: "sqlite"})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateMember inserts a member with a low-cost bcrypt hash of password.
func CreateMember(t testing.TB, db *gorm.DB, loginID string, role models.Role) *models.Member {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	m := &models.Member{
		LoginID:  loginID,
		Password: string(hash),
		Nickname: "nick-" + loginID,
		Role:     role,
		Kind:     models.KindNormal,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// CreateLocation inserts an approved location.
func CreateLocation(t testing.TB, db *gorm.DB, title string) *models.Location {
	t.Helper()

	loc := &models.Location{Latitude: 37.5, Longitude: 127.0, Title: title, Approved: true}
	require.NoError(t, db.Create(loc).Error)
	return loc
}

// CreatePoster inserts a poster written by memberID under locationID.
func CreatePoster(t testing.TB, db *gorm.DB, locationID, memberID uint, title string) *models.Poster {
	t.Helper()

	p := &models.Poster{LocationID: locationID, MemberID: memberID, Title: title, Content: "content of " + title}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateComment inserts a comment written by memberID under posterID.
func CreateComment(t testing.TB, db *gorm.DB, posterID, memberID uint, content string) *models.Comment {
	t.Helper()

	c := &models.Comment{PosterID: posterID, MemberID: memberID, Content: content}
	require.NoError(t, db.Create(c).Error)
	return c
}
