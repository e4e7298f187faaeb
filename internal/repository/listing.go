// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Sort selects the ordering of a listing.
type Sort string

const (
	SortRecent  Sort = "recent"
	SortLike    Sort = "like"
	SortPopular Sort = "popular"
)

// ParseSort maps a query token to a Sort. Unknown tokens fall back to recent.
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortLike:
		return SortLike
	case SortPopular:
		return SortPopular
	default:
		return SortRecent
	}
}

const (
	// MaxPageSize is the largest page a listing serves. Callers reject
	// larger requests before they reach the repository.
	MaxPageSize = 30
	// BestOfLimit is the size of the "best" listings.
	BestOfLimit = 5
)

// ListQuery is a 1-based page request plus the viewer whose likes are
// reported in the liked column. ViewerID 0 is anonymous.
type ListQuery struct {
	Page     int
	Size     int
	Sort     Sort
	ViewerID uint
}

// Normalize clamps the page to at least 1 and the size to 1..MaxPageSize.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 {
		q.Size = 1
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	if q.Sort == "" {
		q.Sort = SortRecent
	}
	return q
}

// Offset is the zero-based row offset of the page.
func (q ListQuery) Offset() int {
	q = q.Normalize()
	return (q.Page - 1) * q.Size
}

// countJoin is a child relation counted per row.
type countJoin struct {
	table string
	fk    string
	alias string
}

// listSpec describes how one entity's listing is aggregated. Every derived
// count comes from a LEFT JOIN in the same statement grouped by the row's
// primary key.
type listSpec struct {
	table     string
	likeTable string
	likeFK    string
	counts    []countJoin
	// writer joins members for the writer's nickname.
	writer bool
}

var (
	locationList = listSpec{
		table:     "locations",
		likeTable: "location_likes",
		likeFK:    "location_id",
		counts:    []countJoin{{table: "posters", fk: "location_id", alias: "poster_count"}},
	}
	posterList = listSpec{
		table:     "posters",
		likeTable: "poster_likes",
		likeFK:    "poster_id",
		counts:    []countJoin{{table: "comments", fk: "poster_id", alias: "comment_count"}},
		writer:    true,
	}
	commentList = listSpec{
		table:     "comments",
		likeTable: "comment_likes",
		likeFK:    "comment_id",
		writer:    true,
	}
)

func (s listSpec) col(name string) string {
	return s.table + "." + name
}

// rows builds the aggregated row query without ordering or paging.
func (s listSpec) rows(db *gorm.DB, viewerID uint) *gorm.DB {
	cols := []string{
		s.table + ".*",
		fmt.Sprintf("COUNT(DISTINCT %s.id) AS like_count", s.likeTable),
	}
	joins := []string{
		fmt.Sprintf("LEFT JOIN %[1]s ON %[1]s.%[2]s = %[3]s.id", s.likeTable, s.likeFK, s.table),
	}
	group := []string{s.col("id")}

	for _, cj := range s.counts {
		cols = append(cols, fmt.Sprintf("COUNT(DISTINCT %s.id) AS %s", cj.table, cj.alias))
		joins = append(joins, fmt.Sprintf("LEFT JOIN %[1]s ON %[1]s.%[2]s = %[3]s.id", cj.table, cj.fk, s.table))
	}
	if s.writer {
		cols = append(cols, "members.nickname AS writer_nickname")
		joins = append(joins, fmt.Sprintf("LEFT JOIN members ON members.id = %s", s.col("member_id")))
		group = append(group, "members.id")
	}

	var args []interface{}
	if viewerID != 0 {
		cols = append(cols, fmt.Sprintf(
			"EXISTS(SELECT 1 FROM %s viewer_like WHERE viewer_like.%s = %s AND viewer_like.member_id = ?) AS liked",
			s.likeTable, s.likeFK, s.col("id"),
		))
		args = append(args, viewerID)
	} else {
		cols = append(cols, "false AS liked")
	}

	q := db.Table(s.table).Select(strings.Join(cols, ", "), args...)
	for _, j := range joins {
		q = q.Joins(j)
	}
	return q.Group(strings.Join(group, ", "))
}

func (s listSpec) order(db *gorm.DB, sort Sort) *gorm.DB {
	switch sort {
	case SortLike, SortPopular:
		return db.Order(fmt.Sprintf("like_count DESC, %s DESC, %s DESC", s.col("created_at"), s.col("id")))
	default:
		return db.Order(fmt.Sprintf("%s DESC, %s DESC", s.col("created_at"), s.col("id")))
	}
}

// page runs the count query and then the row query for one page. The count
// query carries the scope only, never the aggregation joins.
func (s listSpec) page(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB, q ListQuery, dest interface{}) (int64, error) {
	q = q.Normalize()

	var total int64
	if err := scope(db.WithContext(ctx).Table(s.table)).Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	rows := scope(s.rows(db.WithContext(ctx), q.ViewerID))
	err := s.order(rows, q.Sort).
		Limit(q.Size).
		Offset(q.Offset()).
		Scan(dest).Error
	return total, err
}

// best returns the top BestOfLimit rows by like count.
func (s listSpec) best(ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB, viewerID uint, dest interface{}) error {
	rows := scope(s.rows(db.WithContext(ctx), viewerID))
	return s.order(rows, SortLike).Limit(BestOfLimit).Scan(dest).Error
}

// one loads a single aggregated row by id; found is false when absent.
func (s listSpec) one(ctx context.Context, db *gorm.DB, id, viewerID uint, dest interface{}) (bool, error) {
	res := s.rows(db.WithContext(ctx), viewerID).Where(s.col("id")+" = ?", id).Limit(1).Scan(dest)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func noScope(db *gorm.DB) *gorm.DB { return db }
