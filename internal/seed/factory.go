// Package seed fills a database with demo members, locations, posters,
// comments and likes. It is meant for development and tests only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spotboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password every seeded member signs in with.
const DemoPassword = "password123"

// Options sizes a seed run.
type Options struct {
	Members            int
	Locations          int
	PostersPerLocation int
	CommentsPerPoster  int
	// Seed makes the generated data reproducible. Zero picks a time seed.
	Seed int64
	// FastHash hashes the demo password with bcrypt.MinCost.
	FastHash bool
}

// DefaultOptions is a small, browsable data set.
func DefaultOptions() Options {
	return Options{Members: 10, Locations: 8, PostersPerLocation: 4, CommentsPerPoster: 3}
}

// Result counts what a run inserted.
type Result struct {
	Members   int
	Locations int
	Posters   int
	Comments  int
	Likes     int
}

// Factory builds demo entities and persists them.
type Factory struct {
	db     *gorm.DB
	faker  *gofakeit.Faker
	opts   Options
	logger *slog.Logger
}

func NewFactory(db *gorm.DB, opts Options, logger *slog.Logger) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, faker: gofakeit.New(seed), opts: opts, logger: logger}
}

// Run inserts the whole data set in one transaction. The first member is an
// ADMIN; every other member is a USER.
func (f *Factory) Run(ctx context.Context) (*Result, error) {
	cost := bcrypt.DefaultCost
	if f.opts.FastHash {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	res := &Result{}
	err = f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members, err := f.createMembers(tx, string(hash))
		if err != nil {
			return err
		}
		res.Members = len(members)
		if len(members) == 0 {
			return nil
		}

		for i := 0; i < f.opts.Locations; i++ {
			loc := f.BuildLocation()
			if err := tx.Create(loc).Error; err != nil {
				return fmt.Errorf("create location: %w", err)
			}
			res.Locations++
			if err := f.addLikes(tx, res, members, func(m *models.Member) interface{} {
				return &models.LocationLike{MemberID: m.ID, LocationID: loc.ID}
			}); err != nil {
				return err
			}

			for j := 0; j < f.opts.PostersPerLocation; j++ {
				poster := f.BuildPoster(loc.ID, f.pick(members).ID)
				if err := tx.Create(poster).Error; err != nil {
					return fmt.Errorf("create poster: %w", err)
				}
				res.Posters++
				if err := f.addLikes(tx, res, members, func(m *models.Member) interface{} {
					return &models.PosterLike{MemberID: m.ID, PosterID: poster.ID}
				}); err != nil {
					return err
				}

				for k := 0; k < f.opts.CommentsPerPoster; k++ {
					comment := &models.Comment{
						PosterID: poster.ID,
						MemberID: f.pick(members).ID,
						Content:  f.faker.Sentence(f.faker.Number(4, 14)),
					}
					if err := tx.Create(comment).Error; err != nil {
						return fmt.Errorf("create comment: %w", err)
					}
					res.Comments++
					if err := f.addLikes(tx, res, members, func(m *models.Member) interface{} {
						return &models.CommentLike{MemberID: m.ID, CommentID: comment.ID}
					}); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "seed complete",
		slog.Int("members", res.Members),
		slog.Int("locations", res.Locations),
		slog.Int("posters", res.Posters),
		slog.Int("comments", res.Comments),
		slog.Int("likes", res.Likes),
	)
	return res, nil
}

func (f *Factory) createMembers(tx *gorm.DB, hash string) ([]*models.Member, error) {
	members := make([]*models.Member, 0, f.opts.Members)
	for i := 0; i < f.opts.Members; i++ {
		m := f.BuildMember(i)
		m.Password = hash
		if i == 0 {
			m.Role = models.RoleAdmin
		}
		if err := tx.Create(m).Error; err != nil {
			return nil, fmt.Errorf("create member %s: %w", m.LoginID, err)
		}
		members = append(members, m)
	}
	return members, nil
}

// BuildMember returns an unsaved NORMAL member. The index keeps login ids
// and nicknames unique within a run.
func (f *Factory) BuildMember(i int) *models.Member {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, f.faker.Username())
	if len(base) > 12 {
		base = base[:12]
	}
	if len(base) < 3 {
		base = "user"
	}

	nickname := fmt.Sprintf("%s%d", f.faker.FirstName(), i+1)
	if len(nickname) > 20 {
		nickname = nickname[len(nickname)-20:]
	}
	email := fmt.Sprintf("%s_%d@%s", base, i+1, f.faker.DomainName())

	return &models.Member{
		LoginID:  fmt.Sprintf("%s_%d", base, i+1),
		Nickname: nickname,
		Email:    &email,
		Role:     models.RoleUser,
		Kind:     models.KindNormal,
	}
}

// BuildLocation returns an unsaved location; roughly three in four are approved.
func (f *Factory) BuildLocation() *models.Location {
	addr := f.faker.Address()
	return &models.Location{
		Latitude:    addr.Latitude,
		Longitude:   addr.Longitude,
		Title:       truncate(strings.TrimSuffix(f.faker.Sentence(3), "."), 100),
		Address:     truncate(addr.Address, 255),
		Description: f.faker.Paragraph(1, 3, 12, " "),
		Approved:    f.faker.Number(1, 4) > 1,
	}
}

// BuildPoster returns an unsaved poster with a created_at spread over the
// last 90 days so recent-first ordering is visible.
func (f *Factory) BuildPoster(locationID, memberID uint) *models.Poster {
	back := time.Duration(f.faker.Number(0, 90*24*60)) * time.Minute
	return &models.Poster{
		LocationID: locationID,
		MemberID:   memberID,
		Title:      truncate(strings.TrimSuffix(f.faker.Sentence(5), "."), 100),
		Content:    f.faker.Paragraph(1, 4, 10, "\n"),
		CreatedAt:  time.Now().Add(-back),
	}
}

// like has a random subset of members like one target and returns how many did.
func (f *Factory) like(tx *gorm.DB, members []*models.Member, build func(*models.Member) interface{}) (int, error) {
	n := 0
	for _, m := range members {
		if f.faker.Number(1, 3) != 1 {
			continue
		}
		if err := tx.Create(build(m)).Error; err != nil {
			return n, fmt.Errorf("create like: %w", err)
		}
		n++
	}
	return n, nil
}

func (f *Factory) addLikes(tx *gorm.DB, res *Result, members []*models.Member, build func(*models.Member) interface{}) error {
	n, err := f.like(tx, members, build)
	res.Likes += n
	return err
}

func (f *Factory) pick(members []*models.Member) *models.Member {
	return members[f.faker.Number(0, len(members)-1)]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
