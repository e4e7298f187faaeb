package service

import (
	"context"
	"log/slog"

	"spotboard/internal/media"
	"spotboard/internal/models"
	"spotboard/internal/repository"
)

type PosterService struct {
	posters  repository.PosterRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	cascade  *Cascade
	media    media.Store
	logger   *slog.Logger
}

type CreatePosterInput struct {
	LocationID uint
	Title      string
	Content    string
	Images     []Attachment
}

type UpdatePosterInput struct {
	Title   string
	Content string
}

func NewPosterService(
	posters repository.PosterRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	cascade *Cascade,
	store media.Store,
	logger *slog.Logger,
) *PosterService {
	return &PosterService{
		posters:  posters,
		comments: comments,
		likes:    likes,
		cascade:  cascade,
		media:    store,
		logger:   logger,
	}
}

// Create stores the images, then inserts the poster under its location.
func (s *PosterService) Create(ctx context.Context, writer *models.Member, in CreatePosterInput) (*models.PosterSummary, error) {
	stored, err := storeAll(ctx, s.media, s.logger, in.Images)
	if err != nil {
		return nil, err
	}

	poster := &models.Poster{
		LocationID: in.LocationID,
		MemberID:   writer.ID,
		Title:      in.Title,
		Content:    in.Content,
	}
	for _, f := range stored {
		poster.Images = append(poster.Images, models.PosterImage{UploadName: f.uploadName, StoreName: f.storeName})
	}

	if err := s.posters.Create(ctx, poster); err != nil {
		discard(ctx, s.media, s.logger, stored)
		return nil, err
	}
	return s.posters.Summary(ctx, poster.ID, writer.ID)
}

func (s *PosterService) Get(ctx context.Context, id, viewerID uint) (*models.PosterSummary, error) {
	return s.posters.Summary(ctx, id, viewerID)
}

func (s *PosterService) Best(ctx context.Context, viewerID uint) ([]models.PosterSummary, error) {
	return s.posters.Best(ctx, viewerID)
}

func (s *PosterService) Comments(ctx context.Context, posterID uint, q repository.ListQuery) (*models.Page[models.CommentSummary], error) {
	rows, total, err := s.comments.ListByPoster(ctx, posterID, q)
	if err != nil {
		return nil, err
	}
	return page(rows, q, total), nil
}

func (s *PosterService) Update(ctx context.Context, actor *models.Member, id uint, in UpdatePosterInput) (*models.PosterSummary, error) {
	poster, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	poster.Title = in.Title
	poster.Content = in.Content
	if err := s.posters.Update(ctx, poster); err != nil {
		return nil, err
	}
	return s.posters.Summary(ctx, id, actor.ID)
}

// Delete removes the poster with its comments, likes and images.
func (s *PosterService) Delete(ctx context.Context, actor *models.Member, id uint) (*CascadeReport, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.cascade.DeletePoster(ctx, id)
}

func (s *PosterService) DeleteImage(ctx context.Context, actor *models.Member, posterID, imageID uint) error {
	if _, err := s.owned(ctx, actor, posterID); err != nil {
		return err
	}
	_, err := s.cascade.DeletePosterImage(ctx, posterID, imageID)
	return err
}

func (s *PosterService) Like(ctx context.Context, memberID, posterID uint) error {
	return s.likes.Like(ctx, repository.LikePoster, memberID, posterID)
}

func (s *PosterService) Unlike(ctx context.Context, memberID, posterID uint) error {
	return s.likes.Unlike(ctx, repository.LikePoster, memberID, posterID)
}

// owned loads the poster and checks that actor wrote it or is an admin.
func (s *PosterService) owned(ctx context.Context, actor *models.Member, id uint) (*models.Poster, error) {
	poster, err := s.posters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(poster.MemberID) {
		return nil, models.NewAccessDeniedError("Only the writer may change this poster")
	}
	return poster, nil
}
