package service

import (
	"context"

	"spotboard/internal/models"
	"spotboard/internal/repository"
)

type CommentService struct {
	comments repository.CommentRepository
	likes    repository.LikeRepository
	cascade  *Cascade
}

func NewCommentService(comments repository.CommentRepository, likes repository.LikeRepository, cascade *Cascade) *CommentService {
	return &CommentService{comments: comments, likes: likes, cascade: cascade}
}

func (s *CommentService) Create(ctx context.Context, writer *models.Member, posterID uint, content string) (*models.Comment, error) {
	comment := &models.Comment{PosterID: posterID, MemberID: writer.ID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Writer = writer
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, actor *models.Member, id uint, content string) (*models.Comment, error) {
	comment, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes the comment and its likes.
func (s *CommentService) Delete(ctx context.Context, actor *models.Member, id uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	_, err := s.cascade.DeleteComment(ctx, id)
	return err
}

func (s *CommentService) Like(ctx context.Context, memberID, commentID uint) error {
	return s.likes.Like(ctx, repository.LikeComment, memberID, commentID)
}

func (s *CommentService) Unlike(ctx context.Context, memberID, commentID uint) error {
	return s.likes.Unlike(ctx, repository.LikeComment, memberID, commentID)
}

func (s *CommentService) owned(ctx context.Context, actor *models.Member, id uint) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(comment.MemberID) {
		return nil, models.NewAccessDeniedError("Only the writer may change this comment")
	}
	return comment, nil
}
