package service

import (
	"context"
	"log/slog"
	"strings"

	"spotboard/internal/database"
	"spotboard/internal/media"
	"spotboard/internal/models"
	"spotboard/internal/observability"
	"spotboard/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type MemberService struct {
	members repository.MemberRepository
	posters repository.PosterRepository
	cascade *Cascade
	media   media.Store
	logger  *slog.Logger
}

type SignupInput struct {
	LoginID  string
	Password string
	Nickname string
	Email    *string
}

func NewMemberService(
	members repository.MemberRepository,
	posters repository.PosterRepository,
	cascade *Cascade,
	store media.Store,
	logger *slog.Logger,
) *MemberService {
	return &MemberService{members: members, posters: posters, cascade: cascade, media: store, logger: logger}
}

// Signup registers a NORMAL member with the USER role.
func (s *MemberService) Signup(ctx context.Context, in SignupInput) (*models.Member, error) {
	if in.Email != nil && strings.TrimSpace(*in.Email) == "" {
		in.Email = nil
	}
	if err := s.checkAvailable(ctx, in.LoginID, in.Nickname, in.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	member := &models.Member{
		LoginID:  in.LoginID,
		Password: string(hash),
		Nickname: in.Nickname,
		Email:    in.Email,
		Role:     models.RoleUser,
		Kind:     models.KindNormal,
	}
	if err := s.members.Create(ctx, member); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, s.classifyDuplicate(ctx, err, in)
		}
		return nil, err
	}
	return member, nil
}

func (s *MemberService) checkAvailable(ctx context.Context, loginID, nickname string, email *string) error {
	taken, err := s.members.LoginIDTaken(ctx, loginID)
	if err != nil {
		return err
	}
	if taken {
		return models.NewDuplicateError(models.CodeDuplicateLoginID, "Login ID is already in use")
	}

	taken, err = s.members.NicknameTaken(ctx, nickname, 0)
	if err != nil {
		return err
	}
	if taken {
		return models.NewDuplicateError(models.CodeDuplicateNickname, "Nickname is already in use")
	}

	if email != nil {
		taken, err = s.members.EmailTaken(ctx, *email)
		if err != nil {
			return err
		}
		if taken {
			return models.NewDuplicateError(models.CodeDuplicateEmail, "Email is already in use")
		}
	}
	return nil
}

// classifyDuplicate names the unique index a concurrent signup won on.
func (s *MemberService) classifyDuplicate(ctx context.Context, err error, in SignupInput) error {
	constraint := database.ViolatedConstraint(err)
	switch {
	case strings.Contains(constraint, "login_id"):
		return models.NewDuplicateError(models.CodeDuplicateLoginID, "Login ID is already in use")
	case strings.Contains(constraint, "nickname"):
		return models.NewDuplicateError(models.CodeDuplicateNickname, "Nickname is already in use")
	case strings.Contains(constraint, "email"):
		return models.NewDuplicateError(models.CodeDuplicateEmail, "Email is already in use")
	}
	if checkErr := s.checkAvailable(ctx, in.LoginID, in.Nickname, in.Email); checkErr != nil {
		return checkErr
	}
	return err
}

// Authenticate checks a login id and password pair.
func (s *MemberService) Authenticate(ctx context.Context, loginID, password string) (*models.Member, error) {
	member, err := s.members.GetByLoginID(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Kind != models.KindNormal ||
		bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(password)) != nil {
		observability.AuthFailures.WithLabelValues(models.CodeInvalidCredentials).Inc()
		return nil, models.NewAuthError(models.CodeInvalidCredentials, "Invalid login ID or password")
	}
	return member, nil
}

func (s *MemberService) Get(ctx context.Context, id uint) (*models.Member, error) {
	return s.members.GetByID(ctx, id)
}

// Posters pages the posters a member wrote.
func (s *MemberService) Posters(ctx context.Context, memberID uint, q repository.ListQuery) (*models.Page[models.PosterSummary], error) {
	rows, total, err := s.posters.ListByMember(ctx, memberID, q)
	if err != nil {
		return nil, err
	}
	return page(rows, q, total), nil
}

func (s *MemberService) UpdateNickname(ctx context.Context, id uint, nickname string) (*models.Member, error) {
	taken, err := s.members.NicknameTaken(ctx, nickname, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewDuplicateError(models.CodeDuplicateNickname, "Nickname is already in use")
	}
	if err := s.members.UpdateNickname(ctx, id, nickname); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.NewDuplicateError(models.CodeDuplicateNickname, "Nickname is already in use")
		}
		return nil, err
	}
	return s.members.GetByID(ctx, id)
}

// ReplaceImage stores the new profile picture, swaps the row, and only then
// removes the previous file.
func (s *MemberService) ReplaceImage(ctx context.Context, id uint, att Attachment) (*models.MemberImage, error) {
	stored, err := storeAll(ctx, s.media, s.logger, []Attachment{att})
	if err != nil {
		return nil, err
	}

	img := &models.MemberImage{UploadName: stored[0].uploadName, StoreName: stored[0].storeName}
	replaced, err := s.members.ReplaceImage(ctx, id, img)
	if err != nil {
		discard(ctx, s.media, s.logger, stored)
		return nil, err
	}
	img.URL = models.ImagePath(img.StoreName)

	if replaced != "" {
		if _, err := s.media.Delete(context.WithoutCancel(ctx), replaced); err != nil {
			s.logger.WarnContext(ctx, "failed to remove replaced profile image",
				slog.String("store_name", replaced), slog.String("error", err.Error()))
		}
	}
	return img, nil
}

func (s *MemberService) DeleteImage(ctx context.Context, id uint) error {
	_, err := s.cascade.DeleteMemberImage(ctx, id)
	return err
}

// Delete removes the member and everything they own.
func (s *MemberService) Delete(ctx context.Context, id uint) (*CascadeReport, error) {
	return s.cascade.DeleteMember(ctx, id)
}

// Promote grants the ADMIN role.
func (s *MemberService) Promote(ctx context.Context, id uint) error {
	return s.members.SetRole(ctx, id, models.RoleAdmin)
}
