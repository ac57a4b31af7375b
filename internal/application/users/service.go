package users

import (
	"context"
	"errors"
	"strings"

	"volunhub-backend/internal/application/emails"
	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("An account with this email already exists")
	ErrInvalidEmailFormat = errors.New("Invalid email format")
	ErrWeakPassword       = errors.New("Password must be at least 8 characters with a letter, number and special character")
	ErrInvalidFullname    = errors.New("Fullname may only contain letters, spaces, hyphens and apostrophes")
	ErrInvalidRole        = errors.New("Role must be volunteer or organizer")
	ErrUserNotFound       = errors.New("User not found")
)

type Service struct {
	DB     *gorm.DB
	Emails emails.Sender
}

type RegisterInput struct {
	Fullname string
	Email    string
	Password string
	Role     string
}

// Register creates a volunteer or organizer account and sends the welcome
// email after the row is committed.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if !validation.IsValidFullname(in.Fullname) {
		return nil, ErrInvalidFullname
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmailFormat
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrWeakPassword
	}
	if in.Role != domain.RoleVolunteer && in.Role != domain.RoleOrganizer {
		return nil, ErrInvalidRole
	}

	var existing int64
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := domain.User{
		Fullname:     in.Fullname,
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if s.Emails != nil {
		firstName := strings.SplitN(user.Fullname, " ", 2)[0]
		if err := s.Emails.SendWelcome(ctx, user.Email, firstName); err != nil {
			log.Error().Err(err).Str("email", user.Email).Msg("welcome email failed")
		}
	}
	return &user, nil
}

// Get returns one user by id.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
