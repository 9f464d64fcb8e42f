package service

import (
	"errors"
	"strings"

	"kejani/config"
	"kejani/internal/auth"
	"kejani/internal/authz"
	"kejani/internal/domain"
	"kejani/internal/models"
	"kejani/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrInvalidRole  = errors.New("invalid role")
)

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

// RegisterInput is everything needed to provision a caretaker or tenant
// account. The creator's identity decides whether the target role is allowed.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Role      domain.Role
	FirstName string
	LastName  string
	Phone     string
}

// Register creates an account on behalf of an authenticated creator. The
// role hierarchy is consulted first, so a landlord request is refused no
// matter who asks. The new user logs in separately; no tokens are issued
// here.
func (s *AuthService) Register(creator *authz.Identity, in RegisterInput) (*models.User, error) {
	if !domain.ValidRole(in.Role) {
		return nil, ErrInvalidRole
	}
	if d := authz.CheckCreateUser(creator, in.Role); d != nil {
		return nil, d
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	taken, err := s.userRepo.EmailTaken(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Constraint(domain.InvariantDuplicateEmail, email)
	}
	taken, err = s.userRepo.UsernameTaken(in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Constraint(domain.InvariantDuplicateUsername, in.Username)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     in.Username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         string(in.Role),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		IsVerified:   true,
	}
	if err := s.userRepo.Create(u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Constraint(domain.InvariantDuplicateEmail, email)
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return nil, "", "", err
	}
	return u, access, refresh, nil
}

// RefreshToken rotates a refresh token into a fresh access/refresh pair.
// The account is re-read first, so tokens for a deleted user stop working.
func (s *AuthService) RefreshToken(refreshToken string) (access, refresh string, err error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", "", err
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", "", auth.ErrInvalidToken
	}
	access, err = auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err = auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.userRepo.Update(u)
}

// ProfileUpdate carries the fields a user may change on their own account.
// Role and verification status are not among them.
type ProfileUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
}

func (s *AuthService) UpdateProfile(userID uint, in ProfileUpdate) (*models.User, error) {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != u.Email {
			taken, err := s.userRepo.EmailTaken(email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domain.Constraint(domain.InvariantDuplicateEmail, email)
			}
			u.Email = email
		}
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if err := s.userRepo.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) GetProfile(userID uint) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}
