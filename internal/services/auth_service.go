package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akshalkotian/doctorappointment/internal/config"
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAdminCode    = errors.New("invalid admin code")
	ErrAdminSignupDisabled = errors.New("admin registration is disabled")
	ErrUseAdminLogin       = errors.New("please use the admin login")
	ErrAdminRequired       = errors.New("access denied: admin credentials required")
)

type AuthService struct {
	users       *store.Users
	cfg         *config.Config
	adminEmails []string
	now         func() time.Time
}

func NewAuthService(users *store.Users, cfg *config.Config) *AuthService {
	return &AuthService{
		users:       users,
		cfg:         cfg,
		adminEmails: cfg.AdminEmailList(),
		now:         time.Now,
	}
}

func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	return s.register(req, models.RolePatient)
}

// RegisterAdmin creates an admin account. It is refused outright when no
// ADMIN_CODE is configured.
func (s *AuthService) RegisterAdmin(req *dto.AdminRegisterRequest) (*dto.AuthResponse, error) {
	if s.cfg.AdminCode == "" {
		return nil, ErrAdminSignupDisabled
	}
	if subtle.ConstantTimeCompare([]byte(req.AdminCode), []byte(s.cfg.AdminCode)) != 1 {
		slog.Warn("admin registration with invalid code", "email", req.Email)
		return nil, ErrInvalidAdminCode
	}
	return s.register(&req.RegisterRequest, models.RoleAdmin)
}

func (s *AuthService) register(req *dto.RegisterRequest, role models.Role) (*dto.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Password:  string(hash),
		Phone:     strings.TrimSpace(req.Phone),
		Role:      role,
		CreatedAt: s.now(),
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("user registered", "user_id", user.ID, "role", role)

	return s.issue(user)
}

// Login authenticates against the patient or the admin entry point. Each
// entry point refuses the other kind of account.
func (s *AuthService) Login(req *dto.LoginRequest, as models.Role) (*dto.AuthResponse, error) {
	user, ok := s.users.ByEmail(strings.TrimSpace(req.Email))
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	role := s.roleOf(user)
	switch {
	case as == models.RoleAdmin && role != models.RoleAdmin:
		return nil, ErrAdminRequired
	case as != models.RoleAdmin && role == models.RoleAdmin:
		return nil, ErrUseAdminLogin
	}

	return s.issue(user)
}

func (s *AuthService) Profile(userID string) (*dto.UserResponse, error) {
	user, ok := s.users.ByID(userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	resp := dto.NewUserResponse(user)
	resp.Role = s.roleOf(user)
	return &resp, nil
}

func (s *AuthService) UpdateProfile(userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.users.UpdateProfile(userID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	resp := dto.NewUserResponse(user)
	resp.Role = s.roleOf(user)
	return &resp, nil
}

func (s *AuthService) roleOf(user models.User) models.Role {
	for _, email := range s.adminEmails {
		if email == user.Email {
			return models.RoleAdmin
		}
	}
	return user.EffectiveRole()
}

func (s *AuthService) issue(user models.User) (*dto.AuthResponse, error) {
	role := s.roleOf(user)
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.cfg.JWTAccessExpiry)

	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  string(role),
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	resp := dto.NewUserResponse(user)
	resp.Role = role
	return &dto.AuthResponse{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
		User:        resp,
	}, nil
}
