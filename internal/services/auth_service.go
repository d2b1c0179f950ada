package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/config"
	"github.com/agrimarket/backend/internal/dto"
	"github.com/agrimarket/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = apperr.BadRequest("Username already registered.")
	ErrEmailTaken         = apperr.BadRequest("Email already registered.")
	ErrInvalidCredentials = apperr.Unauthorized("Incorrect username or password")
	ErrInactiveUser       = apperr.Unauthorized("Inactive user")
	ErrUserNotFound       = apperr.Unauthorized("User not found")
)

const minPasswordLength = 3

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) RegisterFarmer(req *dto.RegisterFarmerRequest) (*models.User, error) {
	if strings.TrimSpace(req.FarmLocation) == "" {
		return nil, apperr.BadRequest("farm_location is required")
	}
	if req.FarmArea <= 0 {
		return nil, apperr.BadRequest("farm_area must be greater than 0")
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		Role:         models.RoleFarmer,
		FullName:     strings.TrimSpace(req.FullName),
		MobileNumber: strings.TrimSpace(req.MobileNumber),
		IsActive:     true,
		FarmerProfile: &models.FarmerProfile{
			FarmLocation: req.FarmLocation,
			FarmArea:     req.FarmArea,
			GovernmentID: req.GovernmentID,
		},
	}
	return s.register(&user, req.Password)
}

func (s *AuthService) RegisterCompany(req *dto.RegisterCompanyRequest) (*models.User, error) {
	required := []struct{ field, value string }{
		{"company_name", req.CompanyName},
		{"company_type", req.CompanyType},
		{"company_location", req.CompanyLocation},
		{"contact_person_designation", req.ContactPersonDesignation},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, apperr.BadRequest(r.field + " is required")
		}
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		Role:         models.RoleCompany,
		FullName:     strings.TrimSpace(req.FullName),
		MobileNumber: strings.TrimSpace(req.MobileNumber),
		IsActive:     true,
		CompanyProfile: &models.CompanyProfile{
			CompanyName:              req.CompanyName,
			CompanyType:              req.CompanyType,
			CompanyLocation:          req.CompanyLocation,
			ContactPersonDesignation: req.ContactPersonDesignation,
			CompanyGSTID:             req.CompanyGSTID,
		},
	}
	return s.register(&user, req.Password)
}

func (s *AuthService) register(user *models.User, password string) (*models.User, error) {
	if user.Username == "" || user.FullName == "" || user.MobileNumber == "" {
		return nil, apperr.BadRequest("username, full_name and mobile_number are required")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return nil, apperr.BadRequest("a valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.BadRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check username", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	if err := s.db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	user.ID = uuid.New()
	user.Password = string(hash)

	// Creates the user and its role profile in one transaction.
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	slog.Info("user registered", "action", "register", "username", user.Username, "role", user.Role)
	return user, nil
}

// Authenticate verifies credentials and issues a bearer token.
func (s *AuthService) Authenticate(req *dto.TokenRequest) (*dto.TokenResponse, error) {
	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	token, err := s.generateAccessToken(&user)
	if err != nil {
		return nil, apperr.Internal("failed to sign token", err)
	}
	return &dto.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// FindByID loads a user with its role profile.
func (s *AuthService) FindByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Preload("FarmerProfile").Preload("CompanyProfile").First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return &user, nil
}

func (s *AuthService) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("FarmerProfile").Preload("CompanyProfile").First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return &user, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ToUserResponse flattens a user and its role profile.
func ToUserResponse(u *models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		MobileNumber: u.MobileNumber,
		UserType:     u.Role,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
	if p := u.FarmerProfile; p != nil {
		resp.FarmLocation = &p.FarmLocation
		resp.FarmArea = &p.FarmArea
		resp.GovernmentID = p.GovernmentID
	}
	if p := u.CompanyProfile; p != nil {
		resp.CompanyName = &p.CompanyName
		resp.CompanyType = &p.CompanyType
		resp.CompanyLocation = &p.CompanyLocation
		resp.ContactPersonDesignation = &p.ContactPersonDesignation
		resp.CompanyGSTID = p.CompanyGSTID
	}
	return resp
}
