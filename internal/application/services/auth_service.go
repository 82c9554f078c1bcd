package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pomodorify/core/internal/adapters/mail"
	"github.com/pomodorify/core/internal/domain/entities"
	"github.com/pomodorify/core/internal/infrastructure/config"
	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

const (
	verificationCodeTTL = 24 * time.Hour
	resetTokenTTL       = 1 * time.Hour
	notifyTimeout       = 15 * time.Second
)

// jwtClaims is the signed token payload.
type jwtClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// AuthService handles account lifecycle and token operations.
type AuthService struct {
	userRepo  ports.UserRepository
	jwtConfig config.JWTConfig
	clientURL string
	notifier  mail.Notifier
	logger    *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, jwtConfig config.JWTConfig, clientURL string, notifier mail.Notifier, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtConfig: jwtConfig,
		clientURL: clientURL,
		notifier:  notifier,
		logger:    logger,
	}
}

// Signup creates a new account, issues a token, and emails a verification
// code. The token lets the new session proceed immediately, but logging in
// again stays blocked until the email is verified.
func (s *AuthService) Signup(ctx context.Context, req ports.SignupRequest) (*ports.AuthResponse, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, entities.ErrEmailTaken
	} else if !errors.Is(err, entities.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}
	expiry := time.Now().Add(verificationCodeTTL)

	user := &entities.User{
		ID:                 uuid.New(),
		Email:              req.Email,
		Name:               req.Name,
		PasswordHash:       string(hashedPassword),
		VerificationCode:   &code,
		VerificationExpiry: &expiry,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Infow("user signed up", "user_id", user.ID, "email", user.Email)

	// Delivery must not block or fail the signup.
	go func(to, name, code string) {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.SendVerificationEmail(ctx, to, name, code); err != nil {
			s.logger.WithError(err).Warnw("failed to send verification email", "email", to)
		}
	}(user.Email, user.Name, code)

	return &ports.AuthResponse{
		Success: true,
		Message: "User created successfully",
		Token:   token,
		User:    user,
	}, nil
}

// Login authenticates by email and password and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, entities.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warnw("login with wrong password", "email", req.Email)
		return nil, entities.ErrInvalidCredentials
	}

	// Credential failures come first so this check leaks nothing about
	// accounts the caller does not own.
	if !user.IsVerified {
		return nil, entities.ErrEmailNotVerified
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.WithError(err).Warnw("failed to record last login", "user_id", user.ID)
	}
	user.LastLogin = &now

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Infow("user logged in", "user_id", user.ID)

	return &ports.AuthResponse{
		Success: true,
		Message: "Logged in successfully",
		Token:   token,
		User:    user,
	}, nil
}

// VerifyEmail redeems a pending verification code.
func (s *AuthService) VerifyEmail(ctx context.Context, code string) (*entities.User, error) {
	user, err := s.userRepo.GetByVerificationCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !user.HasValidVerificationCode(code, time.Now()) {
		return nil, entities.ErrInvalidCode
	}

	user.ClearVerification()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Infow("email verified", "user_id", user.ID)

	go func(to, name string) {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.SendWelcomeEmail(ctx, to, name); err != nil {
			s.logger.WithError(err).Warnw("failed to send welcome email", "email", to)
		}
	}(user.Email, user.Name)

	return user, nil
}

// ForgotPassword issues a reset token and emails a reset link. An unknown
// email is not an error so the endpoint does not leak which accounts exist.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			s.logger.Infow("password reset requested for unknown email", "email", email)
			return nil
		}
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	expiry := time.Now().Add(resetTokenTTL)

	user.ResetToken = &token
	user.ResetExpiry = &expiry
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.clientURL, token)
	go func(to, url string) {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.SendPasswordResetEmail(ctx, to, url); err != nil {
			s.logger.WithError(err).Warnw("failed to send reset email", "email", to)
		}
	}(user.Email, resetURL)

	return nil
}

// ResetPassword redeems a reset token and replaces the password. Reusing
// the current password is rejected.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	user, err := s.userRepo.GetByResetToken(ctx, token)
	if err != nil {
		return err
	}

	if !user.HasValidResetToken(time.Now()) {
		return entities.ErrInvalidResetToken
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
		return entities.ErrSamePassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	user.ClearResetToken()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Infow("password reset", "user_id", user.ID)

	go func(to string) {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.SendResetSuccessEmail(ctx, to); err != nil {
			s.logger.WithError(err).Warnw("failed to send reset confirmation", "email", to)
		}
	}(user.Email)

	return nil
}

// CheckAuth returns the account behind an authenticated request.
func (s *AuthService) CheckAuth(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// ValidateToken parses and verifies a signed token.
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &ports.Claims{UserID: claims.UserID}, nil
}

func (s *AuthService) generateToken(user *entities.User) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		UserID: user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.ExpiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

// generateVerificationCode returns a random 6-digit numeric code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// generateResetToken returns a random 40-character hex token.
func generateResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
