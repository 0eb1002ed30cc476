package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
	"github.com/SLAWWWW/CommunityCompass/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const jwtExpDays = 365

// UserService handles user profiles and the liked-by relation
type UserService struct {
	users     repository.UserStore
	jwtSecret string
}

// NewUserService creates a new user service
func NewUserService(users repository.UserStore, jwtSecret string) *UserService {
	return &UserService{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// CreateUserInput holds the caller-supplied fields for a new user
type CreateUserInput struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Location  string   `json:"location"`
	Interests []string `json:"interests"`
}

// Create creates a new user and issues their token
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, fmt.Errorf("email is required")
	}

	exists, err := s.users.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	userID := uuid.New().String()

	token, err := s.GenerateJWT(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user := &models.User{
		ID:        userID,
		Name:      strings.TrimSpace(input.Name),
		Email:     input.Email,
		Location:  input.Location,
		Interests: input.Interests,
		LikedBy:   []string{},
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List retrieves all users
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Like records that caller likes target. Liking twice is a no-op.
func (s *UserService) Like(ctx context.Context, targetID, callerID string) (*models.User, error) {
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, callerID); err != nil {
		return nil, err
	}

	if lo.Contains(target.LikedBy, callerID) {
		return target, nil
	}

	target.LikedBy = append(target.LikedBy, callerID)
	if err := s.users.UpdateLikedBy(ctx, targetID, target.LikedBy); err != nil {
		return nil, fmt.Errorf("failed to persist liked_by: %w", err)
	}

	return target, nil
}

// Unlike removes caller from target's liked-by set. Unliking a user that
// was never liked is a no-op.
func (s *UserService) Unlike(ctx context.Context, targetID, callerID string) (*models.User, error) {
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if !lo.Contains(target.LikedBy, callerID) {
		return target, nil
	}

	target.LikedBy = lo.Without(target.LikedBy, callerID)
	if err := s.users.UpdateLikedBy(ctx, targetID, target.LikedBy); err != nil {
		return nil, fmt.Errorf("failed to persist liked_by: %w", err)
	}

	return target, nil
}
