package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/worklink-dev/worklink/internal/apperr"
	"github.com/worklink-dev/worklink/internal/authz"
)

// User is the identity record the rest of the system needs.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists users.
type Store interface {
	Create(ctx context.Context, u User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Get(ctx context.Context, id string) (User, error)
}

// ErrEmailTaken is returned by stores when the email is already registered.
// Kept as a store-level signal so the service can map it to Conflict.
type emailTakenError struct{}

func (emailTakenError) Error() string { return "email already registered" }

var ErrEmailTaken error = emailTakenError{}

// Service issues and validates bearer tokens. It is the identity collaborator
// the lifecycle services depend on via authz.Actor.
type Service struct {
	store    Store
	secret   []byte
	tokenTTL time.Duration
}

func NewService(store Store, secret string) *Service {
	return &Service{store: store, secret: []byte(secret), tokenTTL: 72 * time.Hour}
}

// Signup registers a user and returns a signed token.
func (s *Service) Signup(ctx context.Context, name, email, password string) (User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return User{}, "", apperr.Invalid("name and a valid email are required")
	}
	if len(password) < 6 {
		return User{}, "", apperr.Invalid("password must be at least 6 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", apperr.Dependency("hash password", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
	}
	created, err := s.store.Create(ctx, u)
	if err != nil {
		if err == ErrEmailTaken {
			return User{}, "", apperr.Conflict("email already registered")
		}
		return User{}, "", apperr.Dependency("create user", err)
	}

	token, err := s.issueToken(created)
	if err != nil {
		return User{}, "", err
	}
	return created, token, nil
}

// Login checks credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the account exists.
		return User{}, "", apperr.Forbidden("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, "", apperr.Forbidden("invalid credentials")
	}
	token, err := s.issueToken(u)
	if err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

// GetUser looks up a stored user record. Admin surfaces use it; the password
// hash never serializes.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return User{}, apperr.NotFound("user not found")
	}
	return u, nil
}

func (s *Service) issueToken(u User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  u.ID,
		"is_admin": u.IsAdmin,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperr.Dependency("sign token", err)
	}
	return signed, nil
}

// ParseToken validates a bearer token and returns the actor it encodes.
func (s *Service) ParseToken(tokenStr string) (authz.Actor, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Forbidden("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return authz.Actor{}, apperr.Forbidden("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return authz.Actor{}, apperr.Forbidden("invalid token claims")
	}
	id, _ := claims["user_id"].(string)
	if id == "" {
		return authz.Actor{}, apperr.Forbidden("invalid token claims")
	}
	isAdmin, _ := claims["is_admin"].(bool)
	return authz.Actor{UserID: id, IsAdmin: isAdmin}, nil
}
