package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"foodorder/internal/auth"
	"foodorder/internal/authz"
	"foodorder/internal/models"
)

const minPasswordLength = 6

type RegisterInput struct {
	Role     models.Role
	Name     string
	Phone    string
	Email    string
	Password string
}

// Session is what a successful login or refresh hands back to the client.
type Session struct {
	AccessToken  string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         *models.User `json:"user"`
}

type TokenSettings struct {
	Secret        string
	AccessTTL     time.Duration
	RememberMeTTL time.Duration
	RefreshTTL    time.Duration
}

type AuthService struct {
	users    UserStore
	tokens   RefreshTokenStore
	settings TokenSettings
	now      func() time.Time
}

func NewAuthService(users UserStore, tokens RefreshTokenStore, settings TokenSettings) *AuthService {
	return &AuthService{users: users, tokens: tokens, settings: settings, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an Owner or Customer account. Admin accounts are only
// seeded from configuration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Role != models.RoleOwner && in.Role != models.RoleCustomer {
		return nil, validationError("userType must be Owner or Customer", "userType")
	}
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = normalizeEmail(in.Email)
	if in.Phone == "" && in.Email == "" {
		return nil, validationError("Either phone or email is required", "phone", "email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, validationError("password must be at least 6 characters", "password")
	}

	taken, err := s.users.IdentityTaken(ctx, in.Phone, in.Email, primitive.NilObjectID)
	if err != nil {
		return nil, internal("Registration failed", err)
	}
	if taken {
		return nil, conflict("Phone number or email already exists")
	}

	return s.createUser(ctx, in)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal("Registration failed", err)
	}

	now := s.now()
	user := &models.User{
		Role:         in.Role,
		Name:         strings.TrimSpace(in.Name),
		Phone:        in.Phone,
		Email:        in.Email,
		PasswordHash: string(hash),
		Addresses:    []models.Address{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, conflict("Phone number or email already exists")
		}
		return nil, internal("Registration failed", err)
	}
	log.Printf("[AUTH] [INFO] %s registered: %s", user.Role, user.ID.Hex())
	return user, nil
}

// Login accepts a phone number or an email as identifier.
func (s *AuthService) Login(ctx context.Context, identifier, password string, rememberMe bool) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, validationError("identifier and password are required", "identifier", "password")
	}
	if strings.Contains(identifier, "@") {
		identifier = normalizeEmail(identifier)
	}

	user, err := s.users.FindUserByIdentifier(ctx, identifier)
	if errors.Is(err, ErrNoRecord) {
		return nil, unauthenticated("Invalid credentials")
	}
	if err != nil {
		return nil, internal("Login failed", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Println("[AUTH] [ERROR] login invalid credentials for user")
		return nil, unauthenticated("Invalid credentials")
	}

	session, _, err := s.issueSession(ctx, user, rememberMe)
	if err != nil {
		return nil, err
	}
	log.Printf("[AUTH] [INFO] user login succeeded: %s", user.ID.Hex())
	return session, nil
}

func (s *AuthService) accessTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return s.settings.RememberMeTTL
	}
	return s.settings.AccessTTL
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, rememberMe bool) (*Session, primitive.ObjectID, error) {
	ttl := s.accessTTL(rememberMe)
	access, err := auth.IssueAccessToken(models.Principal{ID: user.ID, Role: user.Role}, s.settings.Secret, ttl)
	if err != nil {
		return nil, primitive.NilObjectID, internal("Token generation failed", err)
	}

	plain, err := auth.GenerateRefreshString()
	if err != nil {
		return nil, primitive.NilObjectID, internal("Token generation failed", err)
	}
	now := s.now()
	token := &models.RefreshToken{
		UserID:     user.ID,
		TokenHash:  auth.HashToken(plain),
		RememberMe: rememberMe,
		ExpiresAt:  now.Add(s.settings.RefreshTTL),
		CreatedAt:  now,
	}
	if err := s.tokens.InsertRefreshToken(ctx, token); err != nil {
		return nil, primitive.NilObjectID, internal("Token generation failed", err)
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: plain,
		ExpiresIn:    int64(ttl.Seconds()),
		User:         user,
	}, token.ID, nil
}

// Refresh rotates a refresh token: the presented token is revoked and linked
// to its replacement.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	plain := strings.TrimSpace(refreshToken)
	if plain == "" {
		return nil, validationError("refreshToken is required", "refreshToken")
	}

	token, err := s.tokens.FindActiveRefreshToken(ctx, auth.HashToken(plain))
	if errors.Is(err, ErrNoRecord) {
		return nil, unauthenticated("Invalid refresh token")
	}
	if err != nil {
		return nil, internal("Token refresh failed", err)
	}
	if s.now().After(token.ExpiresAt) {
		if err := s.tokens.RevokeRefreshToken(ctx, token.ID, nil); err != nil {
			log.Println("[AUTH] [ERROR] revoke expired refresh token failed:", err)
		}
		return nil, unauthenticated("Refresh token expired")
	}

	user, err := s.users.FindUser(ctx, token.UserID)
	if errors.Is(err, ErrNoRecord) {
		return nil, unauthenticated("User not found")
	}
	if err != nil {
		return nil, internal("Token refresh failed", err)
	}

	session, newID, err := s.issueSession(ctx, user, token.RememberMe)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.RevokeRefreshToken(ctx, token.ID, &newID); err != nil {
		return nil, internal("Token refresh failed", err)
	}
	return session, nil
}

// Logout revokes the refresh token if one is given. Clearing the access
// cookie is up to the caller.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	plain := strings.TrimSpace(refreshToken)
	if plain == "" {
		return nil
	}
	err := s.tokens.RevokeRefreshTokenByHash(ctx, auth.HashToken(plain))
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return internal("Logout failed", err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, p *models.Principal) (*models.User, error) {
	if p == nil {
		return nil, unauthenticated("Access denied. No token provided.")
	}
	user, err := s.users.FindUser(ctx, p.ID)
	if errors.Is(err, ErrNoRecord) {
		return nil, unauthenticated("User not found")
	}
	if err != nil {
		return nil, internal("Failed to fetch user", err)
	}
	return user, nil
}

func (s *AuthService) ListOwners(ctx context.Context, p *models.Principal) ([]models.User, error) {
	if err := requireCapability(p, authz.ListOwners, "Access denied. Admins only."); err != nil {
		return nil, err
	}
	owners, err := s.users.ListUsersByRole(ctx, models.RoleOwner)
	if err != nil {
		return nil, internal("Failed to fetch owners", err)
	}
	return owners, nil
}

// SeedAdmin creates the configured admin account if no user holds that email.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	taken, err := s.users.IdentityTaken(ctx, "", email, primitive.NilObjectID)
	if err != nil {
		return err
	}
	if taken {
		return nil
	}

	_, err = s.createUser(ctx, RegisterInput{
		Role:     models.RoleAdmin,
		Name:     "Administrator",
		Email:    email,
		Password: password,
	})
	return err
}
