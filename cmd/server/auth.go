package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/pricesense/internal/store"
)

const (
	devJWTSecret = "pricesense-insecure-development-secret"
	tokenIssuer  = "pricesense"
)

var errInvalidCredentials = errors.New("invalid email or password")

type contextKey int

const userIDKey contextKey = iota

type claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type authService struct {
	store  *store.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newAuthService(st *store.Store, secret string, ttl time.Duration) *authService {
	return &authService{store: st, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (a *authService) register(ctx context.Context, email, password, businessName string) (store.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}
	return a.store.CreateUser(ctx, email, string(hash), businessName)
}

func (a *authService) login(ctx context.Context, email, password string) (store.User, error) {
	u, err := a.store.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, errInvalidCredentials
	}
	if err != nil {
		return store.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return store.User{}, errInvalidCredentials
	}
	return u, nil
}

// issueToken signs an HS256 access token for userID.
func (a *authService) issueToken(userID string) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (a *authService) parseToken(raw string) (string, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || c.UserID == "" {
		return "", errors.New("invalid token")
	}
	return c.UserID, nil
}

// middleware rejects requests without a valid bearer token and stores the
// caller's user id in the request context.
func (a *authService) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			writeJSON(w, http.StatusUnauthorized, envelope{Message: "Access token required"})
			return
		}

		userID, err := a.parseToken(strings.TrimSpace(raw))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, envelope{Message: "Invalid or expired token"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

type registerRequest struct {
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	BusinessName string `json:"business_name" validate:"max=255"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	BusinessName string `json:"business_name" validate:"max=255"`
}

type authResponse struct {
	User      store.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	u, err := s.auth.register(r.Context(), req.Email, req.Password, strings.TrimSpace(req.BusinessName))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondWithToken(w, r, http.StatusCreated, "User registered successfully", u)
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	u, err := s.auth.login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondWithToken(w, r, http.StatusOK, "Login successful", u)
}

func (s *server) respondWithToken(w http.ResponseWriter, r *http.Request, status int, message string, u store.User) {
	token, expiresAt, err := s.auth.issueToken(u.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, status, message, authResponse{User: u, Token: token, ExpiresAt: expiresAt})
}

func (s *server) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.UserByID(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", map[string]store.User{"user": u})
}

func (s *server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	u, err := s.store.UpdateUserProfile(r.Context(), userIDFrom(r.Context()), strings.TrimSpace(req.BusinessName))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Profile updated successfully", map[string]store.User{"user": u})
}
