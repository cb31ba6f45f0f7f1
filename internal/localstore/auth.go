package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kehila-platform/kehila/pkg/store"
)

// Register creates login credentials and the matching User entity record.
// Extra profile fields are merged into the record.
func (s *Store) Register(ctx context.Context, email, password string, fields store.Fields) (store.Record, error) {
	if email == "" || password == "" {
		return nil, &store.ValidationError{Entity: store.EntityUser, Missing: []string{"email", "password"}}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.conn.Exec(ctx,
		`INSERT INTO users (email, password_hash, created) VALUES (?, ?, ?)`,
		email, string(hash), now(),
	); err != nil {
		return nil, fmt.Errorf("insert credentials: %w", err)
	}

	userFields := store.Fields{
		"email":     email,
		"user_type": "user",
	}
	for k, v := range fields {
		userFields[k] = v
	}
	return s.Create(ctx, store.EntityUser, userFields)
}

// Login verifies credentials and issues a session token for the user record.
func (s *Store) Login(ctx context.Context, email, password string) (*store.Session, error) {
	row := s.conn.QueryRow(ctx, `SELECT password_hash FROM users WHERE email = ?`, email)
	var hash string
	if err := row.Scan(&hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, &store.RemoteError{Op: "login", Err: fmt.Errorf("credentials not found")}
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, &store.RemoteError{Op: "login", Err: fmt.Errorf("credentials not found")}
	}

	user, err := s.userRecord(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &store.RemoteError{Op: "login", Err: fmt.Errorf("user record missing")}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(s.opts.TokenTTL).Unix(),
	})
	tokenStr, err := token.SignedString([]byte(s.opts.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &store.Session{Token: tokenStr, User: user}, nil
}

// Me resolves a session token to the current User record.
func (s *Store) Me(ctx context.Context, token string) (store.Record, error) {
	email, err := s.tokenEmail(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRecord(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &store.NotFoundError{Entity: store.EntityUser, ID: email}
	}
	return user, nil
}

// UpdateMe merges partial fields into the current User record.
func (s *Store) UpdateMe(ctx context.Context, token string, fields store.Fields) (store.Record, error) {
	user, err := s.Me(ctx, token)
	if err != nil {
		return nil, err
	}
	delete(fields, "email") // the login identity is immutable here
	return s.Update(ctx, store.EntityUser, user.ID(), fields)
}

func (s *Store) tokenEmail(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.opts.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", &store.RemoteError{Op: "auth", Err: fmt.Errorf("invalid or expired token")}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", &store.RemoteError{Op: "auth", Err: fmt.Errorf("invalid claims")}
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", &store.RemoteError{Op: "auth", Err: fmt.Errorf("token has no subject")}
	}
	return email, nil
}
