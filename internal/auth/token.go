package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/user-management/internal/model"
)

// TokenPair is the pair of signed JWTs returned to a client. Only the
// refresh token's SHA-256 digest is ever persisted.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims are the verified contents of a token.
type Claims struct {
	UserID uint64
	Email  string
	Role   model.Role
}

// TokenIssuer mints and verifies HS256 JWTs. Access and refresh tokens
// are signed with distinct secrets so that compromise of one key does
// not forge the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenIssuer builds an issuer from the two signing secrets and the
// configured lifetimes (access in minutes, refresh in days).
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTLMin, refreshTTLDays int) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     time.Duration(accessTTLMin) * time.Minute,
		refreshTTL:    time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// Issue signs a new access/refresh pair for a user. Both tokens carry
// the subject id, email, role, issued-at and expiry claims.
func (ti *TokenIssuer) Issue(u model.User) (TokenPair, error) {
	access, err := sign(ti.accessSecret, u, ti.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := sign(ti.refreshSecret, u, ti.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token and returns its claims.
func (ti *TokenIssuer) VerifyAccess(token string) (Claims, error) {
	return verify(ti.accessSecret, token)
}

// VerifyRefresh validates a refresh token's signature and expiry. It
// does not consult the store: a logically valid but superseded token
// passes here and is rejected by the Service's stored-hash comparison.
func (ti *TokenIssuer) VerifyRefresh(token string) (Claims, error) {
	return verify(ti.refreshSecret, token)
}

func sign(secret []byte, u model.User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	jti, err := randomHex(16)
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(u.ID, 10),
		"email": u.Email,
		"role":  string(u.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		// jti makes every issued token distinct, so rotating a refresh
		// token within the same second still revokes the old one.
		"jti": jti,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// randomHex returns a hex string from n bytes of secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func verify(secret []byte, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return Claims{}, ErrInvalidToken
	}
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)
	return Claims{UserID: id, Email: email, Role: model.Role(role)}, nil
}

// HashRefreshToken returns the SHA-256 hex digest of a refresh token.
// Only the digest is stored, so a leaked database row cannot be used
// to refresh a session.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
