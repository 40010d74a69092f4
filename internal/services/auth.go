package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	mathrand "math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"esgishoma-backend-go/internal/models"
	"esgishoma-backend-go/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/argon2"
)

// The seeded administrator. The digest is SHA-256("school2026") in lowercase
// hex; there is no literal credential fallback anywhere in the login path.
const (
	seededAdminID     = "admin_1"
	seededAdminName   = "Principal Administrator"
	seededAdminUser   = "admin"
	seededAdminDigest = "9cb4b10ff9c97ada0fc9cdc5c8fd6992c6d5d707fa2565f951aa7762d8a5f4e7"

	mailDomain = "esgishoma.edu"
)

// authFailed is the one message every credential rejection returns, so the
// response never reveals whether the username or the password was wrong.
const authFailed = "Authentication failed"

type Session struct {
	UserID   string
	Username string
	Name     string
	Role     string
}

// TokenService issues and verifies the HMAC-signed session tokens.
type TokenService struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

func (t TokenService) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t TokenService) CreateSessionToken(user models.User) (string, int64, error) {
	now := t.now().UTC()
	exp := now.Add(t.TTL)
	claims := jwt.MapClaims{
		"iss":      t.Issuer,
		"sub":      user.ID,
		"typ":      "session",
		"username": user.Username,
		"name":     user.Name,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.Secret)
	return signed, exp.Unix(), err
}

func (t TokenService) ParseToken(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithIssuer(t.Issuer), jwt.WithTimeFunc(t.now))
	return token, claims, err
}

// RequireAdmin gates every mutating operation: missing, unparseable, expired,
// or non-admin tokens all fail with 401/403 and the caller must propagate it.
func (t TokenService) RequireAdmin(tokenStr string) (*Session, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrUnauthorized("Authentication session missing")
	}
	token, claims, err := t.ParseToken(tokenStr)
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized(authFailed)
	}
	if claims["typ"] != "session" {
		return nil, ErrUnauthorized(authFailed)
	}
	session := sessionFromClaims(claims)
	if session.Role != models.RoleAdmin {
		return nil, ErrForbidden("Not allowed")
	}
	return session, nil
}

func sessionFromClaims(claims jwt.MapClaims) *Session {
	s := &Session{}
	s.UserID, _ = claims["sub"].(string)
	s.Username, _ = claims["username"].(string)
	s.Name, _ = claims["name"].(string)
	s.Role, _ = claims["role"].(string)
	return s
}

// AuthService runs the login pipeline: honeypot, lockout, artificial latency,
// then the credential comparison.
type AuthService struct {
	Store         *store.Store
	Tokens        TokenService
	Threshold     int
	LockoutWindow time.Duration
	MinDelay      time.Duration
	MaxDelay      time.Duration
	HoneypotDelay time.Duration
	Sleep         func(time.Duration)

	mu sync.Mutex // serializes login_security read-modify-write
}

func (a *AuthService) now() time.Time {
	return a.Tokens.now()
}

func (a *AuthService) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if a.Sleep != nil {
		a.Sleep(d)
		return
	}
	time.Sleep(d)
}

// SeedAdmin inserts the canonical administrator account when no user with
// the seeded username exists yet. An existing record is left untouched, so a
// rotated credential survives the seeding that runs on every login attempt.
func (a *AuthService) SeedAdmin() error {
	users := store.Read(a.Store, store.KeyUsers, []models.User{})
	for i := range users {
		if users[i].Username == seededAdminUser {
			return nil
		}
	}
	users = append(users, models.User{
		ID:           seededAdminID,
		Name:         seededAdminName,
		Username:     seededAdminUser,
		PasswordHash: seededAdminDigest,
		Role:         models.RoleAdmin,
	})
	return store.Write(a.Store, store.KeyUsers, users)
}

type LoginResult struct {
	Token     string
	ExpiresAt int64
	User      models.PublicUser
}

// Login authenticates username/password. The honeypot argument carries the
// hidden form field that genuine users always leave empty.
func (a *AuthService) Login(username, password, honeypot string) (*LoginResult, error) {
	if err := a.SeedAdmin(); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)

	// Bots that fill the hidden field get a long stall and the generic
	// rejection. The attempt counter stays untouched: this is a separate
	// defense layer, not part of lockout accounting.
	if strings.TrimSpace(honeypot) != "" {
		a.sleep(a.HoneypotDelay)
		return nil, ErrUnauthorized(authFailed)
	}

	if err := a.checkLockout(username); err != nil {
		return nil, err
	}

	// Randomized delay before any comparison, blunting brute-force
	// throughput and timing probes.
	a.sleep(a.loginDelay())

	users := store.Read(a.Store, store.KeyUsers, []models.User{})
	var user *models.User
	for i := range users {
		if users[i].Username == username {
			user = &users[i]
			break
		}
	}
	// Compare against a throwaway digest when the username is unknown so the
	// work done is the same either way.
	stored := seededAdminDigest
	if user != nil {
		stored = user.PasswordHash
	}
	if user == nil || !VerifyPassword(password, stored) {
		if err := a.recordFailure(username); err != nil {
			return nil, err
		}
		return nil, ErrUnauthorized(authFailed)
	}

	if err := a.clearFailures(username); err != nil {
		return nil, err
	}
	token, exp, err := a.Tokens.CreateSessionToken(*user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: exp,
		User: models.PublicUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Username + "@" + mailDomain,
			Role:  user.Role,
		},
	}, nil
}

// ChangePassword re-hashes with argon2id, so the legacy unsalted digest ages
// out the first time the password is rotated.
func (a *AuthService) ChangePassword(token, current, next string) error {
	session, err := a.Tokens.RequireAdmin(token)
	if err != nil {
		return err
	}
	if strings.TrimSpace(next) == "" {
		return ErrBadRequest("New password is required")
	}
	users := store.Read(a.Store, store.KeyUsers, []models.User{})
	for i := range users {
		if users[i].ID != session.UserID {
			continue
		}
		if !VerifyPassword(current, users[i].PasswordHash) {
			return ErrUnauthorized(authFailed)
		}
		hash, err := HashPassword(next)
		if err != nil {
			return err
		}
		users[i].PasswordHash = hash
		return store.Write(a.Store, store.KeyUsers, users)
	}
	return ErrNotFound("Account not found")
}

func (a *AuthService) loginDelay() time.Duration {
	if a.MaxDelay <= a.MinDelay {
		return a.MinDelay
	}
	return a.MinDelay + time.Duration(mathrand.Int63n(int64(a.MaxDelay-a.MinDelay)))
}

func (a *AuthService) checkLockout(username string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	sec := store.Read(a.Store, store.KeyLoginSecurity, models.LoginSecurity{})
	counter, ok := sec.Accounts[username]
	if !ok || counter.LockedUntil == nil {
		return nil
	}
	now := a.now()
	if counter.LockedUntil.After(now) {
		return LockoutError{Remaining: counter.LockedUntil.Sub(now)}
	}
	// Window elapsed: the identity starts over with a clean slate.
	delete(sec.Accounts, username)
	return store.Write(a.Store, store.KeyLoginSecurity, sec)
}

func (a *AuthService) recordFailure(username string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	sec := store.Read(a.Store, store.KeyLoginSecurity, models.LoginSecurity{})
	if sec.Accounts == nil {
		sec.Accounts = map[string]models.LoginCounter{}
	}
	counter := sec.Accounts[username]
	counter.FailedAttempts++
	if counter.FailedAttempts >= a.Threshold {
		until := a.now().Add(a.LockoutWindow)
		counter.LockedUntil = &until
	}
	sec.Accounts[username] = counter
	return store.Write(a.Store, store.KeyLoginSecurity, sec)
}

func (a *AuthService) clearFailures(username string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	sec := store.Read(a.Store, store.KeyLoginSecurity, models.LoginSecurity{})
	if _, ok := sec.Accounts[username]; !ok {
		return nil
	}
	delete(sec.Accounts, username)
	return store.Write(a.Store, store.KeyLoginSecurity, sec)
}

// HashPassword produces an argon2id hash for new or rotated passwords.
func HashPassword(raw string) (string, error) {
	return hashArgon2id(raw)
}

// VerifyPassword accepts either an argon2id hash or the legacy unsalted
// SHA-256 lowercase-hex digest the seed data uses.
func VerifyPassword(raw, stored string) bool {
	if strings.HasPrefix(stored, "$argon2") {
		return verifyArgon2id(raw, stored)
	}
	sum := sha256.Sum256([]byte(raw))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(digest), []byte(strings.ToLower(stored))) == 1
}

type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  int
	keyLength   int
}

func hashArgon2id(raw string) (string, error) {
	params := argon2Params{
		memory:      65536,
		iterations:  3,
		parallelism: 1,
		saltLength:  16,
		keyLength:   32,
	}
	salt := make([]byte, params.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(raw), salt, params.iterations, params.memory, params.parallelism, uint32(params.keyLength))
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Key := base64.RawStdEncoding.EncodeToString(key)
	return "$argon2id$v=19$m=" + strconv.FormatUint(uint64(params.memory), 10) +
		",t=" + strconv.FormatUint(uint64(params.iterations), 10) +
		",p=" + strconv.FormatUint(uint64(params.parallelism), 10) +
		"$" + b64Salt + "$" + b64Key, nil
}

func verifyArgon2id(raw, encoded string) bool {
	params, salt, hash, err := decodeArgon2id(encoded)
	if err != nil {
		return false
	}
	key := argon2.IDKey([]byte(raw), salt, params.iterations, params.memory, params.parallelism, uint32(params.keyLength))
	return subtle.ConstantTimeCompare(hash, key) == 1
}

func decodeArgon2id(encoded string) (argon2Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return argon2Params{}, nil, nil, errors.New("invalid hash format")
	}
	var params argon2Params
	if !strings.HasPrefix(parts[1], "argon2") {
		return argon2Params{}, nil, nil, errors.New("invalid hash type")
	}
	for _, kv := range strings.Split(parts[3], ",") {
		pair := strings.SplitN(kv, "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "m":
			value, _ := strconv.ParseUint(pair[1], 10, 32)
			params.memory = uint32(value)
		case "t":
			value, _ := strconv.ParseUint(pair[1], 10, 32)
			params.iterations = uint32(value)
		case "p":
			value, _ := strconv.ParseUint(pair[1], 10, 8)
			params.parallelism = uint8(value)
		}
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return argon2Params{}, nil, nil, err
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return argon2Params{}, nil, nil, err
	}
	params.saltLength = len(salt)
	params.keyLength = len(hash)
	return params, salt, hash, nil
}
