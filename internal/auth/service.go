package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Serge13790/Site-Marcheurs/internal/db"
	"github.com/Serge13790/Site-Marcheurs/internal/mailer"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
	loginTokenTTL   = 15 * time.Minute
)

const profileColumns = `id, email, display_name, first_name, last_name, address, address_complement,
	postal_code, city, phone_mobile, phone_fixed, is_profile_completed, role, approved, created_at, updated_at`

var ErrLoginUnavailable = errors.New("passwordless login unavailable")
var ErrInvalidLoginToken = errors.New("login token invalid or expired")

type Service struct {
	secret  []byte
	db      db.Querier
	redis   *redis.Client
	sender  mailer.Sender
	siteURL string
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, database db.Querier, redisClient *redis.Client, sender mailer.Sender, siteURL string) *Service {
	return &Service{
		secret:  []byte(secret),
		db:      database,
		redis:   redisClient,
		sender:  sender,
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

// RequestMagicLink stores a single-use login token (bcrypt-hashed, 15 min TTL)
// and emails the branded sign-in link. First-time addresses get the signup copy.
func (s *Service) RequestMagicLink(ctx context.Context, email string) error {
	if email == "" {
		return errors.New("email required")
	}
	if s.redis == nil {
		return ErrLoginUnavailable
	}

	tokenID := uuid.NewString()
	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, loginKey(tokenID), email+"\n"+string(hash), loginTokenTTL).Err(); err != nil {
		return err
	}

	action := "magiclink"
	if _, err := s.ProfileByEmail(ctx, email); errors.Is(err, pgx.ErrNoRows) {
		action = "signup"
	}

	link := s.siteURL + "/auth/callback?id=" + tokenID + "&token=" + secret
	html, err := mailer.RenderAuthEmail(s.siteURL, link, "", mailer.CopyForAction(action))
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, mailer.Message{
		To:      []string{email},
		Subject: mailer.CopyForAction(action).Subject,
		HTML:    html,
	})
}

// VerifyMagicLink consumes a login token, creating the profile row on first
// sign-in, and issues session tokens. The token is deleted before the bcrypt
// comparison, so a replayed link fails even when the first attempt did.
func (s *Service) VerifyMagicLink(ctx context.Context, tokenID, secret string) (Profile, TokenResponse, error) {
	if s.redis == nil {
		return Profile{}, TokenResponse{}, ErrLoginUnavailable
	}

	stored, err := s.redis.GetDel(ctx, loginKey(tokenID)).Result()
	if err != nil {
		return Profile{}, TokenResponse{}, ErrInvalidLoginToken
	}
	email, hash, ok := strings.Cut(stored, "\n")
	if !ok {
		return Profile{}, TokenResponse{}, ErrInvalidLoginToken
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return Profile{}, TokenResponse{}, ErrInvalidLoginToken
	}

	profile, err := s.getOrCreateProfile(ctx, email)
	if err != nil {
		return Profile{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateTokens(ctx, profile.ID)
	if err != nil {
		return Profile{}, TokenResponse{}, err
	}
	return profile, tokens, nil
}

func (s *Service) getOrCreateProfile(ctx context.Context, email string) (Profile, error) {
	profile, err := s.ProfileByEmail(ctx, email)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, err
	}

	profile = Profile{
		ID:    uuid.NewString(),
		Email: email,
		Role:  RoleWalker,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO profiles (id, email, role, is_profile_completed, approved)
		VALUES ($1,$2,$3,false,false)
		RETURNING created_at, updated_at
	`, profile.ID, profile.Email, profile.Role)
	if err := row.Scan(&profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (s *Service) ProfileByEmail(ctx context.Context, email string) (Profile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email=$1`, email)
	return scanProfile(row)
}

func (s *Service) ProfileByID(ctx context.Context, id string) (Profile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, id)
	return scanProfile(row)
}

// CompleteProfile applies the self-service completion form and flips
// is_profile_completed. Role and approval are untouched; approval stays an
// admin-only action.
func (s *Service) CompleteProfile(ctx context.Context, id string, req CompletionRequest) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE profiles
		SET display_name=$2, first_name=$3, last_name=$4, address=$5, address_complement=$6,
		    postal_code=$7, city=$8, phone_mobile=$9, phone_fixed=$10,
		    is_profile_completed=true, updated_at=now()
		WHERE id=$1
		RETURNING `+profileColumns+`
	`, id, req.DisplayName, req.FirstName, req.LastName, req.Address, req.AddressComplement,
		req.PostalCode, req.City, req.PhoneMobile, req.PhoneFixed)
	return scanProfile(row)
}

func (s *Service) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *Service) SetApproval(ctx context.Context, id string, approved bool) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE profiles SET approved=$2, updated_at=now() WHERE id=$1
		RETURNING `+profileColumns+`
	`, id, approved)
	return scanProfile(row)
}

func (s *Service) SetRole(ctx context.Context, id, role string) (Profile, error) {
	if role != RoleAdmin && role != RoleEditor && role != RoleWalker {
		return Profile{}, errors.New("invalid role")
	}
	row := s.db.QueryRow(ctx, `
		UPDATE profiles SET role=$2, updated_at=now() WHERE id=$1
		RETURNING `+profileColumns+`
	`, id, role)
	return scanProfile(row)
}

func (s *Service) GenerateTokens(ctx context.Context, userID string) (TokenResponse, error) {
	access, err := s.signToken(userID, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(userID, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, userID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}

	userID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || userID != claims.UserID || time.Now().After(expiresAt) {
		return "", errors.New("refresh token invalid")
	}
	return claims.UserID, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *Service) signToken(userID string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var userID string
	var expiresAt time.Time
	if err := row.Scan(&userID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return userID, expiresAt, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.FirstName, &p.LastName, &p.Address,
		&p.AddressComplement, &p.PostalCode, &p.City, &p.PhoneMobile, &p.PhoneFixed,
		&p.IsProfileCompleted, &p.Role, &p.Approved, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func loginKey(tokenID string) string {
	return "login:" + tokenID
}
