package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/auth"
	"github.com/yourorg/imnotdurnk/internal/db"
	"github.com/yourorg/imnotdurnk/internal/mailer"
	"github.com/yourorg/imnotdurnk/internal/models"
)

const (
	verificationCodeDigits = 6
	tempPasswordLength     = 10
	tempPasswordAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"
)

// UserStore is the persistence the user service needs.
type UserStore interface {
	Create(ctx context.Context, u *models.User) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	MarkVerified(ctx context.Context, email string) error
}

type UserService struct {
	users    UserStore
	tokens   *auth.Tokens
	store    *auth.Store
	resolver *auth.Resolver
	mail     mailer.Sender
}

func NewUserService(users UserStore, tokens *auth.Tokens, store *auth.Store, mail mailer.Sender) *UserService {
	return &UserService{
		users:    users,
		tokens:   tokens,
		store:    store,
		resolver: auth.NewResolver(tokens, store),
		mail:     mail,
	}
}

// SignUp creates an unverified account.
func (s *UserService) SignUp(ctx context.Context, dto models.UserDTO) error {
	email := normalizeEmail(dto.Email)
	name := strings.TrimSpace(dto.Name)
	if email == "" || dto.Password == "" || name == "" {
		return apperror.BadRequest("email, password and name are required")
	}
	if !strings.Contains(email, "@") {
		return apperror.BadRequest("invalid email")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return internal("failed to check email", err)
	}
	if exists {
		return apperror.BadRequest("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return internal("failed to secure password", err)
	}

	user := &models.User{
		Email:           email,
		PasswordHash:    string(hash),
		Name:            name,
		Nickname:        dto.Nickname,
		Phone:           dto.Phone,
		Address:         dto.Address,
		DetailedAddress: dto.DetailedAddress,
		PostalCode:      dto.PostalCode,
		EmergencyCall:   dto.EmergencyCall,
		SojuUnit:        dto.SojuUnit,
		SojuAmount:      dto.SojuAmount,
		BeerUnit:        dto.BeerUnit,
		BeerAmount:      dto.BeerAmount,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if db.IsDuplicateEntry(err) {
			return apperror.BadRequest("email is already registered")
		}
		return internal("failed to create user", err)
	}
	return nil
}

// SendVerificationCode mails a 6-digit code valid for five minutes.
func (s *UserService) SendVerificationCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		return notFoundOr(err, "user not found", "failed to load user")
	}

	code, err := randomDigits(verificationCodeDigits)
	if err != nil {
		return internal("failed to generate code", err)
	}
	s.store.SaveVerificationCode(email, code)

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(auth.VerificationCodeTTL/time.Minute))
	if err := s.mail.Send(ctx, email, "[imnotdurnk] Verification code", body); err != nil {
		return internal("failed to send verification mail", err)
	}
	return nil
}

// VerifyCode marks the account verified when code matches.
func (s *UserService) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if !s.store.CheckVerificationCode(email, strings.TrimSpace(code)) {
		return apperror.BadRequest("verification code is invalid or expired")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if err := s.users.MarkVerified(ctx, email); err != nil {
		return internal("failed to verify user", err)
	}
	return nil
}

// Login checks credentials and issues an access and a refresh token. The
// refresh token is remembered for the user.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.AuthDTO, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.BadRequest("email and password are required")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, internal("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}
	if !user.Verified {
		return nil, apperror.Unauthorized("email is not verified")
	}

	access, err := s.tokens.IssueAccess(user.ID, user.Email)
	if err != nil {
		return nil, internal("failed to sign token", err)
	}
	refresh, err := s.tokens.IssueRefresh(user.ID, user.Email)
	if err != nil {
		return nil, internal("failed to sign token", err)
	}
	s.store.SaveRefreshToken(user.ID, refresh.Token, s.tokens.RefreshTTL())

	return &models.AuthDTO{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh issues a new access token for a refresh token that is still the
// one remembered for its user.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.TokenDTO, error) {
	claims, err := s.tokens.Parse(strings.TrimSpace(refreshToken), auth.TypeRefresh)
	if err != nil {
		return nil, apperror.Unauthorized("refresh token is invalid")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperror.Unauthorized("refresh token is invalid")
	}
	stored, ok := s.store.RefreshToken(userID)
	if !ok || stored != refreshToken {
		return nil, apperror.Unauthorized("refresh token is no longer valid")
	}

	access, err := s.tokens.IssueAccess(userID, claims.Email)
	if err != nil {
		return nil, internal("failed to sign token", err)
	}
	return &access, nil
}

// SendTemporaryPassword resets the password to a random one and mails it.
func (s *UserService) SendTemporaryPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return notFoundOr(err, "user not found", "failed to load user")
	}

	password, err := randomString(tempPasswordLength, tempPasswordAlphabet)
	if err != nil {
		return internal("failed to generate password", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return internal("failed to secure password", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return internal("failed to update password", err)
	}

	body := fmt.Sprintf("Your temporary password is %s. Please change it after logging in.", password)
	if err := s.mail.Send(ctx, email, "[imnotdurnk] Temporary password", body); err != nil {
		return internal("failed to send password mail", err)
	}
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, token string) (*models.UserDTO, error) {
	userID, err := s.resolver.UserID(token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to load user")
	}
	out := user.ToDTO()
	return &out, nil
}

// UpdateProfile overwrites the editable fields. Email and password are not
// changed here.
func (s *UserService) UpdateProfile(ctx context.Context, token string, dto models.UserDTO) (*models.UserDTO, error) {
	userID, err := s.resolver.UserID(token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dto.Name) == "" {
		return nil, apperror.BadRequest("name is required")
	}
	if dto.SojuUnit < 0 || dto.BeerUnit < 0 || dto.SojuAmount < 0 || dto.BeerAmount < 0 {
		return nil, apperror.BadRequest("drinking capacity must not be negative")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to load user")
	}

	user.Name = strings.TrimSpace(dto.Name)
	user.Nickname = dto.Nickname
	user.Phone = dto.Phone
	user.Address = dto.Address
	user.DetailedAddress = dto.DetailedAddress
	user.PostalCode = dto.PostalCode
	user.EmergencyCall = dto.EmergencyCall
	user.SojuUnit = dto.SojuUnit
	user.SojuAmount = dto.SojuAmount
	user.BeerUnit = dto.BeerUnit
	user.BeerAmount = dto.BeerAmount
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, internal("failed to update profile", err)
	}

	out := user.ToDTO()
	return &out, nil
}

// Logout rejects the access token until it would have expired and forgets
// the user's refresh token.
func (s *UserService) Logout(_ context.Context, accessToken, _ string) error {
	claims, err := s.resolver.AccessClaims(accessToken)
	if err != nil {
		return err
	}
	userID, err := claims.UserID()
	if err != nil {
		return apperror.Unauthorized("access token is invalid")
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	s.store.Blacklist(strings.TrimSpace(accessToken), ttl)
	s.store.DeleteRefreshToken(userID)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomDigits(n int) (string, error) {
	return randomString(n, "0123456789")
}

func randomString(n int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}
