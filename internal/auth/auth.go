package auth

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/berlinbruno/podpirate/internal/apperr"
	"github.com/berlinbruno/podpirate/internal/config"
	"github.com/berlinbruno/podpirate/internal/logging"
	"github.com/berlinbruno/podpirate/internal/store"
	"github.com/berlinbruno/podpirate/internal/token"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// MailPublisher enqueues a mail job for asynchronous delivery. The queue
// client satisfies this; tests use an in-memory fake.
type MailPublisher interface {
	PublishMail(ctx context.Context, job *models.MailJob) error
}

// ProfileInvalidator drops the cached public profile of an account after
// a mutation. The redis cache satisfies this; nil disables invalidation.
type ProfileInvalidator interface {
	DeleteProfile(ctx context.Context, accountID string) error
}

// TokenPair is an access + refresh token issued together at login and on
// every refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service drives every guarded transition on an Account: registration,
// login, token rotation, verification, password changes and moderation
// locks. All reads and writes go through the account store; tokens never
// touch persistent state.
type Service struct {
	accounts store.AccountStore
	tokens   *token.Codec
	mail     MailPublisher
	cache    ProfileInvalidator
	logger   *logging.Logger

	adminEmail string

	now func() time.Time
}

// NewService creates the account lifecycle service. cache may be nil.
func NewService(accounts store.AccountStore, tokens *token.Codec, mail MailPublisher, cache ProfileInvalidator, cfg config.AuthConfig, logger *logging.Logger) *Service {
	return &Service{
		accounts:   accounts,
		tokens:     tokens,
		mail:       mail,
		cache:      cache,
		logger:     logger,
		adminEmail: strings.ToLower(cfg.AdminEmail),
		now:        time.Now,
	}
}

// invalidateProfile drops the cached public profile after a mutation. A
// cache failure is logged, not surfaced: the write already succeeded.
func (s *Service) invalidateProfile(ctx context.Context, accountID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteProfile(ctx, accountID); err != nil {
		s.logger.WithAccountID(accountID).ErrorWithErr("failed to invalidate cached profile", err)
	}
}

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=30"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new unverified account and enqueues a verification
// mail. The configured admin email receives the ADMIN role; a second
// admin registration fails loudly instead of downgrading to USER.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.ToLower(strings.TrimSpace(req.Username))

	if !ValidPassword(req.Password) {
		return nil, apperr.ErrWeakPassword
	}

	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrEmailExists
	}

	exists, err = s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrUsernameExists
	}

	roles := []models.Role{models.RoleUser}
	if s.adminEmail != "" && email == s.adminEmail {
		adminExists, err := s.accounts.AdminExists(ctx)
		if err != nil {
			return nil, err
		}
		if adminExists {
			return nil, apperr.ErrAdminAlreadyExists
		}
		roles = []models.Role{models.RoleAdmin}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Roles:        roles,
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	s.enqueueVerificationMail(ctx, account)
	return account, nil
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and account preconditions, records the login
// time and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenPair, *models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, nil, apperr.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !account.EmailVerified {
		return nil, nil, apperr.ErrAccountUnverified
	}
	if account.Locked {
		return nil, nil, apperr.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return nil, nil, apperr.ErrInvalidCredentials
	}

	now := s.now().UTC()
	account.LastLoginAt = &now
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(account.Email, now)
	if err != nil {
		return nil, nil, err
	}
	return pair, account, nil
}

// Refresh validates a refresh token and rotates the pair. The old refresh
// token is not revoked; tokens are stateless and the new pair simply
// supersedes it.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	email, err := s.tokens.Validate(refreshToken, token.KindRefresh, "")
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !account.CanAuthenticate() {
		if account.Locked {
			return nil, apperr.ErrAccountLocked
		}
		return nil, apperr.ErrAccountUnverified
	}

	return s.issuePair(account.Email, s.now().UTC())
}

// SignOut re-checks the caller's password and flips emailVerified off.
// With stateless tokens there is nothing to revoke; forcing
// re-verification is the closest available global logout.
func (s *Service) SignOut(ctx context.Context, email, password string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return apperr.ErrInvalidCredentials
	}

	account.EmailVerified = false
	return s.accounts.Save(ctx, account)
}

// SendVerificationToken issues a fresh verification token and enqueues the
// mail carrying it.
func (s *Service) SendVerificationToken(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	s.enqueueVerificationMail(ctx, account)
	return nil
}

// VerifyEmail validates a verification token bound to the email and marks
// the account verified.
func (s *Service) VerifyEmail(ctx context.Context, email, verificationToken string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.tokens.Validate(verificationToken, token.KindVerification, email); err != nil {
		return err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	account.EmailVerified = true
	return s.accounts.Save(ctx, account)
}

// ChangePassword verifies the current password and replaces it with a new
// one that meets the strength rules.
func (s *Service) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)) != nil {
		return apperr.ErrInvalidCredentials
	}

	if !ValidPassword(newPassword) {
		return apperr.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account.PasswordHash = string(hash)
	return s.accounts.Save(ctx, account)
}

// ResetPassword validates a verification token bound to the email and sets
// a new password without requiring the old one.
func (s *Service) ResetPassword(ctx context.Context, email, verificationToken, newPassword, confirmPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.tokens.Validate(verificationToken, token.KindVerification, email); err != nil {
		return err
	}

	if newPassword != confirmPassword {
		return apperr.ErrPasswordMismatch
	}
	if !ValidPassword(newPassword) {
		return apperr.ErrWeakPassword
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account.PasswordHash = string(hash)
	return s.accounts.Save(ctx, account)
}

// SendPasswordReset issues a verification token and enqueues the reset
// mail. Unknown emails fail with not-found; the handler may choose to mask
// that.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	t, err := s.tokens.Issue(token.KindVerification, account.Email, s.now().UTC())
	if err != nil {
		return err
	}

	s.enqueue(ctx, &models.MailJob{
		ID:       uuid.New().String(),
		Kind:     models.MailKindPasswordReset,
		To:       account.Email,
		Username: account.Username,
		Token:    t,
	})
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// Used by flows that re-authenticate a caller before a destructive action.
func (s *Service) CheckPassword(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	return account, nil
}

// Lock locks an account. Locking an already-locked account is a conflict,
// not a no-op.
func (s *Service) Lock(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Locked {
		return nil, apperr.ErrAlreadyLocked
	}

	account.Locked = true
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	s.invalidateProfile(ctx, account.ID)
	return account, nil
}

// Unlock unlocks a locked account.
func (s *Service) Unlock(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.Locked {
		return nil, apperr.ErrNotLocked
	}

	account.Locked = false
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	s.invalidateProfile(ctx, account.ID)
	return account, nil
}

// UpdateProfileRequest carries partial profile updates. Nil means leave
// the field untouched; a pointer to an empty string clears it.
type UpdateProfileRequest struct {
	Username    *string `json:"username,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	ProfilePath *string `json:"profile_path,omitempty"`
}

// UpdateProfile applies a partial profile update for the account owning
// the email. A changed profile path is returned alongside the old one so
// the caller can release the replaced blob.
func (s *Service) UpdateProfile(ctx context.Context, email string, req UpdateProfileRequest) (*models.Account, string, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}

	if req.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if username != account.Username {
			exists, err := s.accounts.ExistsByUsername(ctx, username)
			if err != nil {
				return nil, "", err
			}
			if exists {
				return nil, "", apperr.ErrUsernameExists
			}
			account.Username = username
		}
	}
	if req.Bio != nil {
		account.Bio = *req.Bio
	}

	var replacedPath string
	if req.ProfilePath != nil && *req.ProfilePath != account.ProfilePath {
		replacedPath = account.ProfilePath
		account.ProfilePath = *req.ProfilePath
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, "", err
	}
	s.invalidateProfile(ctx, account.ID)
	return account, replacedPath, nil
}

func (s *Service) issuePair(email string, now time.Time) (*TokenPair, error) {
	access, err := s.tokens.Issue(token.KindAccess, email, now)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(token.KindRefresh, email, now)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) enqueueVerificationMail(ctx context.Context, account *models.Account) {
	t, err := s.tokens.Issue(token.KindVerification, account.Email, s.now().UTC())
	if err != nil {
		s.logger.ErrorWithErr("failed to issue verification token", err)
		return
	}

	s.enqueue(ctx, &models.MailJob{
		ID:       uuid.New().String(),
		Kind:     models.MailKindVerification,
		To:       account.Email,
		Username: account.Username,
		Token:    t,
	})
}

// enqueue publishes a mail job. Publish failures are logged and dropped;
// the mutation that triggered the mail has already committed and is never
// rolled back.
func (s *Service) enqueue(ctx context.Context, job *models.MailJob) {
	job.EnqueuedAt = s.now().UTC()
	if err := s.mail.PublishMail(ctx, job); err != nil {
		s.logger.WithField("mail_kind", string(job.Kind)).ErrorWithErr("failed to enqueue mail", err)
	}
}

// ValidPassword reports whether a password meets the complexity rules:
// 8-20 characters with at least one lowercase letter, one uppercase
// letter, one digit and one special character from @$!%*?&.
func ValidPassword(password string) bool {
	if len(password) < 8 || len(password) > 20 {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}
