package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berlinbruno/podpirate/internal/apperr"
	"github.com/berlinbruno/podpirate/internal/config"
	"github.com/berlinbruno/podpirate/internal/logging"
	"github.com/berlinbruno/podpirate/internal/store"
	"github.com/berlinbruno/podpirate/internal/token"
	"github.com/berlinbruno/podpirate/pkg/models"
)

type fakeAccountStore struct {
	accounts map[string]*models.Account // keyed by id
	nextID   int
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[string]*models.Account)}
}

func (f *fakeAccountStore) GetByID(_ context.Context, id string) (*models.Account, error) {
	if a, ok := f.accounts[id]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, apperr.ErrAccountNotFound
}

func (f *fakeAccountStore) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, a := range f.accounts {
		if strings.EqualFold(a.Email, email) {
			copy := *a
			return &copy, nil
		}
	}
	return nil, apperr.ErrAccountNotFound
}

func (f *fakeAccountStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, a := range f.accounts {
		if strings.EqualFold(a.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, a := range f.accounts {
		if strings.EqualFold(a.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountStore) AdminExists(_ context.Context) (bool, error) {
	for _, a := range f.accounts {
		if a.HasRole(models.RoleAdmin) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountStore) Save(_ context.Context, account *models.Account) error {
	if account.ID == "" {
		f.nextID++
		account.ID = fmt.Sprintf("account-%d", f.nextID)
		account.CreatedAt = time.Now().UTC()
	}
	account.UpdatedAt = time.Now().UTC()
	copy := *account
	f.accounts[account.ID] = &copy
	return nil
}

func (f *fakeAccountStore) Delete(_ context.Context, id string) error {
	delete(f.accounts, id)
	return nil
}

func (f *fakeAccountStore) Search(_ context.Context, _ store.AccountFilter, _, _ int) ([]models.Account, int64, error) {
	var out []models.Account
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

type fakePublisher struct {
	jobs []*models.MailJob
	err  error
}

func (f *fakePublisher) PublishMail(_ context.Context, job *models.MailJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeProfileCache struct {
	dropped []string
}

func (f *fakeProfileCache) DeleteProfile(_ context.Context, accountID string) error {
	f.dropped = append(f.dropped, accountID)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeAccountStore, *fakePublisher) {
	t.Helper()
	accounts := newFakeAccountStore()
	publisher := &fakePublisher{}
	codec := token.NewCodec("test-secret", 24*time.Hour, 168*time.Hour, 10*time.Minute)
	logger, err := logging.NewDefaultLogger()
	require.NoError(t, err)

	svc := NewService(accounts, codec, publisher, nil, config.AuthConfig{AdminEmail: "admin@podpirate.dev"}, logger)
	return svc, accounts, publisher
}

const strongPassword = "Str0ng!Pass"

func register(t *testing.T, svc *Service, email, username string) *models.Account {
	t.Helper()
	account, err := svc.Register(context.Background(), RegisterRequest{
		Email:    email,
		Username: username,
		Password: strongPassword,
	})
	require.NoError(t, err)
	return account
}

func verify(t *testing.T, svc *Service, publisher *fakePublisher, email string) {
	t.Helper()
	require.NotEmpty(t, publisher.jobs, "expected a verification mail job")
	job := publisher.jobs[len(publisher.jobs)-1]
	require.Equal(t, models.MailKindVerification, job.Kind)
	require.NoError(t, svc.VerifyEmail(context.Background(), email, job.Token))
}

func TestRegister(t *testing.T) {
	svc, _, publisher := newTestService(t)

	account := register(t, svc, "Alice@Example.com", "Alice")

	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, "alice", account.Username)
	assert.False(t, account.EmailVerified)
	assert.Equal(t, []models.Role{models.RoleUser}, account.Roles)
	assert.NotEqual(t, strongPassword, account.PasswordHash)

	require.Len(t, publisher.jobs, 1)
	assert.Equal(t, models.MailKindVerification, publisher.jobs[0].Kind)
	assert.Equal(t, "alice@example.com", publisher.jobs[0].To)
	assert.NotEmpty(t, publisher.jobs[0].Token)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestService(t)

	register(t, svc, "alice@example.com", "alice")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "ALICE@example.com",
		Username: "other",
		Password: strongPassword,
	})
	assert.ErrorIs(t, err, apperr.ErrEmailExists)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService(t)

	register(t, svc, "alice@example.com", "alice")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "bob@example.com",
		Username: "alice",
		Password: strongPassword,
	})
	assert.ErrorIs(t, err, apperr.ErrUsernameExists)
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	weak := []string{
		"short1!",               // too short
		"alllowercase1!",        // no uppercase
		"ALLUPPERCASE1!",        // no lowercase
		"NoDigitsHere!",         // no digit
		"NoSpecials123",         // no special
		"Has Spaces 1!",         // disallowed character
		"WayTooLongPassword123!@#", // over 20 chars
	}
	for _, password := range weak {
		_, err := svc.Register(context.Background(), RegisterRequest{
			Email:    "alice@example.com",
			Username: "alice",
			Password: password,
		})
		assert.ErrorIs(t, err, apperr.ErrWeakPassword, "password %q should be rejected", password)
	}
}

func TestRegisterAdminAssignment(t *testing.T) {
	svc, _, _ := newTestService(t)

	admin := register(t, svc, "admin@podpirate.dev", "admin")
	assert.Equal(t, []models.Role{models.RoleAdmin}, admin.Roles)
}

func TestRegisterSecondAdminFailsLoudly(t *testing.T) {
	svc, accounts, _ := newTestService(t)

	register(t, svc, "admin@podpirate.dev", "admin")

	// Free the email so only the admin-role check can reject.
	for _, a := range accounts.accounts {
		if a.HasRole(models.RoleAdmin) {
			a.Email = "retired@podpirate.dev"
		}
	}

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "admin@podpirate.dev",
		Username: "admin2",
		Password: strongPassword,
	})
	assert.ErrorIs(t, err, apperr.ErrAdminAlreadyExists)
}

func TestRegisterSurvivesPublishFailure(t *testing.T) {
	svc, _, publisher := newTestService(t)
	publisher.err = assert.AnError

	account, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: strongPassword,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
}

func TestLogin(t *testing.T) {
	svc, _, publisher := newTestService(t)

	register(t, svc, "alice@example.com", "alice")
	verify(t, svc, publisher, "alice@example.com")

	pair, account, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: strongPassword,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotNil(t, account.LastLoginAt)
}

func TestLoginUnverified(t *testing.T) {
	svc, _, _ := newTestService(t)

	register(t, svc, "alice@example.com", "alice")

	_, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: strongPassword,
	})
	assert.ErrorIs(t, err, apperr.ErrAccountUnverified)
}

func TestLoginLocked(t *testing.T) {
	svc, _, publisher := newTestService(t)

	account := register(t, svc, "alice@example.com", "alice")
	verify(t, svc, publisher, "alice@example.com")

	_, err := svc.Lock(context.Background(), account.ID)
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: strongPassword,
	})
	assert.ErrorIs(t, err, apperr.ErrAccountLocked)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, publisher := newTestService(t)

	register(t, svc, "alice@example.com", "alice")
	verify(t, svc, publisher, "alice@example.com")

	_, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "Wr0ng!Pass",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestLoginUnknownEmailMapsToInvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: strongPassword,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestRefreshRotatesPair(t *testing.T) {
	svc, _, publisher := newTestService(t)

	register(t, svc, "alice@example.com", "alice")
	verify(t, svc, publisher, "alice@example.com")

	pair, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: strongPassword,
	})
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEmpty(t, rotated.RefreshToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, publisher := newTestService(t)

	register(t, svc, "alice@example.com", "alice")
	verify(t, svc, publisher, "alice@example.com")

	pair, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: strongPassword,
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrTokenKindMismatch)
}

func TestSignOutForcesReverification(t *testing.T) {
	svc, _, publisher := newTestService(t)

	register(t, svc, "alice@example.com", "alice")
	verify(t, svc, publisher, "alice@example.com")

	require.NoError(t, svc.SignOut(context.Background(), "alice@example.com", strongPassword))

	_, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: strongPassword,
	})
	assert.ErrorIs(t, err, apperr.ErrAccountUnverified)
}

func TestSignOutWrongPassword(t *testing.T) {
	svc, _, publisher := newTestService(t)

	register(t, svc, "alice@example.com", "alice")
	verify(t, svc, publisher, "alice@example.com")

	err := svc.SignOut(context.Background(), "alice@example.com", "Wr0ng!Pass")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc, _, publisher := newTestService(t)

	register(t, svc, "alice@example.com", "alice")
	verify(t, svc, publisher, "alice@example.com")

	const newPassword = "N3w!Password"
	require.NoError(t, svc.ChangePassword(context.Background(), "alice@example.com", strongPassword, newPassword))

	_, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: newPassword,
	})
	assert.NoError(t, err)
}

func TestChangePasswordRejectsWeakReplacement(t *testing.T) {
	svc, _, _ := newTestService(t)

	register(t, svc, "alice@example.com", "alice")

	err := svc.ChangePassword(context.Background(), "alice@example.com", strongPassword, "weak")
	assert.ErrorIs(t, err, apperr.ErrWeakPassword)
}

func TestResetPassword(t *testing.T) {
	svc, _, publisher := newTestService(t)

	register(t, svc, "alice@example.com", "alice")
	verify(t, svc, publisher, "alice@example.com")

	require.NoError(t, svc.SendPasswordReset(context.Background(), "alice@example.com"))
	job := publisher.jobs[len(publisher.jobs)-1]
	require.Equal(t, models.MailKindPasswordReset, job.Kind)

	const newPassword = "R3set!Pass"
	require.NoError(t, svc.ResetPassword(context.Background(), "alice@example.com", job.Token, newPassword, newPassword))

	_, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: newPassword,
	})
	assert.NoError(t, err)
}

func TestResetPasswordMismatch(t *testing.T) {
	svc, _, publisher := newTestService(t)

	register(t, svc, "alice@example.com", "alice")
	verify(t, svc, publisher, "alice@example.com")

	require.NoError(t, svc.SendPasswordReset(context.Background(), "alice@example.com"))
	job := publisher.jobs[len(publisher.jobs)-1]

	err := svc.ResetPassword(context.Background(), "alice@example.com", job.Token, "N3w!Password", "Other!Pass1")
	assert.ErrorIs(t, err, apperr.ErrPasswordMismatch)
}

func TestResetPasswordWrongEmailBinding(t *testing.T) {
	svc, _, publisher := newTestService(t)

	register(t, svc, "alice@example.com", "alice")
	verify(t, svc, publisher, "alice@example.com")

	require.NoError(t, svc.SendPasswordReset(context.Background(), "alice@example.com"))
	job := publisher.jobs[len(publisher.jobs)-1]

	err := svc.ResetPassword(context.Background(), "bob@example.com", job.Token, "N3w!Password", "N3w!Password")
	assert.ErrorIs(t, err, apperr.ErrEmailTokenMismatch)
}

func TestLockUnlockTransitions(t *testing.T) {
	svc, _, _ := newTestService(t)

	account := register(t, svc, "alice@example.com", "alice")

	locked, err := svc.Lock(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, locked.Locked)

	_, err = svc.Lock(context.Background(), account.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyLocked)

	unlocked, err := svc.Unlock(context.Background(), account.ID)
	require.NoError(t, err)
	assert.False(t, unlocked.Locked)

	_, err = svc.Unlock(context.Background(), account.ID)
	assert.ErrorIs(t, err, apperr.ErrNotLocked)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService(t)

	register(t, svc, "alice@example.com", "alice")

	newUsername := "alice_v2"
	bio := "Host of Night Watch Radio"
	path := "media/profiles/abc/profile.jpg"
	account, replaced, err := svc.UpdateProfile(context.Background(), "alice@example.com", UpdateProfileRequest{
		Username:    &newUsername,
		Bio:         &bio,
		ProfilePath: &path,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice_v2", account.Username)
	assert.Equal(t, bio, account.Bio)
	assert.Equal(t, path, account.ProfilePath)
	assert.Empty(t, replaced)

	// Replacing the image reports the old path for blob cleanup.
	newPath := "media/profiles/abc/profile2.jpg"
	_, replaced, err = svc.UpdateProfile(context.Background(), "alice@example.com", UpdateProfileRequest{
		ProfilePath: &newPath,
	})
	require.NoError(t, err)
	assert.Equal(t, path, replaced)
}

func TestProfileMutationsInvalidateCachedProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	cache := &fakeProfileCache{}
	svc.cache = cache

	account := register(t, svc, "alice@example.com", "alice")

	bio := "Host of Night Watch Radio"
	_, _, err := svc.UpdateProfile(context.Background(), "alice@example.com", UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)

	_, err = svc.Lock(context.Background(), account.ID)
	require.NoError(t, err)
	_, err = svc.Unlock(context.Background(), account.ID)
	require.NoError(t, err)

	require.Len(t, cache.dropped, 3)
	for _, id := range cache.dropped {
		assert.Equal(t, account.ID, id)
	}
}

func TestUpdateProfileUsernameTaken(t *testing.T) {
	svc, _, _ := newTestService(t)

	register(t, svc, "alice@example.com", "alice")
	register(t, svc, "bob@example.com", "bob")

	taken := "bob"
	_, _, err := svc.UpdateProfile(context.Background(), "alice@example.com", UpdateProfileRequest{Username: &taken})
	assert.ErrorIs(t, err, apperr.ErrUsernameExists)
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Str0ng!Pass", true},
		{"Aa1@aaaa", true},
		{"Aa1@aaa", false},  // 7 chars
		{"aa1@aaaa", false}, // no upper
		{"AA1@AAAA", false}, // no lower
		{"Aaa@aaaa", false}, // no digit
		{"Aa1aaaaa", false}, // no special
		{"Aa1@aaaaaaaaaaaaaaaa", true},  // 20 chars
		{"Aa1@aaaaaaaaaaaaaaaaa", false}, // 21 chars
		{"Aa1#aaaa", false}, // special outside allowed set
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidPassword(tt.password), "password %q", tt.password)
	}
}
