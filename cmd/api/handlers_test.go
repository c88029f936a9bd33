package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/berlinbruno/podpirate/internal/apperr"
	"github.com/berlinbruno/podpirate/internal/auth"
	"github.com/berlinbruno/podpirate/internal/config"
	"github.com/berlinbruno/podpirate/internal/content"
	"github.com/berlinbruno/podpirate/internal/logging"
	"github.com/berlinbruno/podpirate/internal/media"
	"github.com/berlinbruno/podpirate/internal/middleware"
	"github.com/berlinbruno/podpirate/internal/store"
	"github.com/berlinbruno/podpirate/internal/token"
	"github.com/berlinbruno/podpirate/pkg/models"
)

// MockAccountStore is a mock implementation of store.AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountStore) AdminExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountStore) Save(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountStore) Search(ctx context.Context, filter store.AccountFilter, page, size int) ([]models.Account, int64, error) {
	args := m.Called(ctx, filter, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Account), args.Get(1).(int64), args.Error(2)
}

// MockPodcastStore is a mock implementation of store.PodcastStore
type MockPodcastStore struct {
	mock.Mock
}

func (m *MockPodcastStore) GetByID(ctx context.Context, id string) (*models.Podcast, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Podcast), args.Error(1)
}

func (m *MockPodcastStore) GetPublishedByID(ctx context.Context, id string) (*models.Podcast, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Podcast), args.Error(1)
}

func (m *MockPodcastStore) ListByAccount(ctx context.Context, accountID string) ([]models.Podcast, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Podcast), args.Error(1)
}

func (m *MockPodcastStore) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPodcastStore) Save(ctx context.Context, podcast *models.Podcast) error {
	args := m.Called(ctx, podcast)
	return args.Error(0)
}

func (m *MockPodcastStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPodcastStore) Search(ctx context.Context, filter store.PodcastFilter, page, size int) ([]models.Podcast, int64, error) {
	args := m.Called(ctx, filter, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Podcast), args.Get(1).(int64), args.Error(2)
}

// MockPublisher is a mock implementation of auth.MailPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishMail(ctx context.Context, job *models.MailJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func testLogger() *logging.Logger {
	logger, _ := logging.NewLogger(logging.Config{Level: "error", Format: "json", Output: "stderr"})
	return logger
}

func testAuthService(accounts store.AccountStore, publisher auth.MailPublisher) *auth.Service {
	codec := token.NewCodec("handler-test-secret", time.Hour, 7*24*time.Hour, 10*time.Minute)
	cfg := config.AuthConfig{JWTSecret: "handler-test-secret", AdminEmail: "admin@example.com"}
	return auth.NewService(accounts, codec, publisher, nil, cfg, testLogger())
}

// injectAccount stands in for the JWT middleware in handler tests.
func injectAccount(account *models.Account) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AccountContextKey, account)
		c.Set(middleware.EmailContextKey, account.Email)
		c.Next()
	}
}

func TestRegisterHandler_Success(t *testing.T) {
	router := setupTestRouter()
	mockAccounts := new(MockAccountStore)
	mockPublisher := new(MockPublisher)

	api := &API{
		auth:   testAuthService(mockAccounts, mockPublisher),
		logger: testLogger(),
	}

	mockAccounts.On("ExistsByEmail", mock.Anything, "creator@example.com").Return(false, nil)
	mockAccounts.On("ExistsByUsername", mock.Anything, "creator").Return(false, nil)
	mockAccounts.On("Save", mock.Anything, mock.Anything).Return(nil)
	mockPublisher.On("PublishMail", mock.Anything, mock.Anything).Return(nil)

	router.POST("/api/auth/register", api.register)

	body, _ := json.Marshal(map[string]string{
		"email":    "creator@example.com",
		"username": "creator",
		"password": "Str0ng!Pass",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response models.Account
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "creator@example.com", response.Email)
	assert.False(t, response.EmailVerified)

	mockAccounts.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	router := setupTestRouter()
	mockAccounts := new(MockAccountStore)
	mockPublisher := new(MockPublisher)

	api := &API{
		auth:   testAuthService(mockAccounts, mockPublisher),
		logger: testLogger(),
	}

	mockAccounts.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	router.POST("/api/auth/register", api.register)

	body, _ := json.Marshal(map[string]string{
		"email":    "taken@example.com",
		"username": "creator",
		"password": "Str0ng!Pass",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "EMAIL_ALREADY_EXISTS", response["code"])

	mockAccounts.AssertExpectations(t)
}

func TestRegisterHandler_InvalidBody(t *testing.T) {
	router := setupTestRouter()
	api := &API{logger: testLogger()}

	router.POST("/api/auth/register", api.register)

	// Missing required email
	body, _ := json.Marshal(map[string]string{
		"username": "creator",
		"password": "Str0ng!Pass",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	router := setupTestRouter()
	mockAccounts := new(MockAccountStore)
	mockPublisher := new(MockPublisher)

	api := &API{
		auth:   testAuthService(mockAccounts, mockPublisher),
		logger: testLogger(),
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("Corr3ct!Pass"), bcrypt.DefaultCost)
	account := &models.Account{
		ID:            "account-1",
		Email:         "creator@example.com",
		Username:      "creator",
		PasswordHash:  string(hash),
		Roles:         []models.Role{models.RoleUser},
		EmailVerified: true,
	}
	mockAccounts.On("GetByEmail", mock.Anything, "creator@example.com").Return(account, nil)

	router.POST("/api/auth/login", api.login)

	body, _ := json.Marshal(map[string]string{
		"email":    "creator@example.com",
		"password": "Wr0ng!Pass99",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", response["code"])
}

func TestPublicGetPodcastHandler_HidesUnpublishedEpisodes(t *testing.T) {
	router := setupTestRouter()
	mockPodcasts := new(MockPodcastStore)
	mockAccounts := new(MockAccountStore)

	api := &API{
		discovery: content.NewDiscovery(mockPodcasts, mockAccounts, nil, testLogger()),
	}

	now := time.Now().UTC()
	podcast := &models.Podcast{
		ID:        "podcast-1",
		AccountID: "account-1",
		Title:     "Night Watch",
		Status:    models.PodcastStatusPublished,
		Episodes: []models.Episode{
			{Title: "published", Status: models.EpisodeStatusPublished, PublishedAt: &now},
			{Title: "draft", Status: models.EpisodeStatusDraft},
		},
	}
	mockPodcasts.On("GetPublishedByID", mock.Anything, "podcast-1").Return(podcast, nil)

	router.GET("/api/public/podcasts/:id", api.publicGetPodcast)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/public/podcasts/podcast-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.Podcast
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Episodes, 1)
	assert.Equal(t, "published", response.Episodes[0].Title)

	mockPodcasts.AssertExpectations(t)
}

func TestPublicGetPodcastHandler_NotFound(t *testing.T) {
	router := setupTestRouter()
	mockPodcasts := new(MockPodcastStore)
	mockAccounts := new(MockAccountStore)

	api := &API{
		discovery: content.NewDiscovery(mockPodcasts, mockAccounts, nil, testLogger()),
	}

	mockPodcasts.On("GetPublishedByID", mock.Anything, "missing").Return(nil, apperr.ErrPodcastNotFound)

	router.GET("/api/public/podcasts/:id", api.publicGetPodcast)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/public/podcasts/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "PODCAST_NOT_FOUND", response["code"])

	mockPodcasts.AssertExpectations(t)
}

func TestPublicListPodcastsHandler_PagedEnvelope(t *testing.T) {
	router := setupTestRouter()
	mockPodcasts := new(MockPodcastStore)
	mockAccounts := new(MockAccountStore)

	api := &API{
		discovery: content.NewDiscovery(mockPodcasts, mockAccounts, nil, testLogger()),
	}

	podcasts := []models.Podcast{
		{ID: "podcast-1", Title: "First", Status: models.PodcastStatusPublished},
		{ID: "podcast-2", Title: "Second", Status: models.PodcastStatusPublished},
	}
	mockPodcasts.On("Search", mock.Anything, mock.Anything, 1, 2).Return(podcasts, int64(5), nil)

	router.GET("/api/public/podcasts", api.publicListPodcasts)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/public/podcasts?page=1&size=2", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(5), response["total"])
	assert.Equal(t, float64(1), response["page"])
	assert.Equal(t, float64(2), response["size"])
	assert.Len(t, response["items"], 2)

	mockPodcasts.AssertExpectations(t)
}

func TestPublicMediaURLHandler_UnknownPath(t *testing.T) {
	router := setupTestRouter()
	mockPodcasts := new(MockPodcastStore)
	mockAccounts := new(MockAccountStore)

	api := &API{
		discovery: content.NewDiscovery(mockPodcasts, mockAccounts, nil, testLogger()),
		media:     media.NewService(nil),
	}

	podcast := &models.Podcast{
		ID:        "podcast-1",
		Status:    models.PodcastStatusPublished,
		CoverPath: "media/podcasts/podcast-1/cover/abc.jpg",
	}
	mockPodcasts.On("GetPublishedByID", mock.Anything, "podcast-1").Return(podcast, nil)

	router.GET("/api/public/podcasts/:id/media-url", api.publicMediaURL)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/public/podcasts/podcast-1/media-url?path=media/podcasts/other/cover/x.jpg", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockPodcasts.AssertExpectations(t)
}

func TestUpdateEpisodeHandler_InvalidIndex(t *testing.T) {
	router := setupTestRouter()
	api := &API{logger: testLogger()}

	account := &models.Account{ID: "account-1", Email: "creator@example.com"}
	router.PATCH("/api/me/podcasts/:id/episodes/:index", injectAccount(account), api.updateEpisode)

	body, _ := json.Marshal(map[string]string{"title": "renamed"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/api/me/podcasts/podcast-1/episodes/abc", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "INVALID_EPISODE_INDEX", response["code"])
}

func TestAddEpisodeHandler_MissingDuration(t *testing.T) {
	router := setupTestRouter()
	api := &API{logger: testLogger()}

	account := &models.Account{ID: "account-1", Email: "creator@example.com"}
	router.POST("/api/me/podcasts/:id/episodes", injectAccount(account), api.addEpisode)

	body, _ := json.Marshal(map[string]string{"title": "Pilot"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/me/podcasts/podcast-1/episodes", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEpisodeAudioUploadURLHandler_IndexOutOfRange(t *testing.T) {
	router := setupTestRouter()
	mockPodcasts := new(MockPodcastStore)
	mockAccounts := new(MockAccountStore)

	api := &API{
		content: content.NewService(mockPodcasts, mockAccounts, media.NewService(nil), nil, testLogger()),
		logger:  testLogger(),
	}

	account := &models.Account{ID: "account-1", Email: "creator@example.com"}
	podcast := &models.Podcast{
		ID:        "podcast-1",
		AccountID: "account-1",
		Episodes:  []models.Episode{{Title: "only one"}},
	}
	mockPodcasts.On("GetByID", mock.Anything, "podcast-1").Return(podcast, nil)

	router.GET("/api/me/podcasts/:id/episodes/:index/audio-upload-url", injectAccount(account), api.episodeAudioUploadURL)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/me/podcasts/podcast-1/episodes/5/audio-upload-url", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "EPISODE_NOT_FOUND", response["code"])

	mockPodcasts.AssertExpectations(t)
}

func TestStatusForKinds(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.KindValidation, http.StatusBadRequest},
		{apperr.KindConflict, http.StatusConflict},
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindForbidden, http.StatusForbidden},
		{apperr.KindToken, http.StatusUnauthorized},
		{apperr.KindUnavailable, http.StatusForbidden},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.kind))
	}
}

func TestPageParamsBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{"", 0, 20},
		{"?page=2&size=50", 2, 50},
		{"?page=-1&size=0", 0, 20},
		{"?size=500", 0, 20},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request, _ = http.NewRequest("GET", "/podcasts"+tt.query, nil)

		page, size := pageParams(c)
		assert.Equal(t, tt.wantPage, page, "query %q", tt.query)
		assert.Equal(t, tt.wantSize, size, "query %q", tt.query)
	}
}
