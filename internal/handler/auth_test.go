package handler_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cineclub/internal/config"
	"github.com/iliyamo/cineclub/internal/dto"
	"github.com/iliyamo/cineclub/internal/handler"
	"github.com/iliyamo/cineclub/internal/model"
	"github.com/iliyamo/cineclub/internal/utils"
)

var errNoRows = sql.ErrNoRows

type userLookup struct{ mock.Mock }

func (m *userLookup) GetByID(_ context.Context, id uint64) (model.User, error) {
	args := m.Called(id)
	return args.Get(0).(model.User), args.Error(1)
}

type tokenStore struct{ mock.Mock }

func (m *tokenStore) StoreRefresh(_ context.Context, userID uint64, hash string, exp time.Time) error {
	return m.Called(userID, hash).Error(0)
}

func (m *tokenStore) Rotate(_ context.Context, oldHash, newHash string, exp time.Time) (uint64, error) {
	args := m.Called(oldHash, newHash)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *tokenStore) RevokeByHash(_ context.Context, hash string) error {
	return m.Called(hash).Error(0)
}

type authResp struct {
	User   dto.User `json:"user"`
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
	Refresh struct {
		Token string `json:"token"`
	} `json:"refresh"`
}

func newAuth(t *testing.T) (*echo.Echo, *userLookup, *tokenStore) {
	t.Helper()
	s := newServer(t)
	users, tokens := &userLookup{}, &tokenStore{}
	a := handler.NewAuthHandler(config.Config{JWTSecret: testSecret, AccessTTLMin: 5, RefreshTTLDays: 1},
		users, tokens, s.coord, zap.NewNop().Sugar())
	e := echo.New()
	e.GET("/v1/users", a.ListUsers)
	e.POST("/v1/auth/login", a.Login)
	e.POST("/v1/auth/refresh", a.Refresh)
	e.POST("/v1/auth/logout", a.Logout)
	return e, users, tokens
}

func post(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListUsersHidesPins(t *testing.T) {
	e, _, _ := newAuth(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pin")
	assert.Len(t, decode[[]dto.User](t, rec), 2)
}

func TestLogin(t *testing.T) {
	e, users, tokens := newAuth(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetByID", uint64(1)).Return(model.User{ID: 1, Name: "Ana", ChatEnabled: true, PinHash: string(hash)}, nil)
	users.On("GetByID", uint64(7)).Return(model.User{}, errNoRows)
	tokens.On("StoreRefresh", uint64(1), mock.Anything).Return(nil)

	rec := post(e, "/v1/auth/login", `{"user_id":1,"pin":"1234"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[authResp](t, rec)
	assert.Equal(t, "Ana", got.User.Name)
	claims, err := utils.ParseAccessToken(testSecret, got.Access.Token)
	require.NoError(t, err)
	assert.True(t, claims.Chat)
	tokens.AssertExpectations(t)

	assert.Equal(t, http.StatusUnauthorized, post(e, "/v1/auth/login", `{"user_id":1,"pin":"9999"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, post(e, "/v1/auth/login", `{"user_id":7,"pin":"1234"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, post(e, "/v1/auth/login", `{"user_id":1,"pin":"12ab"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(e, "/v1/auth/login", `{"pin":"1234"}`).Code)
}

func TestRefreshRotates(t *testing.T) {
	e, users, tokens := newAuth(t)
	users.On("GetByID", uint64(2)).Return(model.User{ID: 2, Name: "Beto"}, nil)
	tokens.On("Rotate", utils.HashRefreshRaw("old"), mock.Anything).Return(uint64(2), nil)
	tokens.On("Rotate", utils.HashRefreshRaw("stale"), mock.Anything).Return(uint64(0), errNoRows)

	rec := post(e, "/v1/auth/refresh", `{"refresh_token":"old"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[authResp](t, rec)
	assert.Equal(t, "Beto", got.User.Name)
	assert.NotEmpty(t, got.Refresh.Token)
	tokens.AssertNotCalled(t, "StoreRefresh", mock.Anything, mock.Anything)

	assert.Equal(t, http.StatusUnauthorized, post(e, "/v1/auth/refresh", `{"refresh_token":"stale"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(e, "/v1/auth/refresh", `{}`).Code)
}

func TestLogout(t *testing.T) {
	e, _, tokens := newAuth(t)
	tokens.On("RevokeByHash", utils.HashRefreshRaw("raw")).Return(nil)
	assert.Equal(t, http.StatusNoContent, post(e, "/v1/auth/logout", `{"refresh_token":"raw"}`).Code)
	tokens.AssertExpectations(t)
}

func TestMe(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, 2, http.MethodGet, "/v1/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.User{ID: 2, Name: "Beto"}, decode[dto.User](t, rec))
}
