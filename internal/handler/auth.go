package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/config"
	"github.com/iliyamo/cineclub/internal/dto"
	"github.com/iliyamo/cineclub/internal/middleware"
	"github.com/iliyamo/cineclub/internal/model"
	"github.com/iliyamo/cineclub/internal/utils"
)

// UserLookup reads members with their PIN hash.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore persists refresh tokens by hash.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Rotate(ctx context.Context, oldHash, newHash string, exp time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
}

// Directory is the cached member list.
type Directory interface {
	Users() []model.User
	User(id uint64) (model.User, bool)
}

// AuthHandler bundles dependencies for the PIN gate and token endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Users     UserLookup
	Tokens    TokenStore
	Directory Directory
	Logger    *zap.SugaredLogger
}

func NewAuthHandler(cfg config.Config, u UserLookup, t TokenStore, d Directory, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Directory: d, Logger: logger}
}

// ----- DTOs -----

type loginReq struct {
	UserID uint64 `json:"user_id"`
	PIN    string `json:"pin"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    dto.User  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// ListUsers: directory for the login picker.  No PIN data leaves the server.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.FromUsers(h.Directory.Users()))
}

// Login: verify the member PIN and return a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.PIN = strings.TrimSpace(req.PIN)
	if req.UserID == 0 || req.PIN == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id/pin required"})
	}
	if !utils.ValidPIN(req.PIN) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "PIN incorrecto"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "PIN incorrecto"})
		}
		h.Logger.Errorw("login lookup failed", "user_id", req.UserID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPIN(u.PinHash, req.PIN) {
		h.Logger.Infow("login rejected", "user_id", req.UserID)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "PIN incorrecto"})
	}

	return h.issue(ctx, c, u, nil)
}

// issue signs an access token for u.  A nil rotated means a new
// refresh token is generated and stored as well.
func (h *AuthHandler) issue(ctx context.Context, c echo.Context, u model.User, rotated *utils.RefreshToken) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Name, u.ChatEnabled, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	var refresh utils.RefreshToken
	if rotated != nil {
		refresh = *rotated
	} else {
		if refresh, err = utils.NewRefreshToken(h.Cfg.RefreshTTLDays); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
		}
		if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
		}
	}

	return c.JSON(http.StatusOK, authResp{
		User:    dto.FromUser(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Refresh: exchange a refresh token for a new pair.  The old token is
// revoked in the same transaction.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	next, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	uid, err := h.Tokens.Rotate(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken)), utils.HashRefreshRaw(next.Raw), next.Exp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rotate failed"})
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	return h.issue(ctx, c, u, &next)
}

// Logout: revoke the given refresh token.  Unknown tokens are not an error.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: the authenticated member as cached.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, found := h.Directory.User(uid)
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, dto.FromUser(u))
}
