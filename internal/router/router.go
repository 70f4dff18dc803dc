// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineclub/internal/handler"
	"github.com/iliyamo/cineclub/internal/middleware"
)

// Handlers groups every handler the router registers.
type Handlers struct {
	Auth    *handler.AuthHandler
	Movies  *handler.MovieHandler
	Inbox   *handler.InboxHandler
	Search  *handler.SearchHandler
	Stream  *handler.StreamHandler
	Ratings *handler.RatingsAPI
}

// Middleware holds the Redis backed middleware.  Both pass requests
// through when Redis is not configured.
type Middleware struct {
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterRoutes registers routes that do not require a session.
func RegisterRoutes(e *echo.Echo) {
	// Load balancer probe.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the PIN gate under /v1/auth and the user
// directory.  Login and refresh share the rate limiter.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, mw Middleware, jwtSecret string) {
	e.GET("/v1/users", a.ListUsers)

	g := e.Group("/v1/auth")
	g.POST("/login", a.Login, mw.RateLimit)
	g.POST("/refresh", a.Refresh, mw.RateLimit)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterRatingsAPI mounts /api/ratings for every method so the
// handler can answer 405 itself.
func RegisterRatingsAPI(e *echo.Echo, r *handler.RatingsAPI, mw Middleware) {
	e.Any("/api/ratings", r.Handle, mw.RateLimit)
}

// RegisterMember registers the movie list, derived views and inbox.
// Every route requires a valid access token; mutations are rate
// limited per member.
func RegisterMember(e *echo.Echo, h Handlers, mw Middleware, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.GET("/movies", h.Movies.List)
	g.GET("/movies/:id", h.Movies.Get)
	g.POST("/movies", h.Movies.Create, mw.RateLimit)
	g.Match([]string{http.MethodPut, http.MethodPatch}, "/movies/:id", h.Movies.Update, mw.RateLimit)
	g.DELETE("/movies/:id", h.Movies.Delete, mw.RateLimit)
	g.PUT("/movies/:id/view", h.Movies.SetView, mw.RateLimit)
	g.PUT("/movies/:id/rating", h.Movies.SetRating, mw.RateLimit)

	g.GET("/stats/me", h.Movies.Stats)
	g.GET("/leaderboard", h.Movies.Leaderboard)
	g.GET("/reminders", h.Movies.Reminders)
	g.POST("/reminders/dismiss", h.Movies.DismissReminders)

	g.GET("/notifications", h.Inbox.Notifications)
	g.POST("/notifications/:id/read", h.Inbox.MarkRead)
	g.POST("/notifications/read-all", h.Inbox.MarkAllRead)

	// Search results are the same for everyone; cache them.
	g.GET("/search/movies", h.Search.Suggest, mw.Cache)
	g.GET("/search/movies/:id", h.Search.Details, mw.Cache)

	g.GET("/stream", h.Stream.Stream)

	chat := g.Group("/chat", middleware.RequireChat())
	chat.GET("/messages", h.Inbox.Messages)
	chat.POST("/messages", h.Inbox.PostMessage, mw.RateLimit)
}
