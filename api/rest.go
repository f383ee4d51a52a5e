// Package api exposes the annotation service over HTTP: action schema
// discovery and compilation, dataset and sample CRUD, and training-data
// export. All /api routes require a bearer token issued by /auth/token.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"hawkset.claimhawk.org/cache"
	"hawkset.claimhawk.org/common"
	"hawkset.claimhawk.org/db"
	"hawkset.claimhawk.org/queue"
	"hawkset.claimhawk.org/security"
)

// Handlers carries the collaborators the HTTP layer dispatches to. Cache
// and Publisher are optional; handlers degrade gracefully when they are nil.
type Handlers struct {
	Store     db.DatasetStore
	Cache     *cache.StatsCache
	Publisher queue.JobPublisher
	JWT       *security.JWTService
	Config    common.ServiceConfig
}

func SetupRoutes(e *echo.Echo, h *Handlers) {
	// Public routes
	e.GET("/healthz", h.Health)
	e.POST("/auth/token", h.GenerateToken)

	// Protected routes
	protected := e.Group("/api")
	protected.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(h.Config.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ",
	}))

	protected.GET("/actions", h.ListActions)
	protected.POST("/actions/compile", h.CompileAction)

	protected.POST("/datasets", h.CreateDataset)
	protected.GET("/datasets", h.ListDatasets)
	protected.GET("/datasets/:name", h.GetDataset)
	protected.DELETE("/datasets/:name", h.DeleteDataset)
	protected.GET("/datasets/:name/stats", h.DatasetStats)

	protected.POST("/datasets/:name/samples", h.CreateSample)
	protected.GET("/datasets/:name/samples", h.ListSamples)
	protected.DELETE("/samples/:id", h.DeleteSample)

	protected.GET("/datasets/:name/export", h.ExportDataset)
}

func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func (h *Handlers) GenerateToken(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username and password are required"})
	}

	hash, ok := h.Config.Users[req.Username]
	if !ok || security.VerifyPassword(hash, req.Password) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	token, err := h.JWT.GenerateToken(req.Username, security.DefaultTokenLifetime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// requestUser extracts the authenticated username from the bearer token.
// Routes behind the JWT middleware always carry a valid token, so failures
// here only happen in tests that bypass the middleware.
func (h *Handlers) requestUser(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == "" || raw == header {
		return ""
	}

	token, err := h.JWT.ValidateToken(raw)
	if err != nil {
		return ""
	}
	return token.Subject()
}

type CreateDatasetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handlers) CreateDataset(c echo.Context) error {
	var req CreateDatasetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	dataset, err := h.Store.CreateDataset(req.Name, req.Description)
	if err != nil {
		common.Logger.Error("Failed to create dataset: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create dataset"})
	}

	h.invalidateStats(c, req.Name)
	return c.JSON(http.StatusCreated, dataset)
}

func (h *Handlers) ListDatasets(c echo.Context) error {
	datasets, err := h.Store.ListDatasets()
	if err != nil {
		common.Logger.Error("Failed to list datasets: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list datasets"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

func (h *Handlers) GetDataset(c echo.Context) error {
	dataset, err := h.Store.GetDataset(c.Param("name"))
	if err != nil {
		if db.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Dataset not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve dataset"})
	}

	return c.JSON(http.StatusOK, dataset)
}

func (h *Handlers) DeleteDataset(c echo.Context) error {
	name := c.Param("name")

	if err := h.Store.DeleteDataset(name); err != nil {
		if db.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Dataset not found"})
		}
		common.Logger.Error("Failed to delete dataset: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete dataset"})
	}

	h.invalidateStats(c, name)
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) ListSamples(c echo.Context) error {
	name := c.Param("name")

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
		}
		limit = parsed
	}

	if _, err := h.Store.GetDataset(name); err != nil {
		if db.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Dataset not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve dataset"})
	}

	samples, err := h.Store.GetSamples(name, limit)
	if err != nil {
		common.Logger.Error("Failed to list samples: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list samples"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"samples": samples,
		"count":   len(samples),
	})
}

func (h *Handlers) DeleteSample(c echo.Context) error {
	id := c.Param("id")

	if err := h.Store.DeleteSample(id); err != nil {
		if db.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Sample not found"})
		}
		common.Logger.Error("Failed to delete sample: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete sample"})
	}

	// The sample route carries no dataset name; clients pass it along so
	// the cached stats can be dropped.
	if dataset := c.QueryParam("dataset"); dataset != "" {
		h.invalidateStats(c, dataset)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) invalidateStats(c echo.Context, dataset string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(c.Request().Context(), dataset); err != nil {
		common.Logger.Warn("Failed to invalidate stats cache for ", dataset, ": ", err)
	}
}

// DatasetStats serves summary numbers for one dataset, consulting the redis
// cache before CouchDB.
func (h *Handlers) DatasetStats(c echo.Context) error {
	name := c.Param("name")
	ctx := c.Request().Context()

	var stats *common.DatasetStats
	if h.Cache != nil {
		if cached, ok := h.Cache.Get(ctx, name); ok {
			stats = cached
		}
	}

	if stats == nil {
		fresh, err := h.Store.Stats(name)
		if err != nil {
			if db.IsNotFound(err) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Dataset not found"})
			}
			common.Logger.Error("Failed to compute stats: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute stats"})
		}
		stats = fresh

		if h.Cache != nil {
			if err := h.Cache.Set(ctx, stats); err != nil {
				common.Logger.Warn("Failed to cache stats for ", name, ": ", err)
			}
		}
	}

	return c.JSON(http.StatusOK, statsResponse(stats, time.Now()))
}
