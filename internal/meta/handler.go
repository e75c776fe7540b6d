package meta

import (
	"context"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"ResourceShare/internal/realtime"
	"ResourceShare/internal/store"

	"github.com/labstack/echo/v4"
)

// ServiceName is reported by the banner endpoint.
const ServiceName = "CSE Resource Sharing Platform API"

const maxListedCollections = 10

// MetaHandler serves the banner, schema listing and connectivity self-check.
type MetaHandler struct {
	gateway store.Gateway
	hub     *realtime.Hub
}

func NewMetaHandler(gateway store.Gateway, hub *realtime.Hub) *MetaHandler {
	return &MetaHandler{gateway: gateway, hub: hub}
}

func (h *MetaHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": ServiceName})
}

func (h *MetaHandler) Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Hello from the backend API!"})
}

type modelName struct {
	Name string `json:"name"`
}

// Schema lists the stored model names for tooling.
func (h *MetaHandler) Schema(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]modelName{
		"models": {
			{Name: store.UserCollection},
			{Name: store.ResourceCollection},
			{Name: store.NotificationCollection},
		},
	})
}

// SelfCheck is the response of the /test endpoint.
type SelfCheck struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
	Subscribers      int      `json:"subscribers"`
}

// Test reports whether the database is configured and reachable. It always answers 200.
func (h *MetaHandler) Test(c echo.Context) error {
	report := SelfCheck{
		Backend:          "running",
		Database:         "not available",
		DatabaseURL:      envState("DATABASE_URL"),
		DatabaseName:     envState("DATABASE_NAME"),
		ConnectionStatus: "not connected",
		Collections:      []string{},
		Subscribers:      h.hub.Len(),
	}
	if !h.gateway.Configured() {
		return c.JSON(http.StatusOK, report)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	report.Database = "available"
	if err := h.gateway.Ping(ctx); err != nil {
		report.Database = "error: " + truncate(err.Error(), 50)
		return c.JSON(http.StatusOK, report)
	}
	report.ConnectionStatus = "connected"

	names, err := h.gateway.CollectionNames(ctx)
	if err != nil {
		report.Database = "connected but error: " + truncate(err.Error(), 50)
		return c.JSON(http.StatusOK, report)
	}
	if len(names) > maxListedCollections {
		names = names[:maxListedCollections]
	}
	report.Collections = names
	report.Database = "connected and working"
	return c.JSON(http.StatusOK, report)
}

func envState(key string) string {
	if os.Getenv(key) != "" {
		return "set"
	}
	return "not set"
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
