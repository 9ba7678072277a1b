package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	businessflow "github.com/eventdesk/eventdesk/business_flow"
	"github.com/eventdesk/eventdesk/repository"
	"github.com/eventdesk/eventdesk/storage"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableProperties simulates a backing store that is down: every call
// fails with the outage sentinel, the way the Postgres store reports it.
type unreachableProperties struct{}

func (unreachableProperties) Get(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: connection refused", storage.ErrStoreUnavailable)
}

func (unreachableProperties) Set(context.Context, string, string) error {
	return fmt.Errorf("%w: connection refused", storage.ErrStoreUnavailable)
}

func (unreachableProperties) Delete(context.Context, string) error {
	return fmt.Errorf("%w: connection refused", storage.ErrStoreUnavailable)
}

func newOutageApp(t *testing.T) *fiber.App {
	t.Helper()

	repo := repository.NewShortLinkRepository(unreachableProperties{})
	flow := businessflow.NewShortLinkFlow(repo, "https://go.example.com/s")
	handler := NewShortLinkHandler(flow)

	app := fiber.New()
	app.Get("/s/:token", handler.Visit)
	app.Post("/api/v1/shortlinks", handler.Set)
	app.Get("/api/v1/shortlinks/:key", handler.GetByKey)
	return app
}

func decodeErrorCode(t *testing.T, body *json.Decoder) string {
	t.Helper()

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, body.Decode(&envelope))
	assert.False(t, envelope.Success)
	return envelope.Error.Code
}

func TestShortLinkHandlersAnswer503WhenStoreIsDown(t *testing.T) {
	app := newOutageApp(t)

	t.Run("set", func(t *testing.T) {
		body := `{"key":"event:42","target_url":"https://example.com/e/42"}`
		req := httptest.NewRequest("POST", "/api/v1/shortlinks", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "STORE_UNAVAILABLE", decodeErrorCode(t, json.NewDecoder(resp.Body)))
	})

	t.Run("get by key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/shortlinks/event:42", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "STORE_UNAVAILABLE", decodeErrorCode(t, json.NewDecoder(resp.Body)))
	})

	t.Run("visit", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/s/abc123def456", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}
