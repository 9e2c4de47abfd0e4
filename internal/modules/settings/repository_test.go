package settings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/events"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return NewRepository(db, zerolog.Nop())
}

func TestRepository_EnsureDefaults(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.EnsureDefaults())

	stored, err := repo.All()
	require.NoError(t, err)
	assert.Equal(t, Defaults, stored)

	// Seeding again must not clobber user changes.
	require.NoError(t, repo.SetMany(map[string]string{"currency": "EUR"}))
	require.NoError(t, repo.EnsureDefaults())

	stored, err = repo.All()
	require.NoError(t, err)
	assert.Equal(t, "EUR", stored["currency"])
}

func TestRepository_SetMany(t *testing.T) {
	repo := newTestRepository(t)
	require.NoError(t, repo.EnsureDefaults())

	require.NoError(t, repo.SetMany(map[string]string{
		"currency":  "GBP",
		"dark_mode": "true",
	}))

	stored, err := repo.All()
	require.NoError(t, err)
	assert.Equal(t, "GBP", stored["currency"])
	assert.Equal(t, "true", stored["dark_mode"])
	assert.Equal(t, "false", stored["pro_mode"])
}

func TestRepository_Reset(t *testing.T) {
	repo := newTestRepository(t)
	require.NoError(t, repo.EnsureDefaults())
	require.NoError(t, repo.SetMany(map[string]string{"currency": "JPY", "dark_mode": "true"}))

	require.NoError(t, repo.Reset())

	stored, err := repo.All()
	require.NoError(t, err)
	assert.Equal(t, Defaults, stored)
}

func newSettingsHandler(t *testing.T) *Handler {
	t.Helper()

	repo := newTestRepository(t)
	require.NoError(t, repo.EnsureDefaults())
	return NewHandler(repo, events.NewManager(zerolog.Nop()), zerolog.Nop())
}

func TestHandleGetSettings(t *testing.T) {
	h := newSettingsHandler(t)

	rec := httptest.NewRecorder()
	h.HandleGetSettings(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var typed map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &typed))
	assert.Equal(t, "USD", typed["currency"])
	assert.Equal(t, false, typed["darkMode"])
	assert.Equal(t, 60.0, typed["refreshInterval"])
}

func TestHandleUpdateSettings(t *testing.T) {
	h := newSettingsHandler(t)

	body := strings.NewReader(`{"darkMode": true, "currency": "EUR"}`)
	rec := httptest.NewRecorder()
	h.HandleUpdateSettings(rec, httptest.NewRequest(http.MethodPut, "/api/settings", body))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := h.repo.All()
	require.NoError(t, err)
	assert.Equal(t, "true", stored["dark_mode"])
	assert.Equal(t, "EUR", stored["currency"])
}

func TestHandleUpdateSettings_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", `{"fontSize": 12}`},
		{"empty object", `{}`},
		{"malformed json", `{oops`},
		{"null value", `{"currency": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newSettingsHandler(t)

			rec := httptest.NewRecorder()
			h.HandleUpdateSettings(rec, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			// A rejected batch must leave the stored settings untouched.
			stored, err := h.repo.All()
			require.NoError(t, err)
			assert.Equal(t, Defaults, stored)
		})
	}
}

func TestHandleResetSettings(t *testing.T) {
	h := newSettingsHandler(t)
	require.NoError(t, h.repo.SetMany(map[string]string{"currency": "EUR"}))

	rec := httptest.NewRecorder()
	h.HandleResetSettings(rec, httptest.NewRequest(http.MethodPost, "/api/settings/reset", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var typed map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &typed))
	assert.Equal(t, "USD", typed["currency"])

	stored, err := h.repo.All()
	require.NoError(t, err)
	assert.Equal(t, Defaults, stored)
}
