package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmurley/afl-trade-bot/internal/cache"
	"github.com/pmurley/afl-trade-bot/internal/playerdb"
	"github.com/pmurley/afl-trade-bot/internal/service"
	"github.com/pmurley/afl-trade-bot/internal/storage"
)

const viableTeamJSON = `[
  {"id": "d700", "position": "DEF", "price": 700000, "projectedScore": 70, "average": 80},
  {"id": "m600", "position": "MID", "price": 600000, "projectedScore": 80, "average": 85},
  {"id": 220, "position": "DEF", "price": 220000, "projectedScore": 65, "average": 0},
  {"id": 900, "position": "midfielder", "price": 900000, "projectedScore": 110, "average": 95}
]`

func newTestServer(t *testing.T, poolSource, apiKey string) *Server {
	t.Helper()
	dir := t.TempDir()

	teams, err := storage.NewJSONTeamStore(dir)
	require.NoError(t, err)
	history, err := storage.NewHistoryStorage(dir)
	require.NoError(t, err)

	svc := service.New(service.Options{
		Teams:   teams,
		History: history,
		Pool:    cache.New(time.Minute),
		Loader:  playerdb.NewClient(poolSource),
	})

	return New(Config{
		Port:      "0",
		Log:       zerolog.Nop(),
		Service:   svc,
		MCPAPIKey: apiKey,
	})
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "", "")
	rec, out := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestRecommend(t *testing.T) {
	s := newTestServer(t, "", "")

	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantStatus string
		wantMsg    string
		wantCombos int
	}{
		{
			name:       "viable trade",
			body:       `{"currentTeam": ` + viableTeamJSON + `, "maxRookiePrice": 300000}`,
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantCombos: 1,
		},
		{
			name:       "empty roster",
			body:       `{"currentTeam": [], "maxRookiePrice": 300000}`,
			wantCode:   http.StatusOK,
			wantStatus: "error",
			wantMsg:    "Current team is empty",
		},
		{
			name:       "price limit too low",
			body:       `{"currentTeam": ` + viableTeamJSON + `, "maxRookiePrice": 200000}`,
			wantCode:   http.StatusOK,
			wantStatus: "error",
			wantMsg:    "No viable rookie options found with the given price limit",
		},
		{
			name:       "malformed json",
			body:       `{"currentTeam": [`,
			wantCode:   http.StatusBadRequest,
			wantStatus: "error",
		},
		{
			name:       "unknown position",
			body:       `{"currentTeam": [{"id":"x","position":"GK","price":1,"projectedScore":1,"average":1}], "maxRookiePrice": 300000}`,
			wantCode:   http.StatusBadRequest,
			wantStatus: "error",
		},
		{
			name:       "negative price",
			body:       `{"currentTeam": [], "maxRookiePrice": -5}`,
			wantCode:   http.StatusBadRequest,
			wantStatus: "error",
		},
		{
			name:       "pool requested but not configured",
			body:       `{"currentTeam": ` + viableTeamJSON + `, "usePlayerPool": true}`,
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := do(t, s, http.MethodPost, "/api/trades/recommend", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, out["status"])
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, out["message"])
			}
			if tt.wantStatus == "ok" {
				combos, ok := out["combinations"].([]interface{})
				require.True(t, ok)
				assert.Len(t, combos, tt.wantCombos)
				first := combos[0].(map[string]interface{})
				assert.EqualValues(t, 180000, first["netCash"])
			}
		})
	}

	rec, out := do(t, s, http.MethodGet, "/api/history?limit=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	entries := out["entries"].([]interface{})
	assert.Len(t, entries, 2)
}

func TestTeamRoutes(t *testing.T) {
	s := newTestServer(t, "", "")

	rec, _ := do(t, s, http.MethodGet, "/api/team", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, out := do(t, s, http.MethodPut, "/api/team", viableTeamJSON)
	require.Equal(t, http.StatusOK, rec.Code, out)
	assert.EqualValues(t, 4, out["saved"])

	rec, out = do(t, s, http.MethodGet, "/api/team", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["players"], 4)

	rec, out = do(t, s, http.MethodGet, "/api/team/captain?n=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	suggestion := out["suggestion"].(map[string]interface{})
	assert.Equal(t, "900", suggestion["captain"].(map[string]interface{})["id"])
	assert.Len(t, suggestion["ranked"], 2)

	rec, _ = do(t, s, http.MethodGet, "/api/team/captain?n=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, s, http.MethodPut, "/api/team", `{"players":[{"id":"a","position":"DEF","price":1,"projectedScore":1,"average":1},{"id":"a","position":"DEF","price":1,"projectedScore":1,"average":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = do(t, s, http.MethodPost, "/api/trades/recommend", `{"useSavedTeam": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestPutTeam_ReportsInvalidRecord(t *testing.T) {
	s := newTestServer(t, "", "")

	rec, out := do(t, s, http.MethodPut, "/api/team",
		` [{"id":"a","position":"GK","price":1,"projectedScore":1,"average":1}]`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["message"], `unknown position "GK"`)
	assert.NotContains(t, out["message"], "teamRequest")

	rec, out = do(t, s, http.MethodPut, "/api/team",
		`{"players":[{"id":"a","position":"GK","price":1,"projectedScore":1,"average":1}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["message"], `unknown position "GK"`)
}

func TestPoolRoutes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.json")
	require.NoError(t, os.WriteFile(path, []byte(viableTeamJSON), 0644))
	s := newTestServer(t, path, "")

	rec, out := do(t, s, http.MethodGet, "/api/pool/stats", "")
	require.Equal(t, http.StatusOK, rec.Code, out)
	stats := out["stats"].(map[string]interface{})
	assert.EqualValues(t, 4, stats["count"])
	loadedAt, err := time.Parse(time.RFC3339Nano, out["loadedAt"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), loadedAt, time.Minute)

	rec, out = do(t, s, http.MethodPost, "/api/pool/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, out["players"])

	rec, out = do(t, s, http.MethodPost, "/api/trades/recommend",
		`{"currentTeam": [{"id":"d700","position":"DEF","price":700000,"projectedScore":70,"average":80},{"id":"m600","position":"MID","price":600000,"projectedScore":80,"average":85}], "usePlayerPool": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
	assert.Len(t, out["combinations"], 1)

	noPool := newTestServer(t, "", "")
	rec, _ = do(t, noPool, http.MethodGet, "/api/pool/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPoolPlayerRoutes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
  {"id": 1, "name": "Nick Daicos", "position": "MID", "price": 1100000, "projectedScore": 121, "average": 118},
  {"id": 2, "name": "Josh Daicos", "position": "MID", "price": 850000, "projectedScore": 96, "average": 92},
  {"id": 3, "name": "Max Gawn", "position": "RUC", "price": 1050000, "projectedScore": 118, "average": 115}
]`), 0644))
	s := newTestServer(t, path, "")

	rec, out := do(t, s, http.MethodGet, "/api/pool/players?search=daicos", "")
	require.Equal(t, http.StatusOK, rec.Code, out)
	players := out["players"].([]interface{})
	require.Len(t, players, 2)
	assert.Equal(t, "Nick Daicos", players[0].(map[string]interface{})["name"])

	rec, out = do(t, s, http.MethodGet, "/api/pool/players?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["players"], 1)

	rec, out = do(t, s, http.MethodGet, "/api/pool/players?search=zzz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, out["players"])

	rec, out = do(t, s, http.MethodGet, "/api/pool/players/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Max Gawn", out["player"].(map[string]interface{})["name"])

	rec, _ = do(t, s, http.MethodGet, "/api/pool/players/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMCPAuth(t *testing.T) {
	s := newTestServer(t, "", "secret")

	rec, _ := do(t, s, http.MethodGet, "/mcp/tools", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, out := do(t, s, http.MethodGet, "/mcp/tools", "", "X-API-Key", "secret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["tools"], 2)

	rec, _ = do(t, s, http.MethodGet, "/mcp/tools", "", "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestShutdownBeforeStart(t *testing.T) {
	s := newTestServer(t, "", "")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
}
