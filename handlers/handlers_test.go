package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"vayro/config"
	"vayro/database"
	"vayro/logger"
	"vayro/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	r := gin.New()
	RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ─── Upstream stubs ───────────────────────────────────────────────────────────

type aiCall struct {
	Messages    []services.ChatMessage `json:"messages"`
	Temperature *float64               `json:"temperature"`
}

// aiRecorder collects the requests the stub model received.
type aiRecorder struct {
	mu    sync.Mutex
	calls []aiCall
}

func (r *aiRecorder) all() []aiCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]aiCall(nil), r.calls...)
}

// stubAI points the global AI client at a fake chat completions endpoint.
// reply returns the status and assistant content for each call.
func stubAI(t *testing.T, reply func(call aiCall) (int, string)) *aiRecorder {
	t.Helper()
	rec := &aiRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call aiCall
		_ = json.NewDecoder(r.Body).Decode(&call)
		rec.mu.Lock()
		rec.calls = append(rec.calls, call)
		rec.mu.Unlock()

		status, content := reply(call)
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error": {"message": "upstream failure"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []interface{}{
				map[string]interface{}{"message": services.ChatMessage{Role: "assistant", Content: content}},
			},
		})
	}))
	t.Cleanup(func() {
		srv.Close()
		services.InitAI(config.OpenAIConfig{})
	})
	services.InitAI(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL})
	return rec
}

func replyWith(content string) func(aiCall) (int, string) {
	return func(aiCall) (int, string) { return http.StatusOK, content }
}

func stubGoogle(t *testing.T, mux *http.ServeMux) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		services.InitGoogle(config.GoogleConfig{})
	})
	services.InitGoogle(config.GoogleConfig{
		PlacesKey:         "places-key",
		GeocodingKey:      "geo-key",
		DistanceMatrixKey: "dm-key",
		BaseURL:           srv.URL,
	})
}

func stubAmadeus(t *testing.T, mux *http.ServeMux) {
	t.Helper()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token": "tok", "expires_in": 1799}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		services.InitAmadeus(config.AmadeusConfig{})
	})
	services.InitAmadeus(config.AmadeusConfig{ClientID: "id", ClientSecret: "secret", BaseURL: srv.URL})
}

// mockDB swaps the global database handle for a sqlmock one.
func mockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		db.Close()
	})
	return mock
}

func noDB(t *testing.T) {
	t.Helper()
	prev := database.DB
	database.DB = nil
	t.Cleanup(func() { database.DB = prev })
}
