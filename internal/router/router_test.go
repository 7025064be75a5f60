package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"astro_consult/internal/config"
	"astro_consult/internal/model"
	"astro_consult/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(authRequired bool) *gin.Engine {
	cfg := &config.Config{Environment: "test", StoreDriver: config.DriverMemory, AuthRequired: authRequired}
	return New(cfg, zap.NewNop(), repository.NewMemoryRepositories())
}

func request(r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicEndpoints(t *testing.T) {
	r := newEngine(false)

	for _, path := range []string{"/", "/test", "/health", "/astrologers", "/metrics"} {
		w := request(r, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	w := request(r, http.MethodGet, "/", nil, "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_EndToEnd(t *testing.T) {
	r := newEngine(false)

	w := request(r, http.MethodPost, "/auth/register", gin.H{"name": "Mira", "email": "mira@x.com", "password": "stars", "role": "astrologer"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var astro model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &astro))

	w = request(r, http.MethodPost, "/auth/register", gin.H{"name": "Ana", "email": "ana@x.com", "password": "secret", "role": "user"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var ana model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ana))

	w = request(r, http.MethodPost, "/chat/create", gin.H{"astrologer_id": astro.UserID, "min_fee": 0}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var chat model.CreateChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chat))

	w = request(r, http.MethodPost, "/chat/send", gin.H{"chat_id": chat.ChatID, "sender_id": ana.UserID, "content": "hello"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = request(r, http.MethodGet, "/chat/"+chat.ChatID+"/messages", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var msgs []model.MessageView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, ana.UserID, msgs[0].SenderID)
	assert.Equal(t, "hello", msgs[0].Content)
}

func TestRouter_AuthRequired(t *testing.T) {
	r := newEngine(true)

	w := request(r, http.MethodPost, "/call/init", gin.H{"callee_id": bson.NewObjectID().Hex()}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(r, http.MethodGet, "/chat/"+bson.NewObjectID().Hex()+"/messages", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(r, http.MethodPost, "/auth/register", gin.H{"name": "Ana", "email": "ana@x.com", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var ana model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ana))

	w = request(r, http.MethodPost, "/call/init", gin.H{"callee_id": bson.NewObjectID().Hex()}, ana.Token)
	assert.Equal(t, http.StatusOK, w.Code)

	// the directory stays public
	w = request(r, http.MethodGet, "/astrologers", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
