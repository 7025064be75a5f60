package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"astro_consult/internal/middleware"
	"astro_consult/internal/model"
	"astro_consult/internal/repository"
	"astro_consult/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	repos  *repository.Repositories
	auth   service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop()
	repos := repository.NewMemoryRepositories()
	auth := service.NewAuthService(repos.Users, repos.Sessions, service.SessionConfig{}, log)

	r := gin.New()
	rg := r.Group("/")
	NewHealthHandler(repos.Store, log).RegisterHealthRoutes(rg)
	NewAuthHandler(auth, log).RegisterAuthRoutes(rg, middleware.SessionAuthMiddleware(auth, log))
	NewAstrologerHandler(service.NewAstrologerService(repos.Users), log).RegisterAstrologerRoutes(rg)
	NewChatHandler(service.NewChatService(repos.Users, repos.Chats, repos.Messages, log), log).RegisterChatRoutes(rg)
	NewCallHandler(service.NewCallService(repos.Calls, log), log).RegisterCallRoutes(rg)

	return &testServer{engine: r, repos: repos, auth: auth}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) registerAstrologer(t *testing.T) model.SessionResponse {
	t.Helper()
	rate := 4.0
	w := s.do(t, http.MethodPost, "/auth/register", model.RegisterRequest{
		Name: "Mira", Email: "mira@x.com", Password: "stars", Role: model.RoleAstrologer, RatePerMin: &rate,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[model.SessionResponse](t, w)
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/register", gin.H{"name": "Ana", "email": "ana@x.com", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	reg := decode[model.SessionResponse](t, w)
	assert.Len(t, reg.Token, 43)
	assert.Equal(t, "Ana", reg.Name)
	assert.Equal(t, model.RoleUser, reg.Role)

	w = s.do(t, http.MethodPost, "/auth/register", gin.H{"name": "Ana", "email": "ana@x.com", "password": "secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email already registered", decode[gin.H](t, w)["error"])

	w = s.do(t, http.MethodPost, "/auth/login", gin.H{"email": "ana@x.com", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[model.SessionResponse](t, w)
	assert.Equal(t, reg.UserID, login.UserID)
	assert.NotEqual(t, reg.Token, login.Token)

	w = s.do(t, http.MethodPost, "/auth/login", gin.H{"email": "ana@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []gin.H{
		{"email": "ana@x.com", "password": "secret"},
		{"name": "Ana", "email": "ana@x.com", "password": "secret", "role": "admin"},
		{"name": "Ana", "email": "ana@x.com", "password": "secret", "rate_per_min": -1},
	}
	for _, body := range cases {
		w := s.do(t, http.MethodPost, "/auth/register", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
	}
}

func TestAuthHandler_RegisterPasswordTooLong(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/register", gin.H{"name": "Ana", "email": "ana@x.com", "password": strings.Repeat("p", 80)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrPasswordTooLong.Error(), decode[gin.H](t, w)["error"])

	// the rejected request left nothing behind
	w = s.do(t, http.MethodPost, "/auth/register", gin.H{"name": "Ana", "email": "ana@x.com", "password": "secret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	s := newTestServer(t)
	reg := s.registerAstrologer(t)

	w := s.do(t, http.MethodGet, "/auth/me", nil, "Authorization", "Bearer "+reg.Token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[gin.H](t, w)
	assert.Equal(t, reg.UserID, me["id"])
	assert.NotContains(t, me, "password_hash")

	w = s.do(t, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/auth/me", nil, "Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAstrologerHandler_List(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/astrologers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	reg := s.registerAstrologer(t)
	w = s.do(t, http.MethodGet, "/astrologers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, reg.UserID, list[0]["id"])
	assert.Equal(t, 4.0, list[0]["rate_per_min"])
	assert.NotContains(t, list[0], "email")
	assert.NotContains(t, list[0], "password_hash")
}

func TestChatHandler_Flow(t *testing.T) {
	s := newTestServer(t)
	astro := s.registerAstrologer(t)

	w := s.do(t, http.MethodPost, "/chat/create", gin.H{"astrologer_id": astro.UserID, "min_fee": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	chatID := decode[model.CreateChatResponse](t, w).ChatID

	sender := bson.NewObjectID().Hex()
	w = s.do(t, http.MethodPost, "/chat/send", gin.H{"chat_id": chatID, "sender_id": sender, "content": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"sent"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/chat/"+chatID+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decode[[]model.MessageView](t, w)
	require.Len(t, msgs, 1)
	assert.Equal(t, sender, msgs[0].SenderID)
	assert.Equal(t, "hello", msgs[0].Content)
}

func TestChatHandler_Errors(t *testing.T) {
	s := newTestServer(t)
	s.registerAstrologer(t)

	w := s.do(t, http.MethodPost, "/chat/create", gin.H{"astrologer_id": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid id format", decode[gin.H](t, w)["error"])

	w = s.do(t, http.MethodPost, "/chat/create", gin.H{"astrologer_id": bson.NewObjectID().Hex()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/chat/send", gin.H{"chat_id": bson.NewObjectID().Hex(), "sender_id": bson.NewObjectID().Hex(), "content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/chat/send", gin.H{"chat_id": bson.NewObjectID().Hex(), "sender_id": bson.NewObjectID().Hex()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/chat/not-an-id/messages", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/chat/"+bson.NewObjectID().Hex()+"/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCallHandler_Flow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/call/init", gin.H{"callee_id": bson.NewObjectID().Hex(), "call_type": "video"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	callID := decode[model.InitCallResponse](t, w).CallID

	w = s.do(t, http.MethodPost, "/call/"+callID+"/status?status=anything-goes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"anything-goes"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/call/"+callID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	call := decode[gin.H](t, w)
	assert.Equal(t, "anything-goes", call["status"])
	assert.Equal(t, "video", call["call_type"])

	w = s.do(t, http.MethodPost, "/call/"+callID+"/status", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/call/"+bson.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/call/init", gin.H{"callee_id": bson.NewObjectID().Hex(), "call_type": "hologram"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"Astrology API"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[gin.H](t, w)
	assert.Equal(t, "connected", body["database"])
	assert.Contains(t, body["collections"], repository.CollectionUsers)

	w = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

type brokenStore struct{}

func (brokenStore) Ping(ctx context.Context) error { return errors.New("server selection timeout") }

func (brokenStore) CollectionNames(ctx context.Context) ([]string, error) {
	return nil, errors.New("server selection error: context deadline exceeded, current topology: { Type: Unknown, Servers: [] }")
}

func TestHealthHandler_StoreDown(t *testing.T) {
	r := gin.New()
	NewHealthHandler(brokenStore{}, zap.NewNop()).RegisterHealthRoutes(r.Group("/"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[gin.H](t, w)
	db, _ := body["database"].(string)
	assert.True(t, len(db) <= len("error: ")+80)
	assert.Contains(t, db, "error: server selection error")
	assert.NotContains(t, body, "collections")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type accentedStore struct{ brokenStore }

func (accentedStore) CollectionNames(ctx context.Context) ([]string, error) {
	return nil, errors.New(strings.Repeat("é", 79) + "ü and more")
}

func TestHealthHandler_TruncatesOnRunes(t *testing.T) {
	r := gin.New()
	NewHealthHandler(accentedStore{}, zap.NewNop()).RegisterHealthRoutes(r.Group("/"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, utf8.Valid(w.Body.Bytes()))

	db, _ := decode[gin.H](t, w)["database"].(string)
	assert.Equal(t, "error: "+strings.Repeat("é", 79)+"ü", db)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(service.ErrInvalidID))
	assert.Equal(t, http.StatusBadRequest, statusFor(service.ErrEmailTaken))
	assert.Equal(t, http.StatusUnauthorized, statusFor(service.ErrInvalidCredentials))
	assert.Equal(t, http.StatusNotFound, statusFor(service.ErrChatNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
