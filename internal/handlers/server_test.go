package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"threadboard/internal/auth"
	"threadboard/internal/db/dbtest"
	"threadboard/internal/router"
	"threadboard/internal/voting"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
	clock  *clockwork.FakeClock
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	gdb := dbtest.Open(t)
	clock := clockwork.NewFakeClock()

	engine, err := router.New(router.Options{
		DB:            gdb,
		Votes:         voting.NewService(gdb),
		Tokens:        auth.NewTokenIssuer("test-secret", time.Hour, clock),
		Clock:         clock,
		SessionSecret: "session-secret",
		CacheSize:     32,
		CacheTTL:      time.Minute,
	})
	require.NoError(t, err)
	return &testServer{t: t, engine: engine, db: gdb, clock: clock}
}

type session struct {
	Token string
	ID    uint
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(name string) session {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    name + "@example.com",
		"password": "password123",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decode(s.t, w, &out)
	return session{Token: out.Token, ID: out.User.ID}
}

func (s *testServer) createSubject(owner session, title string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/subjects", owner.Token, gin.H{
		"title":          title,
		"creatorName":    "creator",
		"initialMessage": "What do you think about **" + title + "**?",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		ID string `json:"id"`
	}
	decode(s.t, w, &out)
	return out.ID
}

func (s *testServer) createComment(author session, subjectID, text string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/subjects/"+subjectID+"/comments", author.Token, gin.H{
		"text":     text,
		"userName": "commenter",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		ID string `json:"id"`
	}
	decode(s.t, w, &out)
	return out.ID
}

func (s *testServer) vote(voter session, targetType, targetID, voteType string) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(http.MethodPost, "/api/likes", voter.Token, gin.H{
		"targetType": targetType,
		"targetId":   targetID,
		"voteType":   voteType,
	})
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

type errorBody struct {
	Error string `json:"error"`
	Type  string `json:"type"`
	Code  string `json:"code"`
}
