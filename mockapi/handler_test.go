package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupRouter(opts ...Option) (http.Handler, *Store) {
	store := newStoreWithCost(bcrypt.MinCost)
	return NewRouter(New(store, opts...)), store
}

func post(t *testing.T, h http.Handler, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestRegisterThenLogin(t *testing.T) {
	r, _ := setupRouter()

	resp := post(t, r, "/users/register", credentials{Username: "bob", Password: "secret"}, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = post(t, r, "/users/login", credentials{Username: "bob", Password: "secret"}, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	r, _ := setupRouter()

	post(t, r, "/users/register", credentials{Username: "bob", Password: "secret"}, nil)
	resp := post(t, r, "/users/register", credentials{Username: "bob", Password: "other"}, nil)

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.JSONEq(t, `{"detail":"Username already exists"}`, resp.Body.String())
}

func TestRegisterMissingFields(t *testing.T) {
	r, _ := setupRouter()

	resp := post(t, r, "/users/register", credentials{Username: "bob"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := setupRouter()

	post(t, r, "/users/register", credentials{Username: "bob", Password: "secret"}, nil)
	resp := post(t, r, "/users/login", credentials{Username: "bob", Password: "nope"}, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid credentials")
}

func TestChatRequiresKnownUser(t *testing.T) {
	r, _ := setupRouter()

	resp := post(t, r, "/chat", chatRequest{Message: "hi", Topic: "General"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = post(t, r, "/chat", chatRequest{Message: "hi"}, map[string]string{"X-Username": "ghost"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestChatReplyAndTranscript(t *testing.T) {
	r, store := setupRouter(WithResponder(func(username, topic, message string) string {
		return topic + ":" + message
	}))

	post(t, r, "/users/register", credentials{Username: "bob", Password: "secret"}, nil)
	resp := post(t, r, "/chat", chatRequest{Message: "What's the weather?", Topic: "Weather"},
		map[string]string{"X-Username": "bob"})
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Weather:What's the weather?", body["response"])

	transcript := store.Transcript("bob")
	require.Len(t, transcript, 2)
	assert.Equal(t, "bob", transcript[0].Sender)
	assert.Equal(t, "assistant", transcript[1].Sender)
	assert.Less(t, transcript[0].ID, transcript[1].ID)
}

func TestChatEmptyMessage(t *testing.T) {
	r, _ := setupRouter()

	post(t, r, "/users/register", credentials{Username: "bob", Password: "secret"}, nil)
	resp := post(t, r, "/chat", chatRequest{Message: "  "}, map[string]string{"X-Username": "bob"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestEchoResponder(t *testing.T) {
	assert.Contains(t, EchoResponder("bob", "General", "hello"), "Hi bob!")
	assert.Contains(t, EchoResponder("bob", "Weather", "rain?"), "Echo: rain?")
}
