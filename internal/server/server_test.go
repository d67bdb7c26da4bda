package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"tgapp/internal/domain"
	"tgapp/internal/handler"
	"tgapp/internal/service"
	"tgapp/internal/telegram"
	"tgapp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBotToken = "12345:TEST_TOKEN"

type stubHealth struct {
	err error
}

func (s stubHealth) Ping(context.Context) error { return s.err }

type testEnv struct {
	srv      *httptest.Server
	bot      *testutil.MockBotAPI
	users    *testutil.MockUserRepository
	pointers *testutil.MockMessagePointerRepository
}

func newTestEnv(t *testing.T, botToken string, healthErr error) *testEnv {
	t.Helper()

	bot := new(testutil.MockBotAPI)
	users := new(testutil.MockUserRepository)
	pointers := new(testutil.MockMessagePointerRepository)
	logger := testutil.NewTestLogger()

	dispatcher := handler.NewDispatcher(bot, users, pointers,
		"https://app.example", "https://example.com", logger)
	userService := service.NewUserService(users, logger)
	validator := telegram.NewValidator(logger)

	s := New(botToken, validator, userService, dispatcher, stubHealth{err: healthErr}, logger)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, bot: bot, users: users, pointers: pointers}
}

// signedInitData builds a valid init-data header value for the given user
// payload.
func signedInitData(botToken string, userJSON string) string {
	pairs := map[string]string{
		"auth_date": "1700000000",
		"user":      userJSON,
	}

	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, key := range keys {
		lines[i] = key + "=" + pairs[key]
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	return "auth_date=" + pairs["auth_date"] +
		"&user=" + url.QueryEscape(userJSON) +
		"&hash=" + hash
}

func doRequest(t *testing.T, env *testEnv, method, path, initData, body string) (*http.Response, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, env.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if initData != "" {
		req.Header.Set("X-Telegram-Init-Data", initData)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestGetUserData_NoInitData(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	resp, body := doRequest(t, env, http.MethodPost, "/api/user/get_data", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "error")
}

func TestGetUserData_BadSignature(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	initData := signedInitData("12345:OTHER_TOKEN", `{"id":42}`)
	resp, _ := doRequest(t, env, http.MethodPost, "/api/user/get_data", initData, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetUserData_TokenUnconfigured(t *testing.T) {
	env := newTestEnv(t, "", nil)

	resp, _ := doRequest(t, env, http.MethodPost, "/api/user/get_data", "whatever", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestGetUserData_CreatesNewUser(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	env.users.On("GetUser", mock.Anything, int64(42)).Return(nil, domain.ErrUserNotFound)
	env.users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.TelegramID == 42 && u.FirstName == "John"
	})).Return(testutil.NewTestUser(42, "John"), nil)

	initData := signedInitData(testBotToken, `{"id":42,"first_name":"John"}`)
	resp, body := doRequest(t, env, http.MethodPost, "/api/user/get_data", initData, "")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(42), user["telegram_id"])
	env.users.AssertExpectations(t)
}

func TestGetUserData_ReturnsExistingUser(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	env.users.On("GetUser", mock.Anything, int64(42)).Return(testutil.NewTestUser(42, "John"), nil)

	initData := signedInitData(testBotToken, `{"id":42,"first_name":"John"}`)
	resp, body := doRequest(t, env, http.MethodPost, "/api/user/get_data", initData, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "user")
	env.users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestUpdateUserData_InvalidBody(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)
	initData := signedInitData(testBotToken, `{"id":42}`)

	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "not json", body: "not json"},
		{name: "empty object", body: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doRequest(t, env, http.MethodPost, "/api/user/up_data", initData, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestUpdateUserData_BlankFirstName(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	initData := signedInitData(testBotToken, `{"id":42}`)
	resp, _ := doRequest(t, env, http.MethodPost, "/api/user/up_data", initData, `{"first_name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateUserData_UnknownUser(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	env.users.On("UpdateUser", mock.Anything, int64(42), mock.Anything).
		Return(nil, domain.ErrUserNotFound)

	initData := signedInitData(testBotToken, `{"id":42}`)
	resp, _ := doRequest(t, env, http.MethodPost, "/api/user/up_data", initData, `{"first_name":"John"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateUserData_Success(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	env.users.On("UpdateUser", mock.Anything, int64(42),
		map[string]interface{}{"first_name": "Johnny"}).
		Return(testutil.NewTestUser(42, "Johnny"), nil)

	initData := signedInitData(testBotToken, `{"id":42}`)
	resp, body := doRequest(t, env, http.MethodPost, "/api/user/up_data", initData, `{"first_name":"Johnny"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Johnny", user["first_name"])
}

func TestWebhook_RejectsNonUpdate(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "garbage"},
		{name: "unrelated object", body: `{"foo":"bar"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doRequest(t, env, http.MethodPost, "/api/webhook", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestWebhook_DispatchesStart(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	env.users.On("GetUser", mock.Anything, int64(7)).Return(testutil.NewTestUser(7, "John"), nil)
	env.pointers.On("ClearLastBotMessageID", mock.Anything, int64(5)).Return(nil)
	env.pointers.On("LastBotMessageID", mock.Anything, int64(5)).Return(int64(0), nil)
	env.bot.On("SendMessage", mock.Anything, int64(5), mock.Anything, mock.Anything).Return(int64(77), nil)
	env.pointers.On("SetLastBotMessageID", mock.Anything, int64(5), int64(77)).Return(nil)

	body := `{"update_id":1,"message":{"message_id":9,"chat":{"id":5},"from":{"id":7,"first_name":"John"},"text":"/start"}}`
	resp, decoded := doRequest(t, env, http.MethodPost, "/api/webhook", "", body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decoded["status"])
	env.bot.AssertExpectations(t)
}

func TestWebhook_DispatchFailure(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	// A bare update_id passes the shape check but normalizes to an empty
	// message the dispatcher cannot handle.
	resp, _ := doRequest(t, env, http.MethodPost, "/api/webhook", "", `{"update_id":1}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	for _, path := range []string{"/health", "/api/health"} {
		resp, body := doRequest(t, env, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "connected", body["redis"])
	}
}

func TestHealth_StoreDown(t *testing.T) {
	env := newTestEnv(t, testBotToken, errors.New("connection refused"))

	resp, body := doRequest(t, env, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t, testBotToken, nil)

	resp, body := doRequest(t, env, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "running", body["status"])
}
