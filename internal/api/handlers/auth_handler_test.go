package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkowalczyk/clean-blog-be/internal/api"
	"github.com/pkowalczyk/clean-blog-be/internal/auth"
	"github.com/pkowalczyk/clean-blog-be/internal/database"
	"github.com/pkowalczyk/clean-blog-be/internal/models"
	"github.com/pkowalczyk/clean-blog-be/internal/services"
	"github.com/pkowalczyk/clean-blog-be/internal/websocket"
)

const testSecret = "test-secret-key"

type testApp struct {
	router http.Handler
}

// newTestApp wires the full application against a throwaway sqlite database.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	hub := websocket.NewHub()
	go hub.Run()

	userService := services.NewUserService(db)
	activityService := services.NewActivityService(db, hub)
	postService := services.NewPostService(db, activityService)
	commentService := services.NewCommentService(db, activityService)

	codec := auth.NewCodec(testSecret, 30*time.Minute)
	resolver := auth.NewResolver(codec, userService)
	gate := auth.NewGate(resolver, postService)

	router := api.NewRouter(gate, codec, hub, userService, postService,
		commentService, activityService, "http://localhost:3000")

	return &testApp{router: router}
}

func (app *testApp) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, r)
	return w
}

func (app *testApp) register(t *testing.T, name, email, password string) models.User {
	t.Helper()
	w := app.postForm(t, "/api/v1/auth/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	return user
}

func (app *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	w := app.postForm(t, "/api/v1/auth/token", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp handlersTokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

type handlersTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func TestLogin_SetsBearerCookie(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "alice@x.com", "pw123")

	w := app.postForm(t, "/api/v1/auth/token", url.Values{
		"username": {"alice"},
		"password": {"pw123"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var tokenCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.AccessTokenCookie {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie, "login must set the access_token cookie")
	assert.True(t, strings.HasPrefix(tokenCookie.Value, "Bearer "))
	assert.True(t, tokenCookie.HttpOnly)
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "alice@x.com", "pw123")

	w := app.postForm(t, "/api/v1/auth/token", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "alice@x.com", "pw123")

	w := app.postForm(t, "/api/v1/auth/register", url.Values{
		"name":     {"alice2"},
		"email":    {"alice@x.com"},
		"password": {"pw123"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMe_WorksOverBothTransports(t *testing.T) {
	app := newTestApp(t)
	alice := app.register(t, "alice", "alice@x.com", "pw123")
	token := app.login(t, "alice", "pw123")

	t.Run("authorization header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var me models.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
		assert.Equal(t, alice.ID, me.ID)
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		r.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "Bearer " + token})
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLogout_ClearsCookies(t *testing.T) {
	app := newTestApp(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/logout", nil)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cleared := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	for _, name := range []string{auth.AccessTokenCookie, "Authorization", "session"} {
		assert.True(t, cleared[name], "cookie %s should be cleared", name)
	}
}

// TestOwnership_EndToEnd walks the whole flow: register, login, publish a
// post, and have another account try to delete it.
func TestOwnership_EndToEnd(t *testing.T) {
	app := newTestApp(t)

	alice := app.register(t, "alice", "alice@x.com", "pw123")
	aliceToken := app.login(t, "alice", "pw123")

	// Alice publishes a post.
	body := strings.NewReader(`{"title":"First light","subtitle":"hello","body":"text","imgUrl":""}`)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/posts", body)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Authorization", "Bearer "+aliceToken)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, r)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var post models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, alice.ID, post.OwnerID)

	// Bob, logged in, tries to delete Alice's post.
	app.register(t, "bob", "bob@x.com", "pw456")
	bobToken := app.login(t, "bob", "pw456")

	r = httptest.NewRequest(http.MethodDelete, "/api/v1/posts/"+post.ID, nil)
	r.Header.Set("Authorization", "Bearer "+bobToken)
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The post is still there.
	r = httptest.NewRequest(http.MethodGet, "/api/v1/posts/"+post.ID, nil)
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	// Alice deletes her own post.
	r = httptest.NewRequest(http.MethodDelete, "/api/v1/posts/"+post.ID, nil)
	r.Header.Set("Authorization", "Bearer "+aliceToken)
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/api/v1/posts/"+post.ID, nil)
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExpiredToken_Behaviour(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "alice@x.com", "pw123")

	expiredCodec := auth.NewCodec(testSecret, -time.Minute)
	expiredToken, err := expiredCodec.Issue("alice")
	require.NoError(t, err)

	t.Run("post list treats expired as logged out", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
		r.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "Bearer " + expiredToken})
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			LoggedIn bool `json:"loggedIn"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.LoggedIn)
	})

	t.Run("protected mutation redirects to login", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(`{}`))
		r.Header.Set("Authorization", "Bearer "+expiredToken)
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, auth.LoginRedirectURL, w.Header().Get("Location"))
	})
}

func TestComments_EndToEnd(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "alice@x.com", "pw123")
	aliceToken := app.login(t, "alice", "pw123")

	body := strings.NewReader(`{"title":"Post","subtitle":"s","body":"b"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/posts", body)
	r.Header.Set("Authorization", "Bearer "+aliceToken)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, r)
	require.Equal(t, http.StatusCreated, w.Code)

	var post models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))

	// Anonymous visitors cannot comment.
	r = httptest.NewRequest(http.MethodPost, "/api/v1/posts/"+post.ID+"/comments",
		strings.NewReader(`{"body":"nice"}`))
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A logged-in visitor can, and does not need to own the post.
	app.register(t, "bob", "bob@x.com", "pw456")
	bobToken := app.login(t, "bob", "pw456")

	r = httptest.NewRequest(http.MethodPost, "/api/v1/posts/"+post.ID+"/comments",
		strings.NewReader(`{"body":"nice"}`))
	r.Header.Set("Authorization", "Bearer "+bobToken)
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, r)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	r = httptest.NewRequest(http.MethodGet, "/api/v1/posts/"+post.ID+"/comments", nil)
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var comments []models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0].Body)
}
