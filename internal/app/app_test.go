package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-portal/internal/client"
	"go-auth-portal/internal/config"
	"go-auth-portal/internal/model"
	"go-auth-portal/internal/session"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Environment:             config.EnvDevelopment,
		ServerPort:              "0",
		StoreDriver:             config.StoreDriverMemory,
		JWTSecret:               "app-test-secret",
		JWTTTL:                  time.Hour,
		CookieMaxAge:            24 * time.Hour,
		RequestTimeout:          5 * time.Second,
		RevocationSweepInterval: time.Hour,
		RateLimitRPM:            1000,
		AuthRateLimitRPM:        1000,
	}
}

type stack struct {
	api      *httptest.Server
	web      *httptest.Server
	activate func(email string)
}

func newStack(t *testing.T) stack {
	t.Helper()
	ctx := context.Background()

	cfg := memoryConfig()
	stores, err := OpenStores(ctx, cfg)
	require.NoError(t, err)

	apiHandler, stop, err := buildHandler(cfg, stores)
	require.NoError(t, err)
	t.Cleanup(stop)

	api := httptest.NewServer(apiHandler)
	t.Cleanup(api.Close)

	web, err := NewWeb(&config.WebConfig{
		Environment: config.EnvDevelopment,
		APIURL:      api.URL,
		APITimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	webServer := httptest.NewServer(web.Handler())
	t.Cleanup(webServer.Close)

	return stack{
		api: api,
		web: webServer,
		activate: func(email string) {
			u, err := stores.Users.FindByEmail(ctx, email)
			require.NoError(t, err)
			u.IsActive, u.IsVerified = true, true
			require.NoError(t, stores.Users.Update(ctx, u))
		},
	}
}

type page struct {
	Data struct {
		Authenticated bool              `json:"authenticated"`
		DisplayName   string            `json:"displayName"`
		User          *model.PublicUser `json:"user"`
	} `json:"data"`
}

func getPage(t *testing.T, hc *http.Client, url string) page {
	t.Helper()

	resp, err := hc.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p page
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	return p
}

func TestStoreThroughEdgeServer(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{Jar: jar, Timeout: 5 * time.Second}

	api, err := client.New(s.web.URL, client.WithHTTPClient(browser))
	require.NoError(t, err)
	store := session.NewStore(api)

	anonymous := getPage(t, browser, s.web.URL+"/")
	assert.False(t, anonymous.Data.Authenticated)
	assert.Equal(t, "Guest", anonymous.Data.DisplayName)

	require.NoError(t, store.Register(ctx, model.RegisterRequest{
		Email:     "j@x.com",
		Username:  "jdoe",
		Password:  "Password123!",
		FirstName: "Jane",
	}))
	require.NotNil(t, store.State().User)
	assert.False(t, store.State().User.Confirmed)

	err = store.Login(ctx, model.LoginRequest{EmailOrUsername: "jdoe", Password: "Password123!"})
	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.NotNil(t, store.State().Error)
	assert.Equal(t, "Account is not active", *store.State().Error)

	s.activate("j@x.com")

	require.NoError(t, store.Login(ctx, model.LoginRequest{EmailOrUsername: "j@x.com", Password: "Password123!"}))
	assert.Nil(t, store.State().Error)

	store.Refresh(ctx)
	require.NotNil(t, store.State().User)
	assert.Equal(t, "Jane", store.State().DisplayName())

	signedIn := getPage(t, browser, s.web.URL+"/")
	assert.True(t, signedIn.Data.Authenticated)
	assert.Equal(t, "Jane", signedIn.Data.DisplayName)

	store.Logout(ctx)
	assert.False(t, store.State().IsAuthenticated())

	store.Refresh(ctx)
	assert.Nil(t, store.State().User)
	assert.Nil(t, store.State().Error)

	assert.False(t, getPage(t, browser, s.web.URL+"/").Data.Authenticated)
}

func TestEdgeClearsRevokedCookie(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	api, err := client.New(s.api.URL)
	require.NoError(t, err)
	_, err = api.Register(ctx, model.RegisterRequest{Email: "a@b.co", Username: "alice", Password: "Password123!"})
	require.NoError(t, err)
	s.activate("a@b.co")

	loginReq := `{"emailOrUsername":"alice","password":"Password123!"}`
	resp, err := http.Post(s.api.URL+"/api/v1/auth/login", "application/json", strings.NewReader(loginReq))
	require.NoError(t, err)
	resp.Body.Close()

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == model.AuthCookieName {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)

	logoutReq, err := http.NewRequest(http.MethodPost, s.api.URL+"/api/v1/auth/logout", nil)
	require.NoError(t, err)
	logoutReq.AddCookie(&http.Cookie{Name: model.AuthCookieName, Value: token})
	resp, err = http.DefaultClient.Do(logoutReq)
	require.NoError(t, err)
	resp.Body.Close()

	pageReq, err := http.NewRequest(http.MethodGet, s.web.URL+"/", nil)
	require.NoError(t, err)
	pageReq.AddCookie(&http.Cookie{Name: model.AuthCookieName, Value: token})
	resp, err = http.DefaultClient.Do(pageReq)
	require.NoError(t, err)
	defer resp.Body.Close()

	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == model.AuthCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestVisitorSessionsDoNotShareCookies(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	visitors := visitorSessions{apiURL: s.api.URL, timeout: 5 * time.Second}

	first, err := visitors.newStore(nil)
	require.NoError(t, err)
	require.NoError(t, first.Register(ctx, model.RegisterRequest{Email: "v@x.com", Username: "visitor", Password: "Password123!"}))
	s.activate("v@x.com")
	require.NoError(t, first.Login(ctx, model.LoginRequest{EmailOrUsername: "visitor", Password: "Password123!"}))
	first.Refresh(ctx)
	require.True(t, first.State().IsAuthenticated())

	second, err := visitors.newStore(nil)
	require.NoError(t, err)
	second.Refresh(ctx)
	assert.False(t, second.State().IsAuthenticated())
	assert.Nil(t, second.State().Error)

	seeded, err := visitors.newStore(&model.PublicUser{ID: "u9", Username: "seed"})
	require.NoError(t, err)
	assert.Equal(t, "seed", seeded.State().DisplayName())
}

func TestEdgeLimitsVisitorsSeparately(t *testing.T) {
	ctx := context.Background()

	cfg := memoryConfig()
	cfg.RateLimitRPM = 5
	cfg.TrustedProxies = []netip.Prefix{netip.MustParsePrefix("127.0.0.1/32"), netip.MustParsePrefix("::1/128")}
	stores, err := OpenStores(ctx, cfg)
	require.NoError(t, err)
	apiHandler, stop, err := buildHandler(cfg, stores)
	require.NoError(t, err)
	t.Cleanup(stop)
	apiServer := httptest.NewServer(apiHandler)
	t.Cleanup(apiServer.Close)

	web, err := NewWeb(&config.WebConfig{Environment: config.EnvDevelopment, APIURL: apiServer.URL, APITimeout: 5 * time.Second})
	require.NoError(t, err)
	webServer := httptest.NewServer(web.Handler())
	t.Cleanup(webServer.Close)

	api, err := client.New(apiServer.URL)
	require.NoError(t, err)
	_, err = api.Register(ctx, model.RegisterRequest{Email: "m@x.com", Username: "many", Password: "Password123!"})
	require.NoError(t, err)
	u, err := stores.Users.FindByEmail(ctx, "m@x.com")
	require.NoError(t, err)
	u.IsActive, u.IsVerified = true, true
	require.NoError(t, stores.Users.Update(ctx, u))

	resp, err := http.Post(apiServer.URL+"/api/v1/auth/login", "application/json",
		strings.NewReader(`{"emailOrUsername":"many","password":"Password123!"}`))
	require.NoError(t, err)
	resp.Body.Close()
	var token string
	for _, c := range resp.Cookies() {
		if c.Name == model.AuthCookieName {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)

	authenticated := 0
	for i := 1; i <= 10; i++ {
		req, err := http.NewRequest(http.MethodGet, webServer.URL+"/", nil)
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		req.AddCookie(&http.Cookie{Name: model.AuthCookieName, Value: token})

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		var p page
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
		resp.Body.Close()
		if p.Data.Authenticated {
			authenticated++
		}
	}
	assert.Equal(t, 10, authenticated)
}

func TestNewWebRejectsBadAPIURL(t *testing.T) {
	_, err := NewWeb(&config.WebConfig{APIURL: "not a url", APITimeout: time.Second})
	require.Error(t, err)
}
