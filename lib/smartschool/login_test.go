package smartschool

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smsc-client/internal/components/telemetry"
	"smsc-client/lib/testutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestExtractLoginToken(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(testutil.LoginPage))
	require.NoError(t, err)

	token, err := extractLoginToken(doc, DefaultLoginMatchers().TokenSelector)
	require.NoError(t, err)
	require.Equal(t, testutil.Token, token)

	_, err = extractLoginToken(doc, `input[name="missing"]`)
	require.ErrorIs(t, err, MissingLoginToken)

	doc, err = goquery.NewDocumentFromReader(strings.NewReader(
		`<form><input type="hidden" name="login_form[_token]" value=""></form>`,
	))
	require.NoError(t, err)
	_, err = extractLoginToken(doc, DefaultLoginMatchers().TokenSelector)
	require.ErrorIs(t, err, MissingLoginToken)
}

func TestLogin(t *testing.T) {
	platform := testutil.NewPlatform(t, testutil.PlatformNormal)

	session, err := Login(context.Background(), platform.URL(), testutil.Username, testutil.Password)
	require.NoError(t, err)

	require.Equal(t, platform.URL(), session.BaseUrl().String())
	require.NotEmpty(t, session.Cookies())
	require.Equal(t, testutil.SessionId, session.SessionId())

	// the returned url is a copy
	session.BaseUrl().Path = "/changed"
	require.Equal(t, platform.URL(), session.BaseUrl().String())
}

func TestLoginInvalidCredentials(t *testing.T) {
	platform := testutil.NewPlatform(t, testutil.PlatformNormal)
	rec := &telemetry.Recorder{}

	session, err := LoginWithOptions(context.Background(), LoginOptions{
		BaseUrl:   platform.URL(),
		Username:  testutil.Username,
		Password:  "wrong",
		Telemetry: rec,
	})
	require.Nil(t, session)
	require.True(t, IsInvalidCredentials(err))

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, "Ongeldige gebruikersnaam of wachtwoord.", authErr.Message)

	require.Len(t, rec.Reports("warning"), 1)
	require.Empty(t, rec.Reports("broken"))
}

func TestLoginBouncedWithoutErrorFragment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testutil.LoginPage))
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := LoginWithOptions(context.Background(), LoginOptions{
		BaseUrl:   srv.URL,
		Username:  testutil.Username,
		Password:  testutil.Password,
		Telemetry: &telemetry.Recorder{},
	})
	require.ErrorIs(t, err, InvalidCredentials)
}

func TestLoginMissingToken(t *testing.T) {
	platform := testutil.NewPlatform(t, testutil.PlatformNoToken)
	rec := &telemetry.Recorder{}

	_, err := LoginWithOptions(context.Background(), LoginOptions{
		BaseUrl:   platform.URL(),
		Username:  testutil.Username,
		Password:  testutil.Password,
		Telemetry: rec,
	})
	require.ErrorIs(t, err, MissingLoginToken)

	var protocolErr *ProtocolError
	require.True(t, errors.As(err, &protocolErr))
	require.Len(t, rec.Reports("broken"), 1)
}

func TestLoginAmbiguous(t *testing.T) {
	platform := testutil.NewPlatform(t, testutil.PlatformMaintenance)

	_, err := LoginWithOptions(context.Background(), LoginOptions{
		BaseUrl:   platform.URL(),
		Username:  testutil.Username,
		Password:  testutil.Password,
		Telemetry: &telemetry.Recorder{},
	})
	require.ErrorIs(t, err, AmbiguousLoginResult)
	require.False(t, IsInvalidCredentials(err))
}

func TestLoginSuccessByCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "anonymous", Path: "/"})
		w.Write([]byte(testutil.LoginPage))
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "rotated", Path: "/"})
		w.Write([]byte("<html><body>welkom</body></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session, err := LoginWithOptions(context.Background(), LoginOptions{
		BaseUrl:  srv.URL,
		Username: testutil.Username,
		Password: testutil.Password,
		// the response is not a redirect, so the login path itself is not a
		// failure indicator here
		Matchers:  LoginMatchers{FailurePaths: []string{"/login/failed"}},
		Telemetry: &telemetry.Recorder{},
	})
	require.NoError(t, err)
	require.Equal(t, "rotated", session.SessionId())
}

func TestLoginCustomMatchers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /account/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<form><input name="csrf" value="abc"></form>`))
	})
	mux.HandleFunc("POST /account/login", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("csrf") != "abc" || r.PostForm.Get("user") != testutil.Username {
			w.Write([]byte(`<p class="oops">nope</p>`))
			return
		}
		w.Write([]byte(`<div id="welcome"></div>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	matchers := LoginMatchers{
		LoginPath:        "/account/login",
		TokenSelector:    "input[name=csrf]",
		UsernameField:    "user",
		PasswordField:    "pass",
		TokenField:       "csrf",
		FailurePaths:     []string{"/account/failed"},
		FailureSelectors: []string{".oops"},
		SuccessSelectors: []string{"#welcome"},
	}

	_, err := LoginWithOptions(context.Background(), LoginOptions{
		BaseUrl:   srv.URL,
		Username:  testutil.Username,
		Password:  testutil.Password,
		Matchers:  matchers,
		Telemetry: &telemetry.Recorder{},
	})
	require.NoError(t, err)

	_, err = LoginWithOptions(context.Background(), LoginOptions{
		BaseUrl:   srv.URL,
		Username:  "someone else",
		Password:  testutil.Password,
		Matchers:  matchers,
		Telemetry: &telemetry.Recorder{},
	})
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, "nope", authErr.Message)
}

func TestLoginTransportErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := LoginWithOptions(context.Background(), LoginOptions{
		BaseUrl:   srv.URL,
		Telemetry: &telemetry.Recorder{},
	})
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Equal(t, http.StatusServiceUnavailable, transportErr.Status)

	closed := httptest.NewServer(mux)
	closed.Close()
	_, err = LoginWithOptions(context.Background(), LoginOptions{
		BaseUrl:   closed.URL,
		Telemetry: &telemetry.Recorder{},
	})
	require.True(t, errors.As(err, &transportErr))
	require.NotNil(t, transportErr.Err)
}

func TestLoginInvalidBaseUrl(t *testing.T) {
	for _, baseUrl := range []string{"", "school.smartschool.be", "ftp://school.smartschool.be", "://"} {
		_, err := Login(context.Background(), baseUrl, testutil.Username, testutil.Password)
		require.ErrorIs(t, err, InvalidBaseUrl, baseUrl)
	}
}

func TestLoginSendsRotatedSessionCookie(t *testing.T) {
	platform := testutil.NewPlatform(t, testutil.PlatformNormal)

	_, err := Login(context.Background(), platform.URL(), testutil.Username, testutil.Password)
	require.NoError(t, err)

	// the landing page only ever sees the session issued by the credential
	// post, never the anonymous one from the login form
	require.Equal(t, []string{"PHPSESSID=" + testutil.SessionId}, platform.CookieHeaders("/"))
	form := platform.CookieHeaders("/login")
	require.NotEmpty(t, form)
	require.Equal(t, "", form[0])
}

func TestLoginPathsUnderBasePath(t *testing.T) {
	matchers := DefaultLoginMatchers()
	base := mustParse(t, "https://host.example/school")

	require.True(t, isFailurePath(base, mustParse(t, "https://host.example/school/login?error=1"), matchers.FailurePaths))
	require.False(t, isFailurePath(base, mustParse(t, "https://host.example/login"), matchers.FailurePaths))
	require.True(t, isFailurePath(mustParse(t, "https://host.example"), mustParse(t, "https://host.example/login"), matchers.FailurePaths))

	redirect := func(location string) *http.Response {
		return &http.Response{
			StatusCode: http.StatusFound,
			Header:     http.Header{"Location": []string{location}},
			Request:    &http.Request{URL: mustParse(t, "https://host.example/school/mydoc/api/v1/files/recent")},
		}
	}
	require.True(t, redirectsToLogin(redirect("/school/login"), base, matchers))
	require.True(t, redirectsToLogin(redirect("https://host.example/school/login"), base, matchers))
	require.False(t, redirectsToLogin(redirect("/login"), base, matchers))
	require.False(t, redirectsToLogin(redirect("/school/mydoc"), base, matchers))
}
