package smartschool

import (
	"context"
	"net/http"
	"net/url"

	"smsc-client/internal/components/assert"
	"smsc-client/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const report_session_logout = "session.logout"

// Session is an authenticated context on the platform. It is only created by
// a successful login, its base url never changes and its cookies are only
// updated by the responses of calls made with it.
//
// A Session is safe for concurrent use.
type Session struct {
	baseUrl  *url.URL
	jar      *Jar
	http     *resty.Client
	envelope envelope
	matchers LoginMatchers
	tel      telemetry.API
}

func newSession(
	baseUrl *url.URL,
	jar *Jar,
	transport TransportOptions,
	env envelope,
	matchers LoginMatchers,
	tel telemetry.API,
) *Session {
	assert.NotNil(jar, "cookie jar")
	assert.NotNil(tel, "telemetry")

	client := newHttpClient(baseUrl, transport, tel)
	// a redirect is a response like any other, it is classified by the caller
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))

	return &Session{
		baseUrl:  baseUrl,
		jar:      jar,
		http:     client,
		envelope: env,
		matchers: matchers,
		tel:      tel,
	}
}

// BaseUrl returns a copy of the url the session was created for.
func (s *Session) BaseUrl() *url.URL {
	u := *s.baseUrl
	return &u
}

// Cookies returns a snapshot of the session's cookies.
func (s *Session) Cookies() []Cookie {
	return s.jar.Snapshot()
}

// SessionId returns the current value of the platform's session cookie.
func (s *Session) SessionId() string {
	value, _ := s.jar.Value("PHPSESSID")
	return value
}

// Logout ends the session on the platform and forgets every cookie, the
// Session cannot be used afterwards. The cookies are forgotten even if the
// platform could not be reached.
func (s *Session) Logout(ctx context.Context) error {
	defer s.jar.Clear()

	target, err := s.resolve(s.matchers.LogoutPath)
	if err != nil {
		return err
	}
	_, err = s.http.R().
		SetContext(ctx).
		SetCookies(s.jar.Cookies(target)).
		Get(target.String())
	if err != nil {
		s.tel.ReportWarning(report_session_logout, err)
		return &TransportError{Op: http.MethodGet, Url: s.matchers.LogoutPath, Err: err}
	}
	return nil
}
