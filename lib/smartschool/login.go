package smartschool

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"smsc-client/internal/components/assert"
	"smsc-client/internal/components/telemetry"
	"smsc-client/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_login_fetch_form    = "login.fetch-form"
	report_login_extract_token = "login.extract-token"
	report_login_submit        = "login.submit"
	report_login_classify      = "login.classify"
)

type LoginOptions struct {
	BaseUrl  string
	Username string
	Password string

	Transport TransportOptions
	Matchers  LoginMatchers
	Envelope  EnvelopeMatcher
	// Telemetry defaults to a SlogAPI on the default logger.
	Telemetry telemetry.API
}

// Login logs into the platform at baseUrl with the given credentials using
// the default options.
func Login(ctx context.Context, baseUrl, username, password string) (*Session, error) {
	return LoginWithOptions(ctx, LoginOptions{
		BaseUrl:  baseUrl,
		Username: username,
		Password: password,
	})
}

// LoginWithOptions performs the web login handshake: it fetches the login
// form, extracts the anti-forgery token, submits the credentials and
// classifies the page it lands on. It never retries, and a result that is
// neither a recognized success nor a recognized failure is an error.
func LoginWithOptions(ctx context.Context, opts LoginOptions) (*Session, error) {
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	tel = telemetry.NewScopedAPI("smartschool", tel)

	loginError := func(err error) error {
		return fmt.Errorf("smartschool: login failed: %w", err)
	}

	baseUrl, err := parseBaseUrl(opts.BaseUrl)
	if err != nil {
		return nil, loginError(err)
	}
	matchers, err := opts.Matchers.withDefaults()
	if err != nil {
		return nil, loginError(err)
	}
	assert.NotEmptyStr(matchers.LoginPath, "login path")
	assert.NotEmptyStr(matchers.TokenSelector, "login token selector")
	env, err := opts.Envelope.compile()
	if err != nil {
		return nil, loginError(err)
	}

	jar := NewJar()
	client := newHttpClient(baseUrl, opts.Transport, tel)
	client.SetCookieJar(jar)
	client.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(10),
		resty.DomainCheckRedirectPolicy(baseUrl.Hostname()),
		// the copied Cookie header holds the cookies of the first hop, drop it
		// so the jar fills in the ones the previous hop rotated
		resty.RedirectPolicyFunc(func(req *http.Request, _ []*http.Request) error {
			req.Header.Del("Cookie")
			return nil
		}),
	)

	res, err := client.R().
		SetContext(ctx).
		Get(matchers.LoginPath)
	if err != nil {
		return nil, loginError(&TransportError{Op: "GET", Url: matchers.LoginPath, Err: err})
	}
	if res.StatusCode() >= 400 {
		tel.ReportBroken(report_login_fetch_form, res.Status())
		return nil, loginError(&TransportError{Op: "GET", Url: matchers.LoginPath, Status: res.StatusCode()})
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		tel.ReportBroken(report_login_fetch_form, fmt.Errorf("parse login page: %w", err))
		return nil, loginError(&ProtocolError{Kind: MissingLoginToken, Detail: "unreadable login page", Err: err})
	}
	token, err := extractLoginToken(doc, matchers.TokenSelector)
	if err != nil {
		tel.ReportBroken(report_login_extract_token, err)
		return nil, loginError(err)
	}

	before := make(map[string]string, len(matchers.SuccessCookies))
	for _, name := range matchers.SuccessCookies {
		before[name], _ = jar.Value(name)
	}

	res, err = client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			matchers.UsernameField: opts.Username,
			matchers.PasswordField: opts.Password,
			matchers.TokenField:    token,
		}).
		Post(matchers.LoginPath)
	if err != nil {
		return nil, loginError(&TransportError{Op: "POST", Url: matchers.LoginPath, Err: err})
	}
	if res.StatusCode() >= 500 {
		tel.ReportBroken(report_login_submit, res.Status())
		return nil, loginError(&TransportError{Op: "POST", Url: matchers.LoginPath, Status: res.StatusCode()})
	}

	err = classifyLogin(res, baseUrl, matchers, jar, before)
	if err != nil {
		if IsInvalidCredentials(err) {
			tel.ReportWarning(report_login_classify, err)
		} else {
			tel.ReportBroken(report_login_classify, err)
		}
		return nil, loginError(err)
	}

	tel.ReportDebug("logged in", baseUrl.String())
	return newSession(baseUrl, jar, opts.Transport, env, matchers, tel), nil
}

func parseBaseUrl(raw string) (*url.URL, error) {
	baseUrl, err := url.Parse(raw)
	if err != nil {
		return nil, &ProtocolError{Kind: InvalidBaseUrl, Detail: raw, Err: err}
	}
	if (baseUrl.Scheme != "http" && baseUrl.Scheme != "https") || baseUrl.Host == "" {
		return nil, &ProtocolError{Kind: InvalidBaseUrl, Detail: raw}
	}
	return baseUrl, nil
}

// extractLoginToken finds the anti-forgery token of the login form.
func extractLoginToken(doc *goquery.Document, selector string) (string, error) {
	input := doc.Find(selector).First()
	if input.Length() == 0 {
		return "", &ProtocolError{
			Kind:   MissingLoginToken,
			Detail: fmt.Sprintf("no element matches %s", selector),
		}
	}
	token := strings.TrimSpace(input.AttrOr("value", ""))
	if token == "" {
		return "", &ProtocolError{
			Kind:   MissingLoginToken,
			Detail: fmt.Sprintf("%s has no value", selector),
		}
	}
	return token, nil
}

// classifyLogin decides the outcome of a credential submission from the
// final response (after redirects). Failure indicators are checked before
// success indicators.
func classifyLogin(res *resty.Response, baseUrl *url.URL, matchers LoginMatchers, jar *Jar, before map[string]string) error {
	finalUrl := res.Request.RawRequest.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalUrl = res.RawResponse.Request.URL
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return &ProtocolError{Kind: AmbiguousLoginResult, Detail: "unreadable landing page", Err: err}
	}

	failSel, _, failed := htmlutil.FirstMatch(doc, matchers.FailureSelectors)
	if failed {
		return &AuthError{Kind: InvalidCredentials, Message: htmlutil.Text(failSel)}
	}
	if isFailurePath(baseUrl, finalUrl, matchers.FailurePaths) {
		return &AuthError{Kind: InvalidCredentials, Message: "redirected back to the login form"}
	}

	_, _, succeeded := htmlutil.FirstMatch(doc, matchers.SuccessSelectors)
	if succeeded {
		return nil
	}
	for _, name := range matchers.SuccessCookies {
		value, ok := jar.Value(name)
		if ok && value != before[name] {
			return nil
		}
	}

	return &ProtocolError{
		Kind:   AmbiguousLoginResult,
		Detail: fmt.Sprintf("landed on %s (%s) with no known indicator", finalUrl.Path, res.Status()),
	}
}

// isFailurePath reports whether u is one of failurePaths, which are relative
// to the path of baseUrl.
func isFailurePath(baseUrl, u *url.URL, failurePaths []string) bool {
	current := cleanPath(u.Path)
	for _, p := range failurePaths {
		if p != "" && underBase(baseUrl, p) == current {
			return true
		}
	}
	return false
}

func underBase(baseUrl *url.URL, p string) string {
	return cleanPath(path.Join(cleanPath(baseUrl.Path), p))
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

// redirectsToLogin reports whether a 3xx response sends the client back to
// one of the login form paths.
func redirectsToLogin(res *http.Response, baseUrl *url.URL, matchers LoginMatchers) bool {
	location, err := res.Location()
	if err != nil {
		return false
	}
	if isFailurePath(baseUrl, location, matchers.FailurePaths) {
		return true
	}
	return cleanPath(location.Path) == underBase(baseUrl, matchers.LoginPath)
}
