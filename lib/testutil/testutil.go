package testutil

import (
	_ "embed"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

//go:embed smartschool_login_page.html
var LoginPage string

//go:embed smartschool_dashboard_page.html
var DashboardPage string

const (
	// Token is the anti-forgery token in LoginPage.
	Token     = "y2Xe0GmEYtc7zMtrDSe6zN1Hx4BhG3xq-xKHgfM7tc0"
	Username  = "leerling"
	Password  = "hunter2"
	SessionId = "authed-session"
)

type PlatformMode int

const (
	PlatformNormal PlatformMode = iota
	// PlatformNoToken serves a login page without the token field.
	PlatformNoToken
	// PlatformMaintenance answers every credential submission with a
	// maintenance page.
	PlatformMaintenance
)

// Platform is a fake of the platform's web login flow served over
// httptest, tests register their own api endpoints on Mux.
type Platform struct {
	Mode   PlatformMode
	Mux    *http.ServeMux
	Server *httptest.Server

	mutex   sync.Mutex
	cookies map[string][]string
}

func NewPlatform(t testing.TB, mode PlatformMode) *Platform {
	p := &Platform{Mode: mode, Mux: http.NewServeMux(), cookies: map[string][]string{}}
	p.Mux.HandleFunc("GET /login", p.loginPage)
	p.Mux.HandleFunc("POST /login", p.submitLogin)
	p.Mux.HandleFunc("GET /maintenance", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Smartschool is tijdelijk niet beschikbaar.</p></body></html>"))
	})
	p.Mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		if !Authenticated(r) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		w.Write([]byte(DashboardPage))
	})
	p.Mux.HandleFunc("GET /logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "", Path: "/", MaxAge: -1})
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	p.Server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.Server.Close)
	return p
}

func (p *Platform) URL() string {
	return p.Server.URL
}

func (p *Platform) serve(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	p.cookies[r.URL.Path] = append(p.cookies[r.URL.Path], strings.Join(r.Header.Values("Cookie"), "; "))
	p.mutex.Unlock()
	p.Mux.ServeHTTP(w, r)
}

// CookieHeaders returns the Cookie header of every request made to path, in
// the order they were received. Requests without cookies record "".
func (p *Platform) CookieHeaders(path string) []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]string(nil), p.cookies[path]...)
}

// Authenticated reports whether the request carries the session cookie
// issued by a successful login.
func Authenticated(r *http.Request) bool {
	cookie, err := r.Cookie("PHPSESSID")
	return err == nil && cookie.Value == SessionId
}

func (p *Platform) loginPage(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "anonymous", Path: "/", HttpOnly: true})

	page := LoginPage
	if p.Mode == PlatformNoToken {
		page = strings.Replace(page, `name="login_form[_token]"`, `name="login_form[_nonce]"`, 1)
	}
	if r.URL.Query().Get("error") != "" {
		page = strings.Replace(
			page,
			"<!--error-->",
			`<div class="login-app__error">Ongeldige gebruikersnaam of wachtwoord.</div>`,
			1,
		)
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (p *Platform) submitLogin(w http.ResponseWriter, r *http.Request) {
	if p.Mode == PlatformMaintenance {
		http.Redirect(w, r, "/maintenance", http.StatusFound)
		return
	}
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("login_form[_token]") != Token ||
		r.PostForm.Get("login_form[_username]") != Username ||
		r.PostForm.Get("login_form[_password]") != Password {
		http.Redirect(w, r, "/login?error=1", http.StatusFound)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: SessionId, Path: "/", HttpOnly: true})
	http.Redirect(w, r, "/", http.StatusFound)
}

// Api registers an authenticated endpoint, unauthenticated requests get a
// 401.
func (p *Platform) Api(pattern string, handler http.HandlerFunc) {
	p.Mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if !Authenticated(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler(w, r)
	})
}

func WriteJson(w http.ResponseWriter, status int, body string) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
