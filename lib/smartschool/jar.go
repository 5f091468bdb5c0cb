package smartschool

import (
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time
	HostOnly bool
	Secure   bool
	HttpOnly bool
}

func (c Cookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func (c Cookie) sameKey(other Cookie) bool {
	return c.Domain == other.Domain && c.Path == other.Path && c.Name == other.Name
}

func (c Cookie) matches(u *url.URL) bool {
	host := canonicalHost(u.Hostname())
	if c.HostOnly {
		if host != c.Domain {
			return false
		}
	} else if host != c.Domain && !strings.HasSuffix(host, "."+c.Domain) {
		return false
	}
	if c.Secure && u.Scheme != "https" {
		return false
	}
	return pathMatches(requestPath(u), c.Path)
}

// Jar is the cookie store of a Session, cookies are keyed by
// (domain, path, name) and keep the order in which they were first set.
//
// A Jar is safe for concurrent use. Every batch given to SetCookies is
// applied atomically, so readers observe either none or all of a response's
// cookies.
type Jar struct {
	mutex   sync.RWMutex
	cookies []Cookie
	now     func() time.Time
}

func NewJar() *Jar {
	return &Jar{now: time.Now}
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}

	j.mutex.Lock()
	defer j.mutex.Unlock()

	now := j.now()
	for _, hc := range cookies {
		c, ok := newCookie(u, hc, now)
		if !ok {
			continue
		}
		j.put(c, now)
	}
	j.dropExpired(now)
}

func (j *Jar) put(c Cookie, now time.Time) {
	for i, existing := range j.cookies {
		if !existing.sameKey(c) {
			continue
		}
		if c.expired(now) {
			j.cookies = append(j.cookies[:i], j.cookies[i+1:]...)
			return
		}
		j.cookies[i] = c
		return
	}
	if c.expired(now) {
		return
	}
	j.cookies = append(j.cookies, c)
}

func (j *Jar) dropExpired(now time.Time) {
	kept := j.cookies[:0]
	for _, c := range j.cookies {
		if !c.expired(now) {
			kept = append(kept, c)
		}
	}
	j.cookies = kept
}

// Cookies implements http.CookieJar, it returns the cookies to send in a
// request to u, longest path first.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mutex.RLock()
	defer j.mutex.RUnlock()

	now := j.now()
	var selected []Cookie
	for _, c := range j.cookies {
		if c.expired(now) || !c.matches(u) {
			continue
		}
		selected = append(selected, c)
	}
	sort.SliceStable(selected, func(a, b int) bool {
		return len(selected[a].Path) > len(selected[b].Path)
	})

	out := make([]*http.Cookie, len(selected))
	for i, c := range selected {
		out[i] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
	return out
}

// Snapshot returns a copy of every unexpired cookie.
func (j *Jar) Snapshot() []Cookie {
	j.mutex.RLock()
	defer j.mutex.RUnlock()

	now := j.now()
	out := make([]Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		if !c.expired(now) {
			out = append(out, c)
		}
	}
	return out
}

// Value returns the value of the first unexpired cookie with the given name.
func (j *Jar) Value(name string) (string, bool) {
	for _, c := range j.Snapshot() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func (j *Jar) Len() int {
	return len(j.Snapshot())
}

func (j *Jar) Clear() {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	j.cookies = nil
}

func newCookie(u *url.URL, hc *http.Cookie, now time.Time) (Cookie, bool) {
	if hc.Name == "" {
		return Cookie{}, false
	}
	host := canonicalHost(u.Hostname())
	c := Cookie{
		Name:     hc.Name,
		Value:    hc.Value,
		Secure:   hc.Secure,
		HttpOnly: hc.HttpOnly,
		Path:     hc.Path,
	}

	domain := canonicalHost(strings.TrimPrefix(hc.Domain, "."))
	switch {
	case domain == "" || isIP(host):
		c.Domain = host
		c.HostOnly = true
	case domain == host:
		c.Domain = host
	default:
		if !strings.HasSuffix(host, "."+domain) {
			return Cookie{}, false
		}
		suffix, _ := publicsuffix.PublicSuffix(domain)
		if suffix == domain {
			return Cookie{}, false
		}
		c.Domain = domain
	}

	if c.Path == "" || c.Path[0] != '/' {
		c.Path = defaultPath(requestPath(u))
	}

	switch {
	case hc.MaxAge < 0:
		c.Expires = now
	case hc.MaxAge > 0:
		c.Expires = now.Add(time.Duration(hc.MaxAge) * time.Second)
	case !hc.Expires.IsZero():
		c.Expires = hc.Expires
		if !c.Expires.After(now) {
			c.Expires = now
		}
	}
	return c, true
}

func canonicalHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

func isIP(host string) bool {
	return net.ParseIP(host) != nil
}

func requestPath(u *url.URL) string {
	if !strings.HasPrefix(u.Path, "/") {
		return "/" + u.Path
	}
	return u.Path
}

// defaultPath is the directory of the request path, per RFC 6265 5.1.4.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

func pathMatches(requestPath, cookiePath string) bool {
	if requestPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || requestPath[len(cookiePath)] == '/'
}
