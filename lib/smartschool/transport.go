package smartschool

import (
	"net/url"
	"time"

	"smsc-client/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// TransportOptions configures the http client shared by the login flow and
// every call made with the resulting Session.
type TransportOptions struct {
	// Timeout is the timeout of a single request, defaults to 30 seconds.
	Timeout   time.Duration
	UserAgent string
	// RequestsPerSecond throttles requests client side when > 0, requests
	// wait for their turn and are never dropped.
	RequestsPerSecond float64
	CloudflareBypass  bool
	// Dump receives every request/response pair when not nil.
	Dump telemetry.Output
}

func newHttpClient(baseUrl *url.URL, opts TransportOptions, tel telemetry.API) *resty.Client {
	client := resty.New()
	client.SetBaseURL(baseUrl.String())
	// cookies are managed by the Session jar and attached explicitly
	client.SetCookieJar(nil)

	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		// max burst >= rps just means that no requests will be dropped
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, tel, opts.Dump)
	return client
}
