package appcast

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"appcast-scraper/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/appcast")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

const maxRedirects = 10

type Client struct {
	BaseUrl *url.URL
	http    *resty.Client
}

type ClientOptions struct {
	BaseUrl   string
	Timeout   time.Duration
	UserAgent string
	// wraps the transport with a TLS/header profile that passes cloudflare's bot checks
	CloudflareBypass bool
	// when set, every http exchange is dumped to it
	InstrumentOutput restyutil.InstrumentOutput
}

// never follow the redirect of a form submission, the redirect status
// itself is what tells us the login went through.
var noPostRedirect = resty.RedirectPolicyFunc(func(_ *http.Request, via []*http.Request) error {
	if len(via) > 0 && via[0].Method == http.MethodPost {
		return http.ErrUseLastResponse
	}
	return nil
})

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseUrl)
	}

	client := resty.New()
	client.SetBaseURL(baseUrl.String())
	// cookies are carried explicitly in the Cookie header, a jar would add
	// a second copy of them.
	client.SetCookieJar(nil)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(
		noPostRedirect,
		resty.FlexibleRedirectPolicy(maxRedirects),
		resty.DomainCheckRedirectPolicy(baseUrl.Hostname()),
	)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	restyutil.InstrumentClient(client, otel.Tracer("scrapers/appcast/http"), opts.InstrumentOutput)

	return &Client{
		BaseUrl: baseUrl,
		http:    client,
	}, nil
}
