package ycauth

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"waas-extractor/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/ycauth")

// Session is the authenticated context for the job portal: a merged cookie
// header and the portal page's csrf token. It is read-only once acquired and
// is never refreshed within a run.
type Session struct {
	Cookies   string
	CsrfToken string
}

type ClientOptions struct {
	// defaults to the YC account service
	AccountBaseUrl string
	// defaults to the Work at a Startup portal
	PortalBaseUrl string
	Username      string
	Password      string
}

type Client struct {
	http *resty.Client
	opts ClientOptions
}

func NewClient(opts ClientOptions) *Client {
	if opts.AccountBaseUrl == "" {
		opts.AccountBaseUrl = "https://account.ycombinator.com"
	}
	if opts.PortalBaseUrl == "" {
		opts.PortalBaseUrl = "https://www.workatastartup.com"
	}

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetTimeout(time.Second * 30)
	// cookies are merged by hand across the login steps, redirects must not
	// be followed so the sign-in 302 stays observable
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}))

	telemetry.InstrumentResty(client, "scrapers/ycauth/http")

	return &Client{http: client, opts: opts}
}

func csrfToken(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return doc.Find(`meta[name="csrf-token"]`).AttrOr("content", "")
}

// one value per cookie name, later responses win, insertion order is kept so
// the header stays stable
type cookieSet struct {
	order  []string
	values map[string]string
}

func newCookieSet() *cookieSet {
	return &cookieSet{values: map[string]string{}}
}

func (s *cookieSet) add(cookies []*http.Cookie) {
	for _, c := range cookies {
		_, seen := s.values[c.Name]
		if !seen {
			s.order = append(s.order, c.Name)
		}
		s.values[c.Name] = c.Value
	}
}

func (s *cookieSet) header() string {
	pairs := make([]string, len(s.order))
	for i, name := range s.order {
		pairs[i] = fmt.Sprintf("%s=%s", name, s.values[name])
	}
	return strings.Join(pairs, "; ")
}

// AcquireSession runs the multi-step credential login: fetch the account
// login page for its csrf token, post the credentials, then visit the portal
// landing page with the accumulated cookies to pick up the portal session and
// csrf token. Any failed step aborts with an *AuthError.
func (c *Client) AcquireSession(ctx context.Context) (Session, error) {
	ctx, span := tracer.Start(ctx, "client:AcquireSession")
	defer span.End()

	cookies := newCookieSet()
	continueUrl := c.opts.PortalBaseUrl + "/"

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.opts.AccountBaseUrl + "/?continue=" + url.QueryEscape(continueUrl))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return Session{}, &AuthError{Step: "login page", Err: err}
	}
	token := csrfToken(res.Body())
	if token == "" {
		span.SetStatus(codes.Error, ErrMissingCsrfToken.Error())
		return Session{}, &AuthError{Step: "login page", Err: ErrMissingCsrfToken}
	}
	cookies.add(res.Cookies())

	res, err = c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetHeader("x-csrf-token", token).
		SetHeader("cookie", cookies.header()).
		SetBody(map[string]string{
			"username":          c.opts.Username,
			"password":          c.opts.Password,
			"captcha":           "",
			"one_time_password": "",
			"continue":          continueUrl,
		}).
		Post(c.opts.AccountBaseUrl + "/sign_in")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make sign in request")
		return Session{}, &AuthError{Step: "sign in", Err: err}
	}
	// the account service answers a successful login with a 302 to the
	// continue url, anything >= 400 means rejected credentials
	if res.StatusCode() >= http.StatusBadRequest {
		span.SetStatus(codes.Error, ErrLoginRejected.Error())
		return Session{}, &AuthError{
			Step: "sign in",
			Err:  fmt.Errorf("%w: status %s", ErrLoginRejected, res.Status()),
		}
	}
	cookies.add(res.Cookies())

	res, err = c.http.R().
		SetContext(ctx).
		SetHeader("cookie", cookies.header()).
		Get(c.opts.PortalBaseUrl + "/companies")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch portal landing page")
		return Session{}, &AuthError{Step: "portal landing", Err: err}
	}
	// the portal token is tolerated missing, some pages render without it
	portalToken := csrfToken(res.Body())
	cookies.add(res.Cookies())

	slog.InfoContext(ctx, "acquired portal session", "cookies", len(cookies.order))
	return Session{Cookies: cookies.header(), CsrfToken: portalToken}, nil
}
