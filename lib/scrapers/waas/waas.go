package waas

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"waas-extractor/lib/scrapers/ycauth"
	"waas-extractor/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/waas")

// FetchError wraps any failure of the portal's batch fetch endpoint.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch: %s", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Company is the portal's company record, as returned by the batch fetch
// endpoint. Most fields are optional in the source, absent is distinct from
// empty, so they are pointers.
type Company struct {
	Id             int64     `json:"id"`
	Name           *string   `json:"name,omitempty"`
	Website        *string   `json:"website,omitempty"`
	WebsiteDisplay *string   `json:"website_display,omitempty"`
	OneLiner       *string   `json:"one_liner,omitempty"`
	TeamSize       *int      `json:"team_size,omitempty"`
	Industry       *string   `json:"industry,omitempty"`
	Country        *string   `json:"country,omitempty"`
	BatchName      *string   `json:"batch_name,omitempty"`
	AllLocations   *string   `json:"all_locations,omitempty"`
	Founders       []Founder `json:"founders,omitempty"`
	Jobs           []Job     `json:"jobs,omitempty"`
}

type Founder struct {
	FullName    *string `json:"full_name,omitempty"`
	Title       *string `json:"title,omitempty"`
	FounderBio  *string `json:"founder_bio,omitempty"`
	AvatarUrl   *string `json:"avatar_thumb_url,omitempty"`
	LinkedinUrl *string `json:"linkedin_url,omitempty"`
	TwitterUrl  *string `json:"twitter_url,omitempty"`
}

type Job struct {
	Id                int64   `json:"id,omitempty"`
	Title             *string `json:"title,omitempty"`
	PrettyExperience  *string `json:"pretty_experience,omitempty"`
	PrettyJobType     *string `json:"pretty_job_type,omitempty"`
	PrettyRole        *string `json:"pretty_role,omitempty"`
	PrettySalaryRange *string `json:"pretty_salary_range,omitempty"`
}

// SessionSource provides the authenticated session for the portal. Satisfied
// by *ycauth.Client.
type SessionSource interface {
	AcquireSession(ctx context.Context) (ycauth.Session, error)
}

type ClientOptions struct {
	// defaults to the Work at a Startup portal
	BaseUrl string
}

type Client struct {
	http    *resty.Client
	auth    SessionSource
	session *ycauth.Session
}

func NewClient(auth SessionSource, opts ClientOptions) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = "https://www.workatastartup.com"
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(time.Second * 30)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")

	telemetry.InstrumentResty(client, "scrapers/waas/http")

	return &Client{http: client, auth: auth}
}

type fetchResponse struct {
	Companies []Company `json:"companies"`
}

// FetchCompanies retrieves the full company records for a batch of ids, in
// the order the server returns them. The session is acquired lazily on the
// first batch and reused for the rest of the run.
func (c *Client) FetchCompanies(ctx context.Context, ids []int64) ([]Company, error) {
	ctx, span := tracer.Start(ctx, "client:FetchCompanies")
	defer span.End()

	if c.session == nil {
		session, err := c.auth.AcquireSession(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to acquire session")
			return nil, err
		}
		c.session = &session
	}

	var out fetchResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetHeader("cookie", c.session.Cookies).
		SetHeader("x-csrf-token", c.session.CsrfToken).
		SetBody(map[string][]int64{"ids": ids}).
		SetResult(&out).
		Post("/companies/fetch_data")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch company batch")
		return nil, &FetchError{Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "batch fetch returned an error status")
		return nil, &FetchError{Err: fmt.Errorf("status %s", res.Status())}
	}

	slog.DebugContext(ctx, "fetched company batch", "ids", len(ids), "companies", len(out.Companies))
	if out.Companies == nil {
		return []Company{}, nil
	}
	return out.Companies, nil
}
