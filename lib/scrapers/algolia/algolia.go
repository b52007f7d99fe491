package algolia

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"waas-extractor/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/algolia")

// DiscoveryError wraps any failure while querying the hosted search index.
type DiscoveryError struct {
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery: %s", e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// the portal's public job index
const defaultIndex = "WaaSPublicCompanyJob"

// companies that sponsor visas or at least consider it
const visaFilter = "visa_sponsorship:none OR visa_sponsorship:possible"

type ClientOptions struct {
	// defaults to https://<app id>-dsn.algolia.net
	BaseUrl string
	AppId   string
	ApiKey  string
	// defaults to the public company/job index
	Index string
}

type Client struct {
	http  *resty.Client
	index string
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = fmt.Sprintf("https://%s-dsn.algolia.net", strings.ToLower(opts.AppId))
	}
	if opts.Index == "" {
		opts.Index = defaultIndex
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(time.Second * 30)
	client.SetHeader("x-algolia-application-id", opts.AppId)
	client.SetHeader("x-algolia-api-key", opts.ApiKey)

	telemetry.InstrumentResty(client, "scrapers/algolia/http")

	return &Client{http: client, index: opts.Index}
}

type queryRequest struct {
	IndexName string `json:"indexName"`
	Params    string `json:"params"`
}

type queriesBody struct {
	Requests []queryRequest `json:"requests"`
}

type hit struct {
	CompanyId int64 `json:"company_id"`
}

type queryResult struct {
	Hits   []hit `json:"hits"`
	NbHits int   `json:"nbHits"`
}

type queriesResponse struct {
	Results []queryResult `json:"results"`
}

// ListCompanyIds queries one page of the search index and returns the company
// id of every hit, in index order. Duplicates across pages are possible and
// are not filtered here.
func (c *Client) ListCompanyIds(ctx context.Context, page, hitsPerPage int) ([]int64, error) {
	ctx, span := tracer.Start(ctx, "client:ListCompanyIds")
	defer span.End()

	params := url.Values{}
	params.Set("query", "")
	params.Set("page", strconv.Itoa(page))
	params.Set("hitsPerPage", strconv.Itoa(hitsPerPage))
	params.Set("filters", visaFilter)
	params.Set("attributesToRetrieve", `["company_id"]`)
	params.Set("attributesToHighlight", "[]")
	params.Set("attributesToSnippet", "[]")
	params.Set("distinct", "true")
	// required by the search service for this index, not meaningful here
	params.Set("clickAnalytics", "true")

	var out queriesResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(queriesBody{
			Requests: []queryRequest{{
				IndexName: c.index,
				Params:    params.Encode(),
			}},
		}).
		SetResult(&out).
		Post("/1/indexes/*/queries")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query search index")
		return nil, &DiscoveryError{Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "search index returned an error status")
		return nil, &DiscoveryError{Err: fmt.Errorf("status %s", res.Status())}
	}

	if len(out.Results) == 0 {
		return nil, nil
	}
	result := out.Results[0]

	ids := make([]int64, len(result.Hits))
	for i, h := range result.Hits {
		ids[i] = h.CompanyId
	}

	slog.DebugContext(
		ctx, "search index page",
		"page", page,
		"hits", len(ids),
		"nb_hits", result.NbHits,
	)
	return ids, nil
}
