package extractor

import (
	"context"
	"log/slog"
	"time"

	"waas-extractor/lib/scrapers/waas"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/extractor")

// Discovery lists candidate company ids from the search index, one page per
// call. Satisfied by *algolia.Client.
type Discovery interface {
	ListCompanyIds(ctx context.Context, page, hitsPerPage int) ([]int64, error)
}

// Fetcher retrieves full company records for a batch of ids. Satisfied by
// *waas.Client.
type Fetcher interface {
	FetchCompanies(ctx context.Context, ids []int64) ([]waas.Company, error)
}

// the search index caps hitsPerPage at 100
const maxPageSize = 100

// the portal's fetch endpoint is given at most 20 ids per request
const batchSize = 20

type Service struct {
	discovery Discovery
	fetcher   Fetcher

	// delays between consecutive upstream calls, purely to keep the request
	// rate down, never inserted after the last call
	PageDelay  time.Duration
	BatchDelay time.Duration
}

func NewService(discovery Discovery, fetcher Fetcher) *Service {
	return &Service{
		discovery:  discovery,
		fetcher:    fetcher,
		PageDelay:  time.Second,
		BatchDelay: time.Second * 2,
	}
}

// Extract runs one full extraction: paged discovery of up to targetCount
// company ids, batched fetching of their records, then projection into the
// output shape. Strictly sequential, the first failed call aborts the run
// with no partial result.
func (s *Service) Extract(ctx context.Context, targetCount int) ([]waas.CompanyExport, error) {
	ctx, span := tracer.Start(ctx, "service:Extract")
	defer span.End()

	if targetCount <= 0 {
		return []waas.CompanyExport{}, nil
	}

	pageSize := min(targetCount, maxPageSize)
	pageCount := (targetCount + pageSize - 1) / pageSize

	var ids []int64
	for page := 0; page < pageCount && len(ids) < targetCount; page++ {
		if page > 0 {
			err := sleep(ctx, s.PageDelay)
			if err != nil {
				return nil, err
			}
		}

		pageIds, err := s.discovery.ListCompanyIds(ctx, page, pageSize)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "discovery failed")
			return nil, err
		}
		slog.InfoContext(ctx, "discovered companies", "page", page, "count", len(pageIds))
		ids = append(ids, pageIds...)
	}
	if len(ids) > targetCount {
		ids = ids[:targetCount]
	}
	if len(ids) == 0 {
		return []waas.CompanyExport{}, nil
	}

	var companies []waas.Company
	for start := 0; start < len(ids); start += batchSize {
		if start > 0 {
			err := sleep(ctx, s.BatchDelay)
			if err != nil {
				return nil, err
			}
		}

		end := min(start+batchSize, len(ids))
		batch, err := s.fetcher.FetchCompanies(ctx, ids[start:end])
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch fetch failed")
			return nil, err
		}
		slog.InfoContext(ctx, "fetched companies", "batch_start", start, "count", len(batch))
		companies = append(companies, batch...)
	}

	return waas.Export(companies), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
