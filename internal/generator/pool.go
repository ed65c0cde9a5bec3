package generator

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// renderConcurrently renders one locale batch per pool task. Pages inside a
// batch render in order.
func (s *service) renderConcurrently(
	ctx context.Context,
	buildCtx *BuildContext,
	workers int,
	manifest *buildManifest,
	collect func(renderOutcome),
) error {
	grouped := groupPagesByLocale(buildCtx.Pages)
	if len(grouped) == 0 {
		return nil
	}

	pool, err := ants.NewPool(workers,
		ants.WithPanicHandler(func(p any) {
			s.logger.Error("generator.worker_panic", "panic", p)
		}),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return fmt.Errorf("generator: create render pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, locale := range buildCtx.Locales {
		batch := grouped[locale]
		if len(batch) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			for _, page := range batch {
				collect(s.renderPageSafe(ctx, buildCtx, page, manifest))
			}
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("generator: submit render batch %s: %w", locale, submitErr)
		}
	}
	wg.Wait()
	return nil
}

// renderPageSafe turns a panicking template into a page error so one broken
// page cannot take the batch down.
func (s *service) renderPageSafe(
	ctx context.Context,
	buildCtx *BuildContext,
	page *PageData,
	manifest *buildManifest,
) (outcome renderOutcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("generator: render %s/%s panicked: %v", page.Locale, page.Route.Name, r)
			outcome = renderOutcome{
				diagnostic: RenderDiagnostic{
					PageID:   page.ID.String(),
					Locale:   page.Locale,
					Route:    page.Route.Name,
					Template: page.Context.Template,
					Err:      err,
				},
				err: err,
			}
		}
	}()
	return s.renderPage(ctx, buildCtx, page, manifest)
}

func (s *service) effectiveWorkerCount(localeCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if localeCount > 0 && workers > localeCount {
		return localeCount
	}
	return workers
}

func groupPagesByLocale(pages []*PageData) map[string][]*PageData {
	grouped := make(map[string][]*PageData, len(pages))
	for _, page := range pages {
		if page == nil {
			continue
		}
		grouped[page.Locale] = append(grouped[page.Locale], page)
	}
	return grouped
}
