package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"gfdeals/api_deals/internal/deals"
	"gfdeals/api_deals/internal/fetch"
	"gfdeals/api_deals/internal/queries"
	"gfdeals/api_deals/internal/sink"
	"gfdeals/pkg/logging"
)

var (
	// ErrNoResults means no candidate survived the real-deal filter.
	ErrNoResults = errors.New("no results found, check your API keys or service availability")
	// ErrRunInProgress rejects a run while another one is active.
	ErrRunInProgress = errors.New("a pipeline run is already in progress")
)

const DefaultWorkers = 3

// Channel binds a search fetcher to the half of the query set it serves.
type Channel struct {
	Name    string
	Fetcher fetch.Fetcher
	Queries func(queries.Set) []string
}

// SerpAPIQueries selects channel A of a query set.
func SerpAPIQueries(s queries.Set) []string { return s.SerpAPI }

// TavilyQueries selects channel B of a query set.
func TavilyQueries(s queries.Set) []string { return s.Tavily }

type Options struct {
	Workers int
	// Jitter is waited after each query before its worker slot frees up.
	Jitter fetch.Delay
	// Preflight runs before any network call, e.g. credential validation.
	Preflight func() error
}

// Report describes one completed run.
type Report struct {
	RunID         string       `json:"run_id"`
	GeneratedAt   time.Time    `json:"generated_at"`
	Queries       queries.Set  `json:"queries"`
	RawCandidates int          `json:"raw_candidates"`
	RealDeals     int          `json:"real_deals"`
	HighQuality   int          `json:"high_quality"`
	Validated     int          `json:"validated"`
	Persisted     sink.Result  `json:"persisted"`
	Deals         []deals.Deal `json:"deals"`
	LoadError     error        `json:"-"`
	PersistError  error        `json:"-"`
}

// Runner executes the deal pipeline. Only one run is active at a time.
type Runner struct {
	opts     Options
	catalog  *deals.Catalog
	source   queries.Source
	channels []Channel
	store    sink.Sink
	metrics  *Metrics
	logger   logging.Logger

	filter     *deals.Filter
	classifier *deals.Classifier
	extractor  *deals.Extractor
	validator  *deals.Validator
	enricher   *deals.Enricher

	running sync.Mutex
}

func NewRunner(opts Options, cat *deals.Catalog, source queries.Source, channels []Channel, store sink.Sink, metrics *Metrics, logger logging.Logger) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Runner{
		opts:       opts,
		catalog:    cat,
		source:     source,
		channels:   channels,
		store:      store,
		metrics:    metrics,
		logger:     logger,
		filter:     deals.NewFilter(cat),
		classifier: deals.NewClassifier(cat),
		extractor:  deals.NewExtractor(cat),
		validator:  deals.NewValidator(cat),
		enricher:   deals.NewEnricher(cat),
	}
}

// Run generates queries, fetches every channel, scores and enriches the
// candidates, then merges them into the sink. Sink failures do not fail the
// run; they are reported on the Report.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	if r.opts.Preflight != nil {
		if err := r.opts.Preflight(); err != nil {
			r.metrics.run("config_error", time.Since(start).Seconds())
			return Report{}, err
		}
	}
	if !r.running.TryLock() {
		r.metrics.run("busy", 0)
		return Report{}, ErrRunInProgress
	}
	defer r.running.Unlock()

	report := Report{RunID: uuid.NewString(), GeneratedAt: r.catalog.Now().UTC()}
	log := r.logger.WithField("run_id", report.RunID)

	err := r.run(ctx, log, &report)
	outcome := "success"
	switch {
	case errors.Is(err, ErrNoResults):
		outcome = "no_results"
	case err != nil:
		outcome = "failed"
	}
	r.metrics.run(outcome, time.Since(start).Seconds())
	if err != nil {
		log.WithError(err).Warn("Pipeline run failed")
		return Report{}, err
	}
	log.WithFields(logging.Fields{
		"raw":       report.RawCandidates,
		"real":      report.RealDeals,
		"quality":   report.HighQuality,
		"validated": report.Validated,
		"total":     len(report.Deals),
		"duration":  time.Since(start).String(),
	}).Info("Pipeline run complete")
	return report, nil
}

func (r *Runner) run(ctx context.Context, log *logrus.Entry, report *Report) error {
	set, err := r.source.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generate queries: %w", err)
	}
	report.Queries = set
	log.WithFields(logging.Fields{
		"serpapi_queries": len(set.SerpAPI),
		"tavily_queries":  len(set.Tavily),
		"fallback":        set.Fallback,
	}).Info("Query set ready")

	var raw []deals.Candidate
	for _, ch := range r.channels {
		raw = append(raw, r.fetchChannel(ctx, log, ch, ch.Queries(set))...)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	report.RawCandidates = len(raw)
	r.metrics.stage("raw", len(raw))

	var genuine []deals.Candidate
	for _, c := range raw {
		if r.filter.IsRealDeal(c) {
			genuine = append(genuine, c)
		}
	}
	report.RealDeals = len(genuine)
	r.metrics.stage("real", len(genuine))
	if len(genuine) == 0 {
		return ErrNoResults
	}

	var extracted []deals.Deal
	for _, c := range genuine {
		if !r.classifier.IsHighQualityDeal(c) {
			continue
		}
		extracted = append(extracted, deals.NewDeal(c, r.extractor.ExtractDetails(c)))
	}
	report.HighQuality = len(extracted)
	r.metrics.stage("quality", len(extracted))

	validated := r.validator.Validate(extracted)
	report.Validated = len(validated)
	r.metrics.stage("validated", len(validated))

	r.save(ctx, log, report, r.enricher.EnrichAll(validated))
	return nil
}

// save merges incoming into the stored collection. When the stored
// collection cannot be read it is left untouched and the incoming deals are
// reported on their own.
func (r *Runner) save(ctx context.Context, log *logrus.Entry, report *Report, incoming []deals.Deal) {
	if r.store == nil {
		report.Deals = deals.Merge(nil, incoming)
		return
	}
	existing, err := r.store.Load(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load stored deals, skipping persist")
		report.Deals = deals.Merge(nil, incoming)
		report.LoadError = err
		report.PersistError = fmt.Errorf("persist skipped: %w", err)
		return
	}

	report.Deals = deals.Merge(existing, incoming)
	res, err := r.store.Persist(ctx, report.Deals)
	if err != nil {
		log.WithError(err).Error("Failed to persist deals")
		report.PersistError = err
		return
	}
	report.Persisted = res
	r.metrics.persisted(res.Inserted)
	log.WithFields(logging.Fields{
		"existing": len(existing),
		"new":      len(incoming),
		"deleted":  res.Deleted,
		"inserted": res.Inserted,
	}).Info("Deals persisted")
}

// fetchChannel runs qs through a bounded worker pool. Each worker holds its
// slot through the post-query jitter. Results are collected in completion
// order.
func (r *Runner) fetchChannel(ctx context.Context, log *logrus.Entry, ch Channel, qs []string) []deals.Candidate {
	var (
		mu  sync.Mutex
		out []deals.Candidate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for _, q := range qs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			found := ch.Fetcher.Fetch(gctx, q)
			r.metrics.fetched(ch.Name, len(found))
			mu.Lock()
			out = append(out, found...)
			mu.Unlock()
			_ = r.opts.Jitter.Wait(gctx)
			return nil
		})
	}
	_ = g.Wait()

	log.WithFields(logging.Fields{
		"channel":    ch.Name,
		"queries":    len(qs),
		"candidates": len(out),
	}).Info("Channel fetch complete")
	return out
}
