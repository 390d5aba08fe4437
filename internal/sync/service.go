package sync

import (
	"fmt"
	gosync "sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"WooFeedSync/internal/cache"
	"WooFeedSync/internal/config"
	"WooFeedSync/internal/database"
	"WooFeedSync/internal/feed"
	"WooFeedSync/internal/images"
	"WooFeedSync/internal/rules"
	"WooFeedSync/internal/taxonomy"
	"WooFeedSync/internal/telegram"
	"WooFeedSync/internal/variants"
	"WooFeedSync/internal/wooapi"
	"WooFeedSync/internal/wooapi/models"
	wp_api "WooFeedSync/internal/wp-api"
	"WooFeedSync/pkg/logging"
)

type State string

const (
	StateIdle      State = "Idle"
	StateRunning   State = "Running"
	StateCompleted State = "Completed"
	StateCancelled State = "Cancelled"
)

// Row statuses written to sync_status.
const (
	StatusOK    = "ok"
	StatusSkip  = "skip"
	StatusError = "error"
)

var ErrAlreadyRunning = errors.New("sync already running")

// StopFlag is the externally settable cancellation request.
type StopFlag interface {
	Clear() error
	IsSet() (bool, error)
}

// Catalog is the part of the WooCommerce API a sync writes through.
type Catalog interface {
	Upsert(p *models.Product, knownID int, sku string) (*wooapi.UpsertResult, error)
	variants.Replacer
}

type Deps struct {
	Woo      Catalog
	Resolver *taxonomy.Resolver
	// Images is nil when image upload is disabled.
	Images   *images.Importer
	Stop     StopFlag
	DB       *sqlx.DB
	Reporter *telegram.Reporter
}

type Options struct {
	RowDelay   time.Duration
	MetaPrefix string
	// SaveEvery flushes write-backs to the workbook every n rows.
	SaveEvery int
	Now       func() time.Time
}

// Service runs one sync at a time against a feed sheet.
type Service struct {
	Deps
	opts Options

	mu    gosync.Mutex
	state State
	last  *Report
}

func NewService(d Deps, o Options) *Service {
	if o.SaveEvery <= 0 {
		o.SaveEvery = 10
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &Service{Deps: d, opts: o, state: StateIdle}
}

// NewFromConfig wires the remote APIs, the session caches over the workbook's
// rule sheet, the image importer and the persisted stop flag.
func NewFromConfig(cfg *config.Config, wb *feed.Workbook, db *sqlx.DB) (*Service, error) {
	logger := logging.GetLogger()
	logger.Debug("NewFromConfig:>Start")
	defer logger.Debug("NewFromConfig:>End")

	woo := wooapi.NewFromConfig(cfg)
	wp := wp_api.NewFromConfig(cfg)
	brands := taxonomy.BrandTaxonomies(wp)

	tx := cache.NewTaxonomy(cache.Loaders{
		Categories: taxonomy.CategoryLoader(woo),
		Brands:     taxonomy.BrandLoader(brands),
		Rules:      RulesLoader(wb, cfg.SYNC.RulesSheet),
	})

	var importer *images.Importer
	if cfg.SYNC.UploadImages != 0 {
		importer = images.NewImporter(wp, cfg.SYNC.MaxImages, nil)
	}

	reporter, err := telegram.NewFromConfig(cfg)
	if err != nil {
		logger.Warnf("telegram reports disabled: %v", err)
	}

	return NewService(Deps{
		Woo:      woo,
		Resolver: taxonomy.NewResolver(tx, woo, brands, cfg.SYNC.DefaultCategory),
		Images:   importer,
		Stop:     database.NewStopFlag(db),
		DB:       db,
		Reporter: reporter,
	}, Options{
		RowDelay:   time.Duration(cfg.SYNC.RowDelay) * time.Millisecond,
		MetaPrefix: cfg.SYNC.MetaPrefix,
	}), nil
}

// RulesLoader reads the rule table from the workbook on every load.
func RulesLoader(wb *feed.Workbook, sheet string) func() ([]rules.Rule, error) {
	return func() ([]rules.Rule, error) {
		s, err := wb.Sheet(sheet)
		if err != nil {
			return nil, errors.Wrapf(err, "failed in rules sheet %s", sheet)
		}
		return rules.FromTable(s.Table), nil
	}
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastReport is the report of the latest finished run, nil before the first.
func (s *Service) LastReport() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// begin marks the service running and returns the state it replaced.
func (s *Service) begin() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	if prev == StateRunning {
		return prev, ErrAlreadyRunning
	}
	s.state = StateRunning
	return prev, nil
}

// release ends a non-sync job without touching the last report.
func (s *Service) release(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Service) end(r *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = r.State
	s.last = r
}

// Report summarizes one run.
type Report struct {
	ID        string
	State     State
	Rows      int
	Created   int
	Updated   int
	Skipped   int
	Errors    int
	StartedAt time.Time
	Elapsed   time.Duration
}

func (r *Report) String() string {
	return fmt.Sprintf("%s: %d rows, %d created, %d updated, %d skipped, %d errors in %s",
		r.State, r.Rows, r.Created, r.Updated, r.Skipped, r.Errors, r.Elapsed.Round(time.Second))
}

// RefreshCategories reloads categories and the rule table.
func (s *Service) RefreshCategories() (categories, ruleCount int, err error) {
	c := s.Resolver.Cache()
	if err = c.RefreshCategories(); err != nil {
		return 0, 0, err
	}
	if err = c.RefreshRules(); err != nil {
		return 0, 0, err
	}
	list, _ := c.GetCategories()
	rs, _ := c.GetRules()
	return len(list), len(rs), nil
}

func (s *Service) RefreshBrands() (int, error) {
	c := s.Resolver.Cache()
	if err := c.RefreshBrands(); err != nil {
		return 0, err
	}
	list, err := c.GetBrands()
	return len(list), err
}
