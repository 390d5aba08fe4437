package sync

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"WooFeedSync/internal/database/model/syncrun"
	"WooFeedSync/internal/feed"
	"WooFeedSync/internal/transform"
	"WooFeedSync/internal/variants"
	"WooFeedSync/internal/wooapi"
	"WooFeedSync/internal/wooapi/models"
	"WooFeedSync/pkg/logging"
)

// Selection bounds a run to sheet lines From..To (1-based, header is line 1).
// Zero means unbounded on that side.
type Selection struct {
	From int
	To   int
}

func (sel Selection) bounds(n int) (first, last int) {
	first, last = 0, n-1
	if sel.From > 2 {
		first = sel.From - 2
	}
	if sel.To > 0 && sel.To-2 < last {
		last = sel.To - 2
	}
	return first, last
}

type rowResult struct {
	status   string
	action   wooapi.Action
	id       int
	category string
	log      string
	// write is false for rows that must stay untouched.
	write bool
}

// Run reconciles the selected rows of sheet with the catalog, one row at a
// time. It stops between rows when ctx is done or the stop flag is set.
func (s *Service) Run(ctx context.Context, sheet *feed.Sheet, sel Selection) (*Report, error) {
	if _, err := s.begin(); err != nil {
		return nil, err
	}
	return s.run(ctx, sheet, sel)
}

// Start is Run in the background. It fails at once when a run is in progress.
func (s *Service) Start(ctx context.Context, sheet *feed.Sheet, sel Selection) error {
	if _, err := s.begin(); err != nil {
		return err
	}
	go func() {
		if _, err := s.run(ctx, sheet, sel); err != nil {
			logging.GetLogger().Error(err)
		}
	}()
	return nil
}

func (s *Service) run(ctx context.Context, sheet *feed.Sheet, sel Selection) (*Report, error) {
	logger := logging.GetLogger().GetLoggerWithField("sheet", sheet.Name())
	logger.Info("Start Sync")
	defer logger.Info("End Sync")

	report := &Report{State: StateCompleted, StartedAt: s.opts.Now()}
	defer func() {
		report.Elapsed = s.opts.Now().Sub(report.StartedAt)
		s.end(report)
	}()

	if err := s.Stop.Clear(); err != nil {
		logger.Warnf("failed in clear stop flag: %v", err)
	}
	for _, col := range []string{feed.ColID, feed.ColSyncStatus, feed.ColSyncLog, feed.ColSyncTimestamp, feed.ColCategories} {
		sheet.EnsureColumn(col)
	}
	// Categories, brands and rules may have changed since the last run.
	tx := s.Resolver.Cache()
	tx.InvalidateCategories()
	tx.InvalidateBrands()
	tx.InvalidateRules()
	if err := tx.Warm(); err != nil {
		logger.Warnf("failed in cache warm: %v", err)
	}

	var run *syncrun.SyncRun
	if s.DB != nil {
		var err error
		if run, err = syncrun.Start(s.DB, sheet.Name(), report.StartedAt); err != nil {
			logger.Error(err)
		} else {
			report.ID = run.ID
		}
	}

	first, last := sel.bounds(sheet.Len())
	for i := first; i <= last; i++ {
		if s.cancelled(ctx) {
			logger.Infof("stop requested, %d rows left", last-i+1)
			report.State = StateCancelled
			break
		}

		rec := sheet.Record(i)
		res := s.processRow(rec)
		report.Rows++
		s.count(report, res)
		if res.write {
			s.writeBack(rec, res)
		}

		if report.Rows%s.opts.SaveEvery == 0 {
			if err := sheet.Save(); err != nil {
				logger.Errorf("failed in sheet save: %v", err)
			}
		}
		if i < last {
			s.sleep(ctx, s.opts.RowDelay)
		}
	}

	saveErr := sheet.Save()
	report.Elapsed = s.opts.Now().Sub(report.StartedAt)
	logger.Info(report.String())

	if run != nil {
		run.State = string(report.State)
		run.Processed, run.Created, run.Updated = report.Rows, report.Created, report.Updated
		run.Skipped, run.Errors = report.Skipped, report.Errors
		if err := run.Finish(s.DB, s.opts.Now()); err != nil {
			logger.Error(err)
		}
	}
	s.Reporter.SendMessageWithLogError(fmt.Sprintf("Feed sync %s", report.String()))

	if saveErr != nil {
		return report, errors.Wrap(saveErr, "failed in sheet save")
	}
	return report, nil
}

func (s *Service) cancelled(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	set, err := s.Stop.IsSet()
	if err != nil {
		logging.GetLogger().Warnf("failed in read stop flag: %v", err)
		return false
	}
	return set
}

func (s *Service) count(r *Report, res rowResult) {
	switch res.status {
	case StatusSkip:
		r.Skipped++
	case StatusError:
		r.Errors++
	case StatusOK:
		if res.action == wooapi.ActionCreate {
			r.Created++
		} else {
			r.Updated++
		}
	}
}

func (s *Service) writeBack(rec *feed.Record, res rowResult) {
	if res.id > 0 {
		rec.Set(feed.ColID, res.id)
	}
	if res.category != "" {
		rec.Set(feed.ColCategories, res.category)
	}
	rec.Set(feed.ColSyncStatus, res.status)
	rec.Set(feed.ColSyncLog, res.log)
	rec.Set(feed.ColSyncTimestamp, s.opts.Now().Format(feed.Timestamp))
}

func failed(err error) rowResult {
	return rowResult{status: StatusError, log: wooapi.ShortErr(err.Error()), write: true}
}

// processRow runs the row pipeline. Errors and panics end the row, never the run.
func (s *Service) processRow(rec *feed.Record) (res rowResult) {
	logger := logging.GetLogger().GetLoggerWithField("line", rec.Line())

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic: %v", r)
			res = failed(errors.Errorf("panic: %v", r))
		}
	}()

	e, skip := transform.Transform(rec, transform.Options{MetaPrefix: s.opts.MetaPrefix, Now: s.opts.Now()})
	if skip != nil {
		logger.Infof("skip: %s", skip.Reason)
		return rowResult{status: StatusSkip, log: skip.Reason, write: skip.Reason != transform.SkipNoSKU}
	}
	logger = logger.GetLoggerWithField("sku", e.SKU)

	category, err := s.Resolver.ResolveCategory(e.Category)
	if err != nil {
		logger.Error(err)
		return failed(err)
	}
	if category != nil {
		e.Payload.Categories = []models.Categories{{Id: category.ID}}
	}

	// Without an importer the remote gallery is left untouched.
	if s.Images != nil {
		e.Payload.Images = []models.ProductImage{}
		for _, m := range s.Images.Import(e.Images, e.SKU) {
			e.Payload.Images = append(e.Payload.Images, models.ProductImage{Id: m.ID})
		}
	}

	up, err := s.Woo.Upsert(e.Payload, e.KnownID, e.SKU)
	if err != nil {
		logger.Error(err)
		return failed(err)
	}
	if up.Action == wooapi.ActionError {
		logger.Errorf("upsert: %s", up.Detail)
		return rowResult{status: StatusError, log: up.Detail, write: true}
	}
	id := up.Product.ID

	if e.Brand != "" {
		if brandID, err := s.Resolver.EnsureBrand(e.Brand); err != nil {
			logger.Warnf("brand: %v", err)
		} else if err := s.Resolver.AssignBrand(id, brandID); err != nil {
			logger.Warnf("brand assign: %v", err)
		}
	}

	log := fmt.Sprintf("%s #%d", up.Action, id)
	if e.Variable {
		if e.VariantsErr != nil {
			logger.Warnf("variants not replaced: %v", e.VariantsErr)
		}
		n, err := variants.Sync(s.Woo, id, e.SKU, e.Variants, e.Payload.Attributes, s.opts.MetaPrefix)
		if err != nil {
			logger.Warnf("variants: %v", err)
		}
		log = fmt.Sprintf("%s (%dv)", log, n)
	}

	res = rowResult{status: StatusOK, action: up.Action, id: id, log: log, write: true}
	if category != nil {
		res.category = category.Name
	}
	logger.Info(log)
	return res
}
