package sync

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"WooFeedSync/internal/feed"
	"WooFeedSync/pkg/logging"
)

var categoryPause = 100 * time.Millisecond

type CategoryReport struct {
	Created  int
	Existing int
	Errors   int
}

// CreateAllCategories makes sure every term of the rule table exists: top
// level terms first, then children under their parent. Resolved ids are
// written back to woo_cat_id.
func (s *Service) CreateAllCategories(ctx context.Context, sheet *feed.Sheet) (*CategoryReport, error) {
	logger := logging.GetLogger()
	logger.Info("Start CreateAllCategories")
	defer logger.Info("End CreateAllCategories")

	prev, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer s.release(prev)

	report := &CategoryReport{}
	c := s.Resolver.Cache()
	if err := c.RefreshCategories(); err != nil {
		return nil, errors.Wrap(err, "failed in load categories")
	}
	sheet.EnsureColumn(feed.ColWooCatID)

	// top level ids resolved in this run, by lowercased name
	parents := map[string]int{}

	for _, children := range []bool{false, true} {
		for _, rec := range sheet.Records() {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			name := rec.Value(feed.ColTermName)
			parentName := rec.Value(feed.ColParentName)
			if name == "" || (parentName != "") != children {
				continue
			}

			if id, ok := rec.Int(feed.ColWooCatID); ok && id > 0 {
				report.Existing++
				if !children {
					parents[strings.ToLower(name)] = id
				}
				continue
			}

			parent := 0
			if children {
				parent = parents[strings.ToLower(parentName)]
				if parent == 0 {
					if ref, err := c.GetCategory(parentName, 0); err == nil && ref != nil {
						parent = ref.ID
					}
				}
				if parent == 0 {
					logger.Errorf("line %d: parent %q not found for %q", rec.Line(), parentName, name)
					report.Errors++
					continue
				}
			}

			ref, err := c.GetCategory(name, parent)
			if err != nil {
				logger.Errorf("line %d: %v", rec.Line(), err)
				report.Errors++
				continue
			}
			id := 0
			if ref != nil {
				id = ref.ID
				report.Existing++
			} else {
				var created bool
				if id, created, err = s.Resolver.FindOrCreateCategory(name, parent); err != nil {
					logger.Errorf("line %d: %v", rec.Line(), err)
					report.Errors++
					continue
				}
				if created {
					report.Created++
				} else {
					report.Existing++
				}
				s.sleep(ctx, categoryPause)
			}

			rec.Set(feed.ColWooCatID, id)
			if !children {
				parents[strings.ToLower(name)] = id
			}
		}
	}

	logger.Infof("categories: %d created, %d existing, %d errors", report.Created, report.Existing, report.Errors)
	if err := sheet.Save(); err != nil {
		return report, errors.Wrap(err, "failed in sheet save")
	}
	return report, nil
}

func (s *Service) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
