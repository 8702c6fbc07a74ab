package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/workguide/guide-server/internal/domain"
	"github.com/workguide/guide-server/internal/id"
	"github.com/workguide/guide-server/internal/store"
)

// VisitService records guide views and folds them into per-guide reports.
type VisitService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewVisitService creates a new visit service.
func NewVisitService(store *store.Store, logger *slog.Logger) *VisitService {
	return &VisitService{store: store, logger: logger}
}

// RecordVisit stores one view of a guide by a user, copying the user's name
// and email and the guide's title into the record, and bumps the account's
// visit counter.
func (s *VisitService) RecordVisit(ctx context.Context, guideID, userID string) (*domain.VisitRecord, error) {
	g, err := s.store.GetGuide(ctx, guideID)
	if err != nil {
		return nil, translate(err, "guide %s not found", guideID)
	}
	account, err := s.store.Accounts.Get(ctx, userID)
	if err != nil {
		return nil, translate(err, "account %s not found", userID)
	}

	visitID, err := id.Generate(id.Visit)
	if err != nil {
		return nil, err
	}
	v := &domain.VisitRecord{
		ID:               visitID,
		GuideID:          g.ID,
		UserID:           account.ID,
		Timestamp:        time.Now(),
		CachedUserName:   account.Name,
		CachedUserEmail:  account.Email,
		CachedGuideTitle: g.Title,
	}
	if err := s.store.Visits.Create(ctx, v.ID, v); err != nil {
		return nil, translate(err, "record visit of %s", guideID)
	}

	// The counter is a convenience; the visit row is the record of truth.
	_, err = s.store.Accounts.Mutate(ctx, account.ID, func(a *domain.Account) error {
		a.TotalVisits++
		a.UpdatedAt = v.Timestamp
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to bump account visit count", "account_id", account.ID, "error", err)
	}

	return v, nil
}

// StatsByGuide groups every visit by guide. Every existing guide appears,
// unvisited ones with a zero count; visits of deleted guides are left out.
// Results are ordered by visit count, busiest first, then by title.
func (s *VisitService) StatsByGuide(ctx context.Context) ([]*domain.GuideVisitStats, error) {
	guides, err := s.store.ListGuides(ctx)
	if err != nil {
		return nil, translate(err, "list guides")
	}
	visits, err := s.store.Visits.All(ctx)
	if err != nil {
		return nil, translate(err, "list visits")
	}

	byGuide := make(map[string][]*domain.VisitRecord, len(guides))
	for _, v := range visits {
		byGuide[v.GuideID] = append(byGuide[v.GuideID], v)
	}

	sortGuidesByTitle(guides)

	stats := make([]*domain.GuideVisitStats, 0, len(guides))
	for _, g := range guides {
		gv := byGuide[g.ID]
		sort.Slice(gv, func(i, j int) bool {
			return gv[i].Timestamp.After(gv[j].Timestamp)
		})

		entry := &domain.GuideVisitStats{
			Guide:      g,
			Visits:     gv,
			VisitCount: len(gv),
		}
		if entry.Visits == nil {
			entry.Visits = []*domain.VisitRecord{}
		}
		if len(gv) > 0 {
			last := gv[0].Timestamp
			entry.LastVisit = &last
		}

		users := make(map[string]struct{}, len(gv))
		for _, v := range gv {
			users[v.UserID] = struct{}{}
		}
		entry.UniqueUserCount = len(users)

		stats = append(stats, entry)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].VisitCount > stats[j].VisitCount
	})
	return stats, nil
}
