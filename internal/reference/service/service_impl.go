package service

import (
	"context"
	"strings"

	"github.com/shelfpulselabs/shelfpulse/internal/clock"
	referencedomain "github.com/shelfpulselabs/shelfpulse/internal/reference/domain"
	"github.com/shelfpulselabs/shelfpulse/internal/reference/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  referencedomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

func NewService(p ServiceParam) referencedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("reference.service"),
		clock: p.Clock,
		repo:  repository.Provide(),
	}
}

func (s *Service) ReplaceStoreCities(ctx context.Context, req referencedomain.ReplaceStoreCitiesRequest) (int, error) {
	now := s.clock.Now(ctx)
	rows := make([]referencedomain.StoreCity, 0, len(req.Stores))
	for _, in := range req.Stores {
		storeID := strings.TrimSpace(in.StoreID)
		city := strings.TrimSpace(in.CityName)
		if storeID == "" {
			return 0, referencedomain.ErrEmptyStoreID
		}
		if city == "" {
			return 0, referencedomain.ErrEmptyCityName
		}
		rows = append(rows, referencedomain.StoreCity{
			StoreID:   storeID,
			CityName:  city,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.repo.ReplaceStoreCities(ctx, s.db, rows); err != nil {
		return 0, err
	}
	s.log.Info("replaced store city mapping", zap.Int("rows", len(rows)))
	return len(rows), nil
}

func (s *Service) ReplaceCategoryRefs(ctx context.Context, req referencedomain.ReplaceCategoryRefsRequest) (int, error) {
	now := s.clock.Now(ctx)
	rows := make([]referencedomain.CategoryRef, 0, len(req.Categories))
	for _, in := range req.Categories {
		l1 := strings.TrimSpace(in.L1Category)
		l2 := strings.TrimSpace(in.L2Category)
		if l1 == "" || l2 == "" {
			return 0, referencedomain.ErrEmptyCategory
		}
		rows = append(rows, referencedomain.CategoryRef{
			L1CategoryID: in.L1CategoryID,
			L2CategoryID: in.L2CategoryID,
			L1Category:   l1,
			L2Category:   l2,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	if err := s.repo.ReplaceCategoryRefs(ctx, s.db, rows); err != nil {
		return 0, err
	}
	s.log.Info("replaced category mapping", zap.Int("rows", len(rows)))
	return len(rows), nil
}

func (s *Service) StoreCityIndex(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.ListStoreCities(ctx, s.db)
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(rows))
	for _, row := range rows {
		index[row.StoreID] = row.CityName
	}
	return index, nil
}

func (s *Service) CategoryIndex(ctx context.Context) (map[referencedomain.CategoryKey]referencedomain.CategoryRef, error) {
	rows, err := s.repo.ListCategoryRefs(ctx, s.db)
	if err != nil {
		return nil, err
	}
	index := make(map[referencedomain.CategoryKey]referencedomain.CategoryRef, len(rows))
	for _, row := range rows {
		index[referencedomain.CategoryKey{L1: row.L1CategoryID, L2: row.L2CategoryID}] = row
	}
	return index, nil
}
