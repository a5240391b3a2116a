package domain

import "context"

type ReplaceStoreCitiesRequest struct {
	Stores []StoreCityInput `json:"stores" validate:"required,min=1"`
}

type StoreCityInput struct {
	StoreID  string `json:"store_id" validate:"required,min=1"`
	CityName string `json:"city_name" validate:"required,min=1"`
}

type ReplaceCategoryRefsRequest struct {
	Categories []CategoryRefInput `json:"categories" validate:"required,min=1"`
}

type CategoryRefInput struct {
	L1CategoryID int64  `json:"l1_category_id" validate:"required"`
	L2CategoryID int64  `json:"l2_category_id" validate:"required"`
	L1Category   string `json:"l1_category" validate:"required,min=1"`
	L2Category   string `json:"l2_category" validate:"required,min=1"`
}

// Service replaces reference mappings wholesale; partial updates are not
// supported since the enrichment join always reads the full set.
type Service interface {
	ReplaceStoreCities(ctx context.Context, req ReplaceStoreCitiesRequest) (int, error)
	ReplaceCategoryRefs(ctx context.Context, req ReplaceCategoryRefsRequest) (int, error)
	StoreCityIndex(ctx context.Context) (map[string]string, error)
	CategoryIndex(ctx context.Context) (map[CategoryKey]CategoryRef, error)
}

// CategoryKey identifies an (l1, l2) category pair in the enrichment join.
type CategoryKey struct {
	L1 int64
	L2 int64
}
