package services

import (
	"sync"
	"time"

	"passkey_api_ms/domain"
	"passkey_api_ms/repository"

	"gorm.io/gorm"
)

// featureCacheTTL bounds feature flag staleness; the management service also
// invalidates explicitly on every write.
const featureCacheTTL = 2 * time.Second

type IFeatureService interface {
	GetFeatures(tenant string) (*domain.AppFeature, error)
	// Invalidate drops the cached snapshot for a tenant after an
	// administrative change.
	Invalidate(tenant string)
}

type cachedFeatures struct {
	features *domain.AppFeature
	loadedAt time.Time
}

type FeatureService struct {
	db      *gorm.DB
	appRepo repository.IApplicationRepository

	mu    sync.RWMutex
	cache map[string]cachedFeatures
}

func NewFeatureService(db *gorm.DB, appRepo repository.IApplicationRepository) IFeatureService {
	return &FeatureService{
		db:      db,
		appRepo: appRepo,
		cache:   make(map[string]cachedFeatures),
	}
}

func (s *FeatureService) GetFeatures(tenant string) (*domain.AppFeature, error) {
	s.mu.RLock()
	entry, ok := s.cache[tenant]
	s.mu.RUnlock()
	if ok && time.Since(entry.loadedAt) < featureCacheTTL {
		return entry.features, nil
	}

	features, err := s.appRepo.GetFeatures(s.db, tenant)
	if err == repository.ErrNotFound {
		// Missing row means the tenant was provisioned before feature
		// bookkeeping existed; fall back to the most restrictive defaults.
		features = &domain.AppFeature{Tenant: tenant}
	} else if err != nil {
		return nil, ErrInternal
	}

	s.mu.Lock()
	s.cache[tenant] = cachedFeatures{features: features, loadedAt: time.Now()}
	s.mu.Unlock()
	return features, nil
}

func (s *FeatureService) Invalidate(tenant string) {
	s.mu.Lock()
	delete(s.cache, tenant)
	s.mu.Unlock()
}
