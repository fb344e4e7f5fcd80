package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const cacheKey = "catalog::muscle-groups"

type catalogRepo interface {
	List(ctx context.Context) ([]MuscleGroup, error)
}

// Service serves the catalog from an in-process cache. Seeding runs in its own
// process, so a reseeded catalog shows up once the cached entry expires.
type Service struct {
	repo           catalogRepo
	cache          *freecache.Cache
	ttl            time.Duration
	metricsManager *metrics.Manager
}

func NewService(repo catalogRepo, cacheSizeMB int, ttl time.Duration, metricsManager *metrics.Manager) *Service {
	megabyte := 1024 * 1024
	return &Service{
		repo:           repo,
		cache:          freecache.NewCache(cacheSizeMB * megabyte),
		ttl:            ttl,
		metricsManager: metricsManager,
	}
}

func (s *Service) List(ctx context.Context) ([]MuscleGroup, error) {
	if cached, err := s.cache.Get([]byte(cacheKey)); err == nil {
		var groups []MuscleGroup
		if err := json.Unmarshal(cached, &groups); err == nil {
			s.count("hit")
			return groups, nil
		} else {
			log.Errorf("catalog cache, unmarshal: %s", err)
		}
	}
	s.count("miss")

	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	groupsBytes, err := json.Marshal(groups)
	if err != nil {
		log.Errorf("catalog cache, marshal: %s", err)
		return groups, nil
	}
	if err := s.cache.Set([]byte(cacheKey), groupsBytes, int(s.ttl.Seconds())); err != nil {
		log.Errorf("catalog cache, set: %s", err)
	}

	return groups, nil
}

func (s *Service) count(result string) {
	if s.metricsManager != nil {
		s.metricsManager.CounterCatalogCache.WithLabelValues(result).Inc()
	}
}
