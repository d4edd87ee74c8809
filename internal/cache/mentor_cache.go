package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/prism-worklet/prism-api/internal/models"
	"github.com/prism-worklet/prism-api/pkg/logger"
	"github.com/prism-worklet/prism-api/pkg/metrics"
	"github.com/prism-worklet/prism-api/pkg/retry"
)

// MentorDataSource is the database view the cache refreshes from.
type MentorDataSource interface {
	GetAllMentors(ctx context.Context) ([]*models.Mentor, error)
	GetMentorByID(ctx context.Context, id int64) (*models.Mentor, error)
}

const (
	mentorKeyPrefix  = "mentor:id:"
	allMentorsKey    = "mentor:all"
	cacheCheckPeriod = 10 * time.Second
)

// MentorCache keeps the mentor list in memory so list and get requests
// skip the database. Individual entries never expire on their own;
// freshness is controlled by the TTL on the id list.
type MentorCache struct {
	cache       *gocache.Cache
	dataSource  MentorDataSource
	mu          sync.RWMutex
	refreshing  bool
	ready       bool
	ttl         time.Duration
	lastRefresh time.Time
}

func NewMentorCache(dataSource MentorDataSource, ttlSeconds int) *MentorCache {
	return &MentorCache{
		cache:      gocache.New(gocache.NoExpiration, cacheCheckPeriod),
		dataSource: dataSource,
		ttl:        time.Duration(ttlSeconds) * time.Second,
	}
}

// Initialize populates the cache synchronously. Called during startup
// before the server accepts requests.
func (mc *MentorCache) Initialize(ctx context.Context) error {
	logger.Info("Initializing mentor cache...")
	startTime := time.Now()

	err := retry.Do(ctx, retry.DatabaseConfig(), "mentor_cache_refresh", func() error {
		mentors, fetchErr := mc.dataSource.GetAllMentors(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		mc.populateCache(mentors)
		return nil
	})
	if err != nil {
		logger.Error("Failed to initialize mentor cache", zap.Error(err))
		return err
	}

	mc.mu.Lock()
	mc.ready = true
	mc.lastRefresh = time.Now()
	mc.mu.Unlock()

	logger.Info("Mentor cache initialized successfully",
		zap.Duration("duration", time.Since(startTime)))

	go mc.schedulePeriodicRefresh()

	return nil
}

// IsReady returns true once the cache has been populated.
func (mc *MentorCache) IsReady() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.ready
}

// GetByID returns a cached mentor. Never falls through to the database.
func (mc *MentorCache) GetByID(id int64) (*models.Mentor, bool) {
	if !mc.IsReady() {
		return nil, false
	}

	data, found := mc.cache.Get(mentorKey(id))
	if !found {
		metrics.CacheMisses.WithLabelValues("mentor_by_id").Inc()
		return nil, false
	}

	mentor, ok := data.(*models.Mentor)
	if !ok {
		logger.Error("Invalid cache data type", zap.Int64("mentor_id", id))
		mc.cache.Delete(mentorKey(id))
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("mentor_by_id").Inc()
	return mentor, true
}

// Get returns the cached mentor list. An expired list yields empty
// rather than blocking on a database fetch.
func (mc *MentorCache) Get() ([]*models.Mentor, error) {
	if !mc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	idsData, found := mc.cache.Get(allMentorsKey)
	if !found {
		metrics.CacheMisses.WithLabelValues("mentor_all").Inc()
		logger.Warn("Mentor list not in cache (expired), returning empty")
		return []*models.Mentor{}, nil
	}

	ids, ok := idsData.([]int64)
	if !ok {
		logger.Error("Invalid cache data type for mentor list")
		return []*models.Mentor{}, nil
	}

	metrics.CacheHits.WithLabelValues("mentor_all").Inc()

	mentors := make([]*models.Mentor, 0, len(ids))
	for _, id := range ids {
		if mentor, ok := mc.GetByID(id); ok {
			mentors = append(mentors, mentor)
		}
	}

	return mentors, nil
}

// UpdateMentor refreshes a single cache entry from the database.
// Called after a mentor create or update.
func (mc *MentorCache) UpdateMentor(ctx context.Context, id int64) error {
	if !mc.IsReady() {
		return fmt.Errorf("cache not initialized")
	}

	mentor, err := mc.dataSource.GetMentorByID(ctx, id)
	if err != nil {
		logger.Error("Failed to fetch mentor for cache update",
			zap.Int64("mentor_id", id),
			zap.Error(err))
		return err
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache.Set(mentorKey(id), mentor, gocache.NoExpiration)
	mc.ensureMentorInListLocked(id)

	return nil
}

// RemoveMentor drops a mentor from the cache after deletion.
func (mc *MentorCache) RemoveMentor(id int64) {
	if !mc.IsReady() {
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache.Delete(mentorKey(id))

	idsData, found := mc.cache.Get(allMentorsKey)
	if !found {
		return
	}
	ids, ok := idsData.([]int64)
	if !ok {
		return
	}

	remaining := make([]int64, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			remaining = append(remaining, existing)
		}
	}
	mc.cache.Set(allMentorsKey, remaining, mc.ttl)
}

func (mc *MentorCache) schedulePeriodicRefresh() {
	ticker := time.NewTicker(mc.ttl)
	defer ticker.Stop()

	for range ticker.C {
		if err := mc.refreshInBackground(); err != nil {
			logger.Error("Scheduled cache refresh failed", zap.Error(err))
		}
	}
}

func (mc *MentorCache) refreshInBackground() error {
	mc.mu.Lock()
	if mc.refreshing {
		mc.mu.Unlock()
		logger.Debug("Refresh already in progress, skipping")
		return nil
	}
	mc.refreshing = true
	mc.mu.Unlock()

	defer func() {
		mc.mu.Lock()
		mc.refreshing = false
		mc.mu.Unlock()
	}()

	startTime := time.Now()

	mentors, err := mc.dataSource.GetAllMentors(context.Background())
	if err != nil {
		logger.Error("Failed to fetch mentors in background refresh", zap.Error(err))
		return err
	}

	mc.populateCache(mentors)

	mc.mu.Lock()
	mc.lastRefresh = time.Now()
	mc.mu.Unlock()

	logger.Info("Mentor cache refreshed",
		zap.Int("count", len(mentors)),
		zap.Duration("duration", time.Since(startTime)))

	return nil
}

func (mc *MentorCache) populateCache(mentors []*models.Mentor) {
	ids := make([]int64, 0, len(mentors))

	for _, mentor := range mentors {
		mc.cache.Set(mentorKey(mentor.ID), mentor, gocache.NoExpiration)
		ids = append(ids, mentor.ID)
	}

	// The id list carries the TTL and so controls expiration
	mc.cache.Set(allMentorsKey, ids, mc.ttl)

	metrics.CacheSize.WithLabelValues("mentors").Set(float64(len(mentors)))
}

// ensureMentorInListLocked must be called with mc.mu held.
func (mc *MentorCache) ensureMentorInListLocked(id int64) {
	idsData, found := mc.cache.Get(allMentorsKey)
	if !found {
		return
	}
	ids, ok := idsData.([]int64)
	if !ok {
		return
	}

	for _, existing := range ids {
		if existing == id {
			return
		}
	}

	mc.cache.Set(allMentorsKey, append(ids, id), mc.ttl)
}

// Clear drops everything from the cache.
func (mc *MentorCache) Clear() {
	mc.cache.Flush()
	logger.Info("Mentor cache cleared")
}

func mentorKey(id int64) string {
	return mentorKeyPrefix + strconv.FormatInt(id, 10)
}
