package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/MihaiMalos/elearning-client/internal/models"
	"github.com/MihaiMalos/elearning-client/pkg/logger"
	"github.com/MihaiMalos/elearning-client/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	userKeyPrefix    = "user:id:"
	cacheCheckPeriod = time.Minute
)

// UserDataSource fetches a single user record from the backend.
type UserDataSource interface {
	UserByID(ctx context.Context, userID int) (models.User, error)
}

// UserCache is a short-TTL read-through cache for user records. User
// records are immutable once fetched, so serving a recent copy during
// the participant fan-out saves one request per repeated id without any
// staleness concern. Enrollment-derived data is never cached here.
type UserCache struct {
	cache      *gocache.Cache
	dataSource UserDataSource
}

// NewUserCache creates a user cache with the given TTL in seconds.
func NewUserCache(dataSource UserDataSource, ttlSeconds int) *UserCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	return &UserCache{
		cache:      gocache.New(ttl, cacheCheckPeriod),
		dataSource: dataSource,
	}
}

// GetByID returns the cached user or fetches and caches it on a miss.
func (uc *UserCache) GetByID(ctx context.Context, userID int) (models.User, error) {
	key := userKeyPrefix + strconv.Itoa(userID)

	if data, found := uc.cache.Get(key); found {
		if user, ok := data.(models.User); ok {
			metrics.CacheHits.WithLabelValues("user_by_id").Inc()
			return user, nil
		}
		// Wrong type means a programming error; drop the entry
		logger.Error("Invalid user cache data type", zap.String("key", key))
		uc.cache.Delete(key)
	}

	metrics.CacheMisses.WithLabelValues("user_by_id").Inc()

	user, err := uc.dataSource.UserByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	uc.cache.SetDefault(key, user)
	return user, nil
}

// Clear drops all cached users, used on logout so the next session
// never sees records fetched under another account's permissions.
func (uc *UserCache) Clear() {
	uc.cache.Flush()
	logger.Debug("User cache cleared")
}
