package middleware

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"counselign/database"
	"counselign/models"
)

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logrus.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).String(),
			"ip":         c.IP(),
			"user_agent": c.Get("User-Agent"),
		}).Info("HTTP Request")

		return err
	}
}

// LogActivity records an activity log row with an integrity hash. Rows go to
// the Redis cache first and are flushed to the database by the log
// maintenance job; a direct insert is the fallback when Redis is unavailable.
func LogActivity(c *fiber.Ctx, action, resource string, resourceID uint, details interface{}) {
	user, err := GetCurrentUser(c)
	if err != nil {
		// unauthenticated requests log as system actions
		user = &models.User{BaseModel: models.BaseModel{ID: 0}}
	}

	activityLog := models.ActivityLog{
		UserID:     user.ID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	activityLog.CreatedAt = time.Now()

	enriched := map[string]interface{}{
		"details":        details,
		"integrity_hash": integrityHash(activityLog),
		"request_id":     c.Get("X-Request-ID", newRequestID()),
		"forwarded_for":  c.Get("X-Forwarded-For"),
		"method":         c.Method(),
		"path":           c.Path(),
		"query":          string(c.Request().URI().QueryString()),
		"status_code":    c.Response().StatusCode(),
	}
	if b, err := json.Marshal(enriched); err == nil {
		activityLog.Details = b
	}

	go func(al models.ActivityLog) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("Panic recovered while recording activity log")
			}
		}()

		if err := cacheActivityLog(al); err != nil {
			logrus.WithError(err).Warn("Failed to cache activity log, saving directly to database")
			if database.DB == nil {
				logrus.Error("Database unavailable; activity log dropped")
				return
			}
			if dbErr := database.DB.Create(&al).Error; dbErr != nil {
				logrus.WithError(dbErr).Error("Failed to save activity log")
			}
		}
	}(activityLog)
}

// integrityHash fingerprints the immutable fields of a log row so tampering
// with stored or archived rows is detectable.
func integrityHash(log models.ActivityLog) string {
	createdAt := ""
	if !log.CreatedAt.IsZero() {
		createdAt = log.CreatedAt.Format(time.RFC3339)
	}
	data := fmt.Sprintf("%d:%s:%s:%d:%s:%s:%s",
		log.UserID,
		log.Action,
		log.Resource,
		log.ResourceID,
		log.IPAddress,
		log.UserAgent,
		createdAt,
	)
	return fmt.Sprintf("%x", md5.Sum([]byte(data)))
}

func newRequestID() string {
	return fmt.Sprintf("req_%d", time.Now().UnixNano())
}

// cacheActivityLog stores the row in Redis with a 24-hour TTL and enqueues
// the cache key on the sorted set the log maintenance job flushes from.
func cacheActivityLog(log models.ActivityLog) error {
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return fmt.Errorf("redis client is nil")
	}

	logData, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %v", err)
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("log:%d:%s:%d", log.UserID, log.Action, time.Now().UnixNano())

	if err := redisClient.Set(ctx, cacheKey, logData, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to cache log: %v", err)
	}

	if err := redisClient.ZAdd(ctx, "logs:queue", &redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: cacheKey,
	}).Err(); err != nil {
		logrus.WithError(err).Error("Failed to enqueue log for flushing")
	}

	return nil
}

// LogActivityMiddleware records successful mutating requests automatically.
// Reads and auth endpoints are skipped; handlers that need richer detail call
// LogActivity themselves.
func LogActivityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || strings.Contains(c.Path(), "/auth/") {
			return c.Next()
		}

		err := c.Next()

		var action string
		switch c.Method() {
		case fiber.MethodPost:
			action = "CREATE"
		case fiber.MethodPut, fiber.MethodPatch:
			action = "UPDATE"
		case fiber.MethodDelete:
			action = "DELETE"
		default:
			return err
		}

		var resourceID uint
		if id := c.Params("id"); id != "" {
			if parsed, parseErr := strconv.ParseUint(id, 10, 32); parseErr == nil {
				resourceID = uint(parsed)
			}
		}

		if c.Response().StatusCode() < 400 {
			LogActivity(c, action, resourceFromPath(c.Path()), resourceID, nil)
		}

		return err
	}
}

// roleGroups are the route group segments that prefix role-gated resources.
var roleGroups = map[string]struct{}{"student": {}, "counselor": {}, "admin": {}}

// resourceFromPath extracts the resource segment from an API path, skipping
// the /api prefix and the role group so /api/student/appointments and
// /api/admin/appointments both log as "appointments".
func resourceFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if i == 0 && part == "api" {
			continue
		}
		if _, ok := roleGroups[part]; ok {
			continue
		}
		return part
	}
	return ""
}
