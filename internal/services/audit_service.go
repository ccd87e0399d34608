package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/jobs"
	"github.com/mkoumba/translog-api/internal/models"
)

// AsyncQueue runs fire-and-forget jobs off the request path. Satisfied by
// *jobs.Worker.
type AsyncQueue interface {
	EnqueueAsync(job jobs.Job)
}

type AuditService struct {
	db    *gorm.DB
	queue AsyncQueue
}

func NewAuditService(db *gorm.DB, queue AsyncQueue) *AuditService {
	return &AuditService{db: db, queue: queue}
}

// Log records an audit entry. A nil service is a no-op so callers never
// have to guard their trail writes. The entry is built synchronously from
// the caller's data; with a queue, the insert itself leaves the request path.
func (s *AuditService) Log(ctx context.Context, userID uint, action, entity string, entityID uint, details, ip, userAgent string) error {
	if s == nil || s.db == nil {
		return nil
	}
	logEntry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if s.queue != nil {
		s.queue.EnqueueAsync(func(jobCtx context.Context) error {
			return s.db.WithContext(jobCtx).Create(logEntry).Error
		})
		return nil
	}
	return s.db.WithContext(ctx).Create(logEntry).Error
}

// List retrieves audit logs with filters
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Offset(offset).Find(&logs)
	return logs, total, result.Error
}
