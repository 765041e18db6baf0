package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
)

// RequestMeta describes the caller for the audit trail.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Upload folders inside the object store.
const (
	ProfileImagesFolder = "profile-images"
	ArticleImagesFolder = "article-images"
)

// The helpers below never fail the caller; errors are only logged.

func publish(ctx context.Context, pub repository.EventPublisher, logger logrus.FieldLogger, t entity.EventType, data map[string]any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, entity.NewEvent(t, data)); err != nil {
		helpers.LogWarn(logger, "publish event failed", err, logrus.Fields{"event": t})
	}
}

func audit(ctx context.Context, repo repository.AuditRepository, logger logrus.FieldLogger, e entity.AuditEntry) {
	if repo == nil {
		return
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := repo.Record(ctx, e); err != nil {
		helpers.LogWarn(logger, "audit write failed", err, logrus.Fields{"action": e.Action})
	}
}

func discardImage(ctx context.Context, store repository.ImageStorage, logger logrus.FieldLogger, url string) {
	if store == nil || url == "" {
		return
	}
	if err := store.Delete(ctx, url); err != nil {
		helpers.LogWarn(logger, "image cleanup failed", err, logrus.Fields{"url": url})
	}
}

func validCategories(values []string) bool {
	for _, v := range values {
		if !entity.Category(v).Valid() {
			return false
		}
	}
	return true
}
