package repository

import (
	"context"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
)

// AuditRepository stores the authentication audit trail.
type AuditRepository interface {
	Record(ctx context.Context, e entity.AuditEntry) error
}
