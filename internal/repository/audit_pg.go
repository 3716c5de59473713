package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/solstrike/chipgate/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type auditRow struct {
	ID           string `gorm:"primaryKey"`
	AccountID    string `gorm:"index:idx_audit_account,priority:1"`
	Method       string
	Path         string
	IP           string
	UserAgent    string
	RequestBody  string
	StatusCode   int
	ResponseBody string
	LatencyMs    int64
	Context      []byte    `gorm:"type:jsonb"`
	CreatedAt    time.Time `gorm:"index:idx_audit_account,priority:2,sort:desc"`
}

func (auditRow) TableName() string { return "audit_logs" }

type PostgresAuditRepo struct {
	db *gorm.DB
}

func NewPostgresAuditRepo(db *gorm.DB) (*PostgresAuditRepo, error) {
	if err := db.AutoMigrate(&auditRow{}); err != nil {
		return nil, err
	}
	return &PostgresAuditRepo{db: db}, nil
}

func (r *PostgresAuditRepo) Insert(ctx context.Context, entry *model.AuditLog) error {
	if entry == nil {
		return nil
	}
	contextJSON, _ := json.Marshal(entry.Context)
	row := auditRow{
		ID:           entry.ID,
		AccountID:    entry.AccountID,
		Method:       entry.Method,
		Path:         entry.Path,
		IP:           entry.IP,
		UserAgent:    entry.UserAgent,
		RequestBody:  entry.RequestBody,
		StatusCode:   entry.StatusCode,
		ResponseBody: entry.ResponseBody,
		LatencyMs:    entry.LatencyMs,
		Context:      contextJSON,
		CreatedAt:    entry.CreatedAt,
	}
	// Replays of the same request ID are dropped silently.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r *PostgresAuditRepo) List(ctx context.Context, accountID string, limit int, from, to *time.Time) ([]*model.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	q := r.db.WithContext(ctx).Model(&auditRow{})
	if accountID != "" {
		q = q.Where("account_id = ?", accountID)
	}
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}

	var rows []auditRow
	if err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]*model.AuditLog, 0, len(rows))
	for _, row := range rows {
		entry := &model.AuditLog{
			ID:           row.ID,
			AccountID:    row.AccountID,
			Method:       row.Method,
			Path:         row.Path,
			IP:           row.IP,
			UserAgent:    row.UserAgent,
			RequestBody:  row.RequestBody,
			StatusCode:   row.StatusCode,
			ResponseBody: row.ResponseBody,
			LatencyMs:    row.LatencyMs,
			CreatedAt:    row.CreatedAt,
			Context:      map[string]interface{}{},
		}
		if len(row.Context) > 0 {
			_ = json.Unmarshal(row.Context, &entry.Context)
		}
		records = append(records, entry)
	}
	return records, nil
}

func (r *PostgresAuditRepo) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	return r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&auditRow{}).Error
}
