package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tourbooking/internal/domain"
)

type ReconciliationIssueRepository struct {
	db *gorm.DB
}

func NewReconciliationIssueRepository(db *gorm.DB) *ReconciliationIssueRepository {
	return &ReconciliationIssueRepository{db: db}
}

type reconciliationIssueModel struct {
	ID         int64      `gorm:"column:id;primaryKey"`
	SessionID  string     `gorm:"column:session_id;type:varchar(255);uniqueIndex;not null"`
	Source     string     `gorm:"column:source;type:varchar(32)"`
	Kind       string     `gorm:"column:kind;type:varchar(32);index"`
	Detail     string     `gorm:"column:detail;type:text"`
	Status     string     `gorm:"column:status;type:varchar(16);index;default:'open'"`
	Attempts   int        `gorm:"column:attempts;default:1"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`
}

func (reconciliationIssueModel) TableName() string { return "reconciliation_issues" }

func toDomainIssue(m reconciliationIssueModel) domain.ReconciliationIssue {
	return domain.ReconciliationIssue{
		ID:         m.ID,
		SessionID:  m.SessionID,
		Source:     m.Source,
		Kind:       domain.IssueKind(m.Kind),
		Detail:     m.Detail,
		Status:     domain.IssueStatus(m.Status),
		Attempts:   m.Attempts,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		ResolvedAt: m.ResolvedAt,
	}
}

// Record opens an issue for the session, or reopens and bumps the attempt
// counter of an existing one.
func (r *ReconciliationIssueRepository) Record(ctx context.Context, sessionID, source string, kind domain.IssueKind, detail string) error {
	now := time.Now().UTC()
	m := reconciliationIssueModel{
		SessionID: sessionID,
		Source:    source,
		Kind:      string(kind),
		Detail:    detail,
		Status:    string(domain.IssueOpen),
		Attempts:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"source":      source,
			"kind":        string(kind),
			"detail":      detail,
			"status":      string(domain.IssueOpen),
			"attempts":    gorm.Expr("reconciliation_issues.attempts + 1"),
			"updated_at":  now,
			"resolved_at": nil,
		}),
	}).Create(&m).Error
}

func (r *ReconciliationIssueRepository) ListOpen(ctx context.Context, limit int) ([]domain.ReconciliationIssue, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []reconciliationIssueModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.IssueOpen)).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.ReconciliationIssue, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainIssue(m))
	}
	return out, nil
}

func (r *ReconciliationIssueRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.ReconciliationIssue, error) {
	var m reconciliationIssueModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	issue := toDomainIssue(m)
	return &issue, nil
}

func (r *ReconciliationIssueRepository) Resolve(ctx context.Context, sessionID string) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&reconciliationIssueModel{}).
		Where("session_id = ? AND status = ?", sessionID, string(domain.IssueOpen)).
		Updates(map[string]interface{}{
			"status":      string(domain.IssueResolved),
			"resolved_at": now,
			"updated_at":  now,
		})
	return res.Error
}

// PurgeResolved deletes issues resolved before the cutoff and returns how many
// were removed.
func (r *ReconciliationIssueRepository) PurgeResolved(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND resolved_at < ?", string(domain.IssueResolved), before).
		Delete(&reconciliationIssueModel{})
	return res.RowsAffected, res.Error
}
