package usecase

import (
	"context"
	"net/http"

	"shophub/internal/domain/model"
	repo "shophub/internal/repository"
)

const auditListMaxLimit = 200

type AuditUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditUsecase(auditRepo repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{auditRepo: auditRepo}
}

// 監査ログの一覧。新しい順で返す。
func (u *AuditUsecase) ListAuditLogs(ctx context.Context, adminID int64, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	if adminID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if filter.Action != nil && !filter.Action.Valid() {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid action")
	}

	if filter.Limit <= 0 || filter.Limit > auditListMaxLimit {
		filter.Limit = auditListMaxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	logs, err := u.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
