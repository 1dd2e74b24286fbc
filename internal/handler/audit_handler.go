package handler

import (
	"net/http"
	"strconv"

	"shophub/internal/config"
	"shophub/internal/domain/model"
	"shophub/internal/middleware"
	repo "shophub/internal/repository"
	"shophub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 監査ログの閲覧API
type AuditHandler struct {
	uc *usecase.AuditUsecase
}

func NewAuditHandler(uc *usecase.AuditUsecase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

func (h *AuditHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/admin/audit-logs")
	g.Use(middleware.AdminJWT(cfg))

	g.GET("", h.list)
}

func (h *AuditHandler) list(c echo.Context) error {
	adminID, ok := getAdminIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	var filter repo.AuditLogFilter

	if v := c.QueryParam("action"); v != "" {
		action := model.AuditAction(v)
		filter.Action = &action
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		filter.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid resource_id"})
		}
		filter.ResourceID = &id
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid limit"})
		}
		filter.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid offset"})
		}
		filter.Offset = n
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), adminID, filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
