package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) Index(c *gin.Context) {
	query := parseListQuery(c)

	logs, total, err := h.auditService.List(c.Request.Context(), query.PerPage, (query.Page-1)*query.PerPage)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audit_logs": logs,
		"pagination": pagination(query, total),
	})
}
