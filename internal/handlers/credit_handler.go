package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/middleware"
	"github.com/mkoumba/translog-api/internal/services"
)

type CreditHandler struct {
	creditService *services.CreditService
}

func NewCreditHandler(creditService *services.CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

func (h *CreditHandler) Index(c *gin.Context) {
	query := parseListQuery(c, "statut", "banque_id")

	credits, total, err := h.creditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credits":    credits,
		"pagination": pagination(query, total),
	})
}

func (h *CreditHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	credit, err := h.creditService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"credit": credit})
}

func (h *CreditHandler) Create(c *gin.Context) {
	var input services.CreditInput
	if err := BindNestedOrFlat(c, "credit", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	credit, err := h.creditService.Create(c.Request.Context(), &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"credit": credit})
}

// Rembourser records one repayment against the credit
func (h *CreditHandler) Rembourser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var input services.RemboursementInput
	if err := BindNestedOrFlat(c, "remboursement", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	remboursement, err := h.creditService.Rembourser(c.Request.Context(), id, &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"remboursement": remboursement})
}

// EnDefaut flags an active credit as defaulted
func (h *CreditHandler) EnDefaut(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	credit, err := h.creditService.MarquerEnDefaut(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"credit": credit})
}
