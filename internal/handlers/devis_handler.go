package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/middleware"
	"github.com/mkoumba/translog-api/internal/services"
)

type DevisHandler struct {
	devisService      *services.DevisService
	conversionService *services.ConversionService
}

func NewDevisHandler(devisService *services.DevisService, conversionService *services.ConversionService) *DevisHandler {
	return &DevisHandler{devisService: devisService, conversionService: conversionService}
}

func (h *DevisHandler) Index(c *gin.Context) {
	query := parseListQuery(c, "statut", "client_id", "start_date", "end_date")

	devis, total, err := h.devisService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"devis":      devis,
		"pagination": pagination(query, total),
	})
}

func (h *DevisHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	devis, err := h.devisService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"devis": devis})
}

func (h *DevisHandler) Create(c *gin.Context) {
	var input services.DocumentInput
	if err := BindNestedOrFlat(c, "devis", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	devis, err := h.devisService.Create(c.Request.Context(), &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"devis": devis})
}

func (h *DevisHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var input services.DocumentInput
	if err := BindNestedOrFlat(c, "devis", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	devis, err := h.devisService.Update(c.Request.Context(), id, &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"devis": devis})
}

// ReplaceLignes swaps the whole item set of a brouillon devis
func (h *DevisHandler) ReplaceLignes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var input services.DocumentInput
	if err := BindNestedOrFlat(c, "devis", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	devis, err := h.devisService.ReplaceLignes(c.Request.Context(), id, &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"devis": devis})
}

// ChangerStatut applies a lifecycle transition (envoye, accepte, refuse,
// expire, annule). Conversion has its own endpoint.
func (h *DevisHandler) ChangerStatut(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var body struct {
		Statut string `json:"statut" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "statut requis"})
		return
	}

	devis, err := h.devisService.ChangerStatut(c.Request.Context(), id, body.Statut, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"devis": devis})
}

// Convertir creates the ordre de travail from the devis
func (h *DevisHandler) Convertir(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	ordre, err := h.conversionService.ConvertirDevis(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ordre_travail": ordre})
}
