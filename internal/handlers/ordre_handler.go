package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/middleware"
	"github.com/mkoumba/translog-api/internal/services"
)

type OrdreHandler struct {
	ordreService      *services.OrdreService
	conversionService *services.ConversionService
}

func NewOrdreHandler(ordreService *services.OrdreService, conversionService *services.ConversionService) *OrdreHandler {
	return &OrdreHandler{ordreService: ordreService, conversionService: conversionService}
}

func (h *OrdreHandler) Index(c *gin.Context) {
	query := parseListQuery(c, "statut", "client_id", "start_date", "end_date")

	ordres, total, err := h.ordreService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ordres_travail": ordres,
		"pagination":     pagination(query, total),
	})
}

func (h *OrdreHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	ordre, err := h.ordreService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ordre_travail": ordre})
}

func (h *OrdreHandler) Create(c *gin.Context) {
	var input services.DocumentInput
	if err := BindNestedOrFlat(c, "ordre_travail", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	ordre, err := h.ordreService.Create(c.Request.Context(), &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ordre_travail": ordre})
}

func (h *OrdreHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var input services.DocumentInput
	if err := BindNestedOrFlat(c, "ordre_travail", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	ordre, err := h.ordreService.Update(c.Request.Context(), id, &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ordre_travail": ordre})
}

func (h *OrdreHandler) ReplaceLignes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var input services.DocumentInput
	if err := BindNestedOrFlat(c, "ordre_travail", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	ordre, err := h.ordreService.ReplaceLignes(c.Request.Context(), id, &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ordre_travail": ordre})
}

// ChangerStatut applies en_cours, termine or annule; facturation has its own
// endpoint.
func (h *OrdreHandler) ChangerStatut(c *gin.Context) {
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

	ordre, err := h.ordreService.ChangerStatut(c.Request.Context(), id, body.Statut, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ordre_travail": ordre})
}

// Convertir creates the facture from a terminated ordre de travail
func (h *OrdreHandler) Convertir(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	facture, err := h.conversionService.ConvertirOrdre(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"facture": facture})
}
