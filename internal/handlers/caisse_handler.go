package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/middleware"
	"github.com/mkoumba/translog-api/internal/services"
)

type CaisseHandler struct {
	caisseService *services.CaisseService
}

func NewCaisseHandler(caisseService *services.CaisseService) *CaisseHandler {
	return &CaisseHandler{caisseService: caisseService}
}

func (h *CaisseHandler) Index(c *gin.Context) {
	query := parseListQuery(c, "type", "categorie", "source", "banque_id", "start_date", "end_date")

	mouvements, total, err := h.caisseService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mouvements": mouvements,
		"pagination": pagination(query, total),
	})
}

func (h *CaisseHandler) Create(c *gin.Context) {
	var input services.MouvementInput
	if err := BindNestedOrFlat(c, "mouvement", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	mouvement, err := h.caisseService.Create(c.Request.Context(), &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"mouvement": mouvement})
}

func (h *CaisseHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	if err := h.caisseService.Delete(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "mouvement supprimé"})
}

// Balance returns total entrées minus total sorties over the filtered period
func (h *CaisseHandler) Balance(c *gin.Context) {
	query := parseListQuery(c, "type", "categorie", "source", "banque_id", "start_date", "end_date")

	balance, err := h.caisseService.Balance(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// Categories returns the catalogue offered for manual movements
func (h *CaisseHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.caisseService.Categories()})
}
