package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/middleware"
	"github.com/mkoumba/translog-api/internal/services"
)

type FactureHandler struct {
	factureService    *services.FactureService
	paiementService   *services.PaiementService
	annulationService *services.AnnulationService
}

func NewFactureHandler(
	factureService *services.FactureService,
	paiementService *services.PaiementService,
	annulationService *services.AnnulationService,
) *FactureHandler {
	return &FactureHandler{
		factureService:    factureService,
		paiementService:   paiementService,
		annulationService: annulationService,
	}
}

func (h *FactureHandler) Index(c *gin.Context) {
	query := parseListQuery(c, "statut", "client_id", "start_date", "end_date")

	factures, total, err := h.factureService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"factures":   factures,
		"pagination": pagination(query, total),
	})
}

func (h *FactureHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	facture, err := h.factureService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"facture": facture})
}

func (h *FactureHandler) Create(c *gin.Context) {
	var input services.DocumentInput
	if err := BindNestedOrFlat(c, "facture", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	facture, err := h.factureService.Create(c.Request.Context(), &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"facture": facture})
}

func (h *FactureHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var input services.DocumentInput
	if err := BindNestedOrFlat(c, "facture", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	facture, err := h.factureService.Update(c.Request.Context(), id, &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"facture": facture})
}

func (h *FactureHandler) ReplaceLignes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var input services.DocumentInput
	if err := BindNestedOrFlat(c, "facture", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	facture, err := h.factureService.ReplaceLignes(c.Request.Context(), id, &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"facture": facture})
}

// Envoyer opens the facture for payments
func (h *FactureHandler) Envoyer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	facture, err := h.factureService.Envoyer(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"facture": facture})
}

// Paiements lists the payments applied to the facture
func (h *FactureHandler) Paiements(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	paiements, err := h.paiementService.ListByFacture(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"paiements": paiements})
}

// CreatePaiement applies one payment to the facture
func (h *FactureHandler) CreatePaiement(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var input services.PaiementInput
	if err := BindNestedOrFlat(c, "paiement", &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	paiement, err := h.paiementService.ApplySingle(c.Request.Context(), id, &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"paiement": paiement})
}

// Annuler cancels the facture with a mandatory motif
func (h *FactureHandler) Annuler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var body struct {
		Motif string `json:"motif" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "motif requis"})
		return
	}

	facture, err := h.annulationService.Annuler(c.Request.Context(), id, body.Motif, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"facture": facture})
}

// Rembourser writes the refund movement of an annulled facture
func (h *FactureHandler) Rembourser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var input services.RemboursementFactureInput
	if c.Request.ContentLength > 0 {
		if err := BindNestedOrFlat(c, "remboursement", &input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
			return
		}
	}

	mouvement, err := h.annulationService.Rembourser(c.Request.Context(), id, &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"mouvement": mouvement})
}
