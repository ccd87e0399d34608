package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/middleware"
	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/services"
)

// ReferenceHandler serves the reference tables documents point at: clients,
// transitaires, armateurs and banques.
type ReferenceHandler struct {
	clientService *services.ClientService
}

func NewReferenceHandler(clientService *services.ClientService) *ReferenceHandler {
	return &ReferenceHandler{clientService: clientService}
}

func (h *ReferenceHandler) ListClients(c *gin.Context) {
	query := parseListQuery(c, "actif")

	clients, total, err := h.clientService.ListClients(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients":    clients,
		"pagination": pagination(query, total),
	})
}

func (h *ReferenceHandler) ShowClient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	client, err := h.clientService.FindClientByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (h *ReferenceHandler) CreateClient(c *gin.Context) {
	var client models.Client
	if err := BindNestedOrFlat(c, "client", &client); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	if err := h.clientService.CreateClient(c.Request.Context(), &client, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"client": client})
}

func (h *ReferenceHandler) UpdateClient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	existing, err := h.clientService.FindClientByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	var client models.Client
	if err := BindNestedOrFlat(c, "client", &client); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}
	client.ID = existing.ID
	client.Actif = existing.Actif
	client.CreatedAt = existing.CreatedAt

	if err := h.clientService.UpdateClient(c.Request.Context(), &client, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (h *ReferenceHandler) DesactiverClient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	client, err := h.clientService.DesactiverClient(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (h *ReferenceHandler) ListTransitaires(c *gin.Context) {
	transitaires, err := h.clientService.ListTransitaires(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transitaires": transitaires})
}

func (h *ReferenceHandler) CreateTransitaire(c *gin.Context) {
	var transitaire models.Transitaire
	if err := BindNestedOrFlat(c, "transitaire", &transitaire); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	if err := h.clientService.CreateTransitaire(c.Request.Context(), &transitaire, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transitaire": transitaire})
}

func (h *ReferenceHandler) ListArmateurs(c *gin.Context) {
	armateurs, err := h.clientService.ListArmateurs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"armateurs": armateurs})
}

func (h *ReferenceHandler) CreateArmateur(c *gin.Context) {
	var armateur models.Armateur
	if err := BindNestedOrFlat(c, "armateur", &armateur); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	if err := h.clientService.CreateArmateur(c.Request.Context(), &armateur, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"armateur": armateur})
}

func (h *ReferenceHandler) ListBanques(c *gin.Context) {
	banques, err := h.clientService.ListBanques(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"banques": banques})
}

func (h *ReferenceHandler) CreateBanque(c *gin.Context) {
	var banque models.Banque
	if err := BindNestedOrFlat(c, "banque", &banque); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	if err := h.clientService.CreateBanque(c.Request.Context(), &banque, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"banque": banque})
}
