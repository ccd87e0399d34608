package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/middleware"
	"github.com/mkoumba/translog-api/internal/services"
)

type PrimeHandler struct {
	primeService *services.PrimeService
}

func NewPrimeHandler(primeService *services.PrimeService) *PrimeHandler {
	return &PrimeHandler{primeService: primeService}
}

func systemParam(c *gin.Context) string {
	return strings.ToUpper(c.Param("system"))
}

// Index lists the upstream-paid primes of one external system with their
// local payout state. "available": false flags a degraded (cached or empty)
// response.
func (h *PrimeHandler) Index(c *gin.Context) {
	result, err := h.primeService.List(c.Request.Context(), systemParam(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Decaisser pays out one prime from the caisse or a bank account
func (h *PrimeHandler) Decaisser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	var input services.DecaissementInput
	if c.Request.ContentLength > 0 {
		if err := BindNestedOrFlat(c, "decaissement", &input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
			return
		}
	}

	mouvement, err := h.primeService.Decaisser(c.Request.Context(), systemParam(c), id, &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"mouvement": mouvement})
}

// Stats summarises one external system for the dashboard
func (h *PrimeHandler) Stats(c *gin.Context) {
	stats, err := h.primeService.Stats(c.Request.Context(), systemParam(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
