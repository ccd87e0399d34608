package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type bindTestStruct struct {
	Libelle string  `json:"libelle"`
	Montant float64 `json:"montant"`
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		expected    bindTestStruct
		expectError bool
	}{
		{
			name:     "Nested Structure",
			key:      "mouvement",
			body:     `{"mouvement": {"libelle": "Achat carburant", "montant": 25000}}`,
			expected: bindTestStruct{Libelle: "Achat carburant", Montant: 25000},
		},
		{
			name:     "Flat Structure",
			key:      "mouvement",
			body:     `{"libelle": "Loyer", "montant": 150000}`,
			expected: bindTestStruct{Libelle: "Loyer", Montant: 150000},
		},
		{
			name:     "Missing Key Falls Back To Flat",
			key:      "mouvement",
			body:     `{"autre": "x", "libelle": "Divers", "montant": 1000}`,
			expected: bindTestStruct{Libelle: "Divers", Montant: 1000},
		},
		{
			name:        "Invalid Type",
			key:         "mouvement",
			body:        `{"mouvement": {"libelle": "Achat", "montant": "beaucoup"}}`,
			expectError: true,
		},
		{
			name:        "Nested Key With Wrong Shape",
			key:         "mouvement",
			body:        `{"mouvement": "texte"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result bindTestStruct
			err := BindNestedOrFlat(c, tt.key, &result)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParseListQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?page=3&per_page=50&search=FAC&statut=envoyee&sort=date-desc&ignore=me", nil)

	q := parseListQuery(c, "statut", "client_id")

	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 50, q.PerPage)
	assert.Equal(t, "FAC", q.Search)
	assert.Equal(t, "envoyee", q.Filters["statut"])
	assert.NotContains(t, q.Filters, "ignore")
	assert.Equal(t, "date", q.SortBy)
	assert.Equal(t, "desc", q.SortDir)
}
