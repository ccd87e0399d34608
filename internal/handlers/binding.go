package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/repository"
)

// BindNestedOrFlat binds the request body to obj, accepting both the nested
// form {"key": {...}} and the flat form {...}. Older clients wrap the
// payload under the resource name; newer ones send it flat.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(bodyBytes, &nested); err == nil {
		if val, ok := nested[key]; ok {
			return json.Unmarshal(val, obj)
		}
	}

	return json.Unmarshal(bodyBytes, obj)
}

// parseListQuery reads pagination, sorting and the named filters from the
// query string. Sort uses the "field-direction" format.
func parseListQuery(c *gin.Context, filterKeys ...string) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search")

	for _, key := range filterKeys {
		if v := c.Query(key); v != "" {
			query.Filters[key] = v
		}
	}

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}
	return query
}

// paramID parses the :id (or named) route parameter
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pagination builds the standard pagination block of list responses
func pagination(q *repository.ListQuery, total int64) gin.H {
	return gin.H{
		"page":        q.Page,
		"per_page":    q.PerPage,
		"total":       total,
		"total_pages": (total + int64(q.PerPage) - 1) / int64(q.PerPage),
	}
}
