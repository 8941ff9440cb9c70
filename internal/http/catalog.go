package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librium/internal/database/lookup"
	"github.com/mrlokans/librium/internal/entities"
)

// NameRequest carries the name of a simple entity.
type NameRequest struct {
	Name string `json:"name"`
}

// CatalogController manages the entities books refer to.
type CatalogController struct {
	catalog CatalogStore
}

func NewCatalogController(catalog CatalogStore) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// collectionPath returns the URL segment for a kind.
func collectionPath(kind lookup.Kind) string {
	switch kind {
	case lookup.KindSeries:
		return "series"
	default:
		return string(kind) + "s"
	}
}

// Create returns a handler for POST /api/<kind>. It refuses a name that is
// already taken by a live entity.
func (cc *CatalogController) Create(kind lookup.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body: "+err.Error())
			return
		}

		named, err := cc.catalog.Create(c.Request.Context(), kind, req.Name)
		if err != nil {
			respondServiceError(c, err, string(kind))
			return
		}
		respondCreated(c, named)
	}
}

// Resolve returns a handler for POST /api/<kind>/resolve: the live entity with
// the name, created on first use.
func (cc *CatalogController) Resolve(kind lookup.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body: "+err.Error())
			return
		}

		named, err := cc.catalog.Resolve(c.Request.Context(), kind, req.Name)
		if err != nil {
			respondServiceError(c, err, string(kind))
			return
		}
		c.JSON(http.StatusOK, named)
	}
}

// Rename returns a handler for PUT /api/<kind>/:id.
func (cc *CatalogController) Rename(kind lookup.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		var req NameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body: "+err.Error())
			return
		}

		if err := cc.catalog.Rename(c.Request.Context(), kind, id, req.Name); err != nil {
			respondServiceError(c, err, string(kind))
			return
		}
		respondSuccess(c, string(kind)+" renamed")
	}
}

// Delete returns a handler for DELETE /api/<kind>/:id. Books keep their links
// to the entity; it just stops showing up.
func (cc *CatalogController) Delete(kind lookup.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		if err := cc.catalog.Delete(c.Request.Context(), kind, id); err != nil {
			respondServiceError(c, err, string(kind))
			return
		}
		respondSuccess(c, string(kind)+" deleted")
	}
}

// ResolveAuthor handles POST /api/authors. Authors match on every name part,
// so creating one is always get-or-create.
func (cc *CatalogController) ResolveAuthor(c *gin.Context) {
	var parts entities.NameParts
	if err := c.ShouldBindJSON(&parts); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	author, err := cc.catalog.ResolveAuthor(c.Request.Context(), parts)
	if err != nil {
		respondServiceError(c, err, "author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// Formats handles GET /api/formats.
func (cc *CatalogController) Formats(c *gin.Context) {
	formats, err := cc.catalog.Formats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "formats")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: formats, Count: len(formats)})
}
