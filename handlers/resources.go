package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rdhub/rdhub/backend/go-services/internal/ingest"
	"github.com/rdhub/rdhub/backend/go-services/internal/resource"
	"github.com/rdhub/rdhub/backend/go-services/internal/resource/service"
	"github.com/rdhub/rdhub/backend/go-services/pkg/logger"
	"github.com/rdhub/rdhub/backend/go-services/pkg/metrics"
)

// maxImportBytes caps metadata uploads (XML records and CSV batches).
const maxImportBytes = 8 << 20

// ResourceHandler exposes the curation API: resource CRUD, DOI checking,
// metadata import, publish and the public landing pages.
type ResourceHandler struct {
	svc *service.Service
}

func NewResourceHandler(s *service.Service) *ResourceHandler {
	return &ResourceHandler{svc: s}
}

// Register mounts the curation routes. auth protects everything except the
// landing pages, which stay public.
func (h *ResourceHandler) Register(r *gin.Engine, auth gin.HandlerFunc) {
	api := r.Group("/api")
	if auth != nil {
		api.Use(auth)
	}
	api.GET("/resources", h.List)
	api.POST("/resources", h.Create)
	api.GET("/resources/:id", h.Get)
	api.PUT("/resources/:id", h.Update)
	api.DELETE("/resources/:id", h.Delete)
	api.POST("/resources/import", h.Import)
	api.POST("/resources/:id/publish", h.Publish)
	api.POST("/doi/check", h.CheckDOI)

	r.GET("/api/landing/:slug", h.Landing)
}

func (h *ResourceHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	if out == nil {
		out = []*resource.Resource{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *ResourceHandler) Create(c *gin.Context) {
	var req resource.Resource
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if req.State == "" {
		req.State = resource.StateDraft
	}
	id, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		logger.Errorf("resource create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "slug": req.Slug})
}

func (h *ResourceHandler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ResourceHandler) Update(c *gin.Context) {
	var req resource.Resource
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = c.Param("id")
	err := h.svc.Update(c.Request.Context(), &req)
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrDOITaken):
		c.JSON(http.StatusConflict, gin.H{"error": "doi already assigned to another resource"})
	case err != nil:
		logger.Errorf("resource update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
	default:
		c.JSON(http.StatusOK, req)
	}
}

func (h *ResourceHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckDOIRequest is the payload for the editor's DOI field validation.
// ExcludeResourceID is the record being edited so its own DOI does not
// count as a collision.
type CheckDOIRequest struct {
	DOI               string `json:"doi" binding:"required"`
	ExcludeResourceID string `json:"exclude_resource_id"`
}

// CheckDOI validates a candidate DOI, reports the holder on collision and
// proposes the next free suffix. The suggestion is advisory only; the store's
// uniqueness constraint decides at save time.
func (h *ResourceHandler) CheckDOI(c *gin.Context) {
	var req CheckDOIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.CheckDOI(c.Request.Context(), req.DOI, req.ExcludeResourceID)
	if err != nil {
		logger.Errorf("doi check failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "doi check failed"})
		return
	}
	switch {
	case !res.IsValidFormat:
		metrics.DOIChecks.WithLabelValues("invalid").Inc()
	case res.Exists:
		metrics.DOIChecks.WithLabelValues("collision").Inc()
		if res.SuggestedDOI != "" {
			metrics.DOISuggestions.WithLabelValues("suggested").Inc()
		} else {
			metrics.DOISuggestions.WithLabelValues("exhausted").Inc()
		}
	default:
		metrics.DOIChecks.WithLabelValues("free").Inc()
	}
	c.JSON(http.StatusOK, res)
}

// Import accepts a DataCite XML record or a CSV batch in the request body
// and creates draft resources. Row-level CSV failures do not abort the
// batch; they are reported back alongside the created ids.
func (h *ResourceHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	recs, rowErrs, err := ingest.Parse(data)
	if err != nil {
		if errors.Is(err, ingest.ErrUnknownFormat) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imported := make([]gin.H, 0, len(recs))
	errStrs := make([]string, 0, len(rowErrs))
	for _, e := range rowErrs {
		errStrs = append(errStrs, e.Error())
	}
	for _, r := range recs {
		id, err := h.svc.Create(c.Request.Context(), r)
		if err != nil {
			errStrs = append(errStrs, "create "+r.Title+": "+err.Error())
			continue
		}
		imported = append(imported, gin.H{"id": id, "title": r.Title})
	}
	status := http.StatusCreated
	if len(imported) == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"imported": imported, "errors": errStrs})
}

// Publish moves a record to the published state under its DOI (or the one
// supplied in the body) after registering it with the agency.
func (h *ResourceHandler) Publish(c *gin.Context) {
	var req struct {
		DOI string `json:"doi"`
	}
	// body is optional; the resource may already carry its DOI
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	r, err := h.svc.Publish(c.Request.Context(), c.Param("id"), req.DOI)
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrNoDOI):
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource has no doi; supply one to publish"})
	case errors.Is(err, service.ErrDOIInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "doi format invalid"})
	case errors.Is(err, service.ErrDOIBadPrefix):
		c.JSON(http.StatusBadRequest, gin.H{"error": "doi outside the configured registrant prefix"})
	case errors.Is(err, service.ErrDOITaken):
		c.JSON(http.StatusConflict, gin.H{"error": "doi already assigned to another resource"})
	case err != nil:
		logger.Errorf("publish failed for %s: %v", c.Param("id"), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "doi registration failed"})
	default:
		metrics.ResourcesPublished.Inc()
		c.JSON(http.StatusOK, r)
	}
}

// Landing serves the public landing-page payload for a published dataset.
func (h *ResourceHandler) Landing(c *gin.Context) {
	v, err := h.svc.Landing(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, v)
}
