package api

import (
	"net/http"

	"eastlens/server/internal/database"
	"eastlens/server/internal/models"

	"github.com/gin-gonic/gin"
)

type DistrictHandler struct {
	db *database.Database
}

func NewDistrictHandler(db *database.Database) *DistrictHandler {
	return &DistrictHandler{db: db}
}

// SetupDistrictRoutes adds district routes to the router
func SetupDistrictRoutes(router *gin.Engine, db *database.Database) {
	handler := NewDistrictHandler(db)

	router.GET("/api/districts", handler.ListDistricts)
	router.POST("/api/districts", handler.CreateDistrict)
	router.GET("/api/districts/:name", handler.GetDistrict)
	router.PUT("/api/districts/:name", handler.UpdateDistrict)
	router.DELETE("/api/districts/:name", handler.DeleteDistrict)
}

// ListDistricts returns all districts
func (h *DistrictHandler) ListDistricts(c *gin.Context) {
	districts, err := h.db.GetDistricts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, districts)
}

// GetDistrict returns a specific district
func (h *DistrictHandler) GetDistrict(c *gin.Context) {
	name := c.Param("name")
	district, err := h.db.GetDistrictByName(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if district == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "District not found"})
		return
	}
	c.JSON(http.StatusOK, district)
}

// CreateDistrict creates a new district
func (h *DistrictHandler) CreateDistrict(c *gin.Context) {
	var district models.District
	if err := c.ShouldBindJSON(&district); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if district.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "District name is required"})
		return
	}

	if err := h.db.UpdateDistrict(district); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, district)
}

// UpdateDistrict updates an existing district
func (h *DistrictHandler) UpdateDistrict(c *gin.Context) {
	name := c.Param("name")
	var district models.District
	if err := c.ShouldBindJSON(&district); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Ensure the name in the URL matches the name in the body
	if district.Name != name {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name in URL does not match name in body"})
		return
	}

	if err := h.db.UpdateDistrict(district); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, district)
}

// DeleteDistrict deletes a district
func (h *DistrictHandler) DeleteDistrict(c *gin.Context) {
	name := c.Param("name")
	if err := h.db.DeleteDistrict(name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
