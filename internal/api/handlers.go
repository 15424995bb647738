package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"bakehouse/internal/inventory"
	"bakehouse/internal/models"
	"bakehouse/internal/units"
)

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// Catalog handlers

func (s *Server) ListIngredients(c *gin.Context) {
	var ingredients []models.Ingredient
	if err := s.db.Preload("Variants").Order("name ASC").Find(&ingredients).Error; err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (s *Server) CreateIngredient(c *gin.Context) {
	var ing models.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ing.Name == "" || !units.Known(ing.CanonicalUnit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and a known canonical_unit are required"})
		return
	}
	if err := s.db.Create(&ing).Error; err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

func (s *Server) GetIngredient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var ing models.Ingredient
	if err := s.db.Preload("Variants").First(&ing, id).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			s.renderError(c, &inventory.NotFoundError{IngredientID: id})
			return
		}
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (s *Server) UpdateIngredient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var ing models.Ingredient
	if err := s.db.First(&ing, id).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			s.renderError(c, &inventory.NotFoundError{IngredientID: id})
			return
		}
		s.renderError(c, err)
		return
	}

	var update models.Ingredient
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	update.ID = ing.ID
	update.CreatedAt = ing.CreatedAt
	if err := s.db.Save(&update).Error; err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, update)
}

func (s *Server) DeleteIngredient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.db.Delete(&models.Ingredient{}, "id = ?", id).Error; err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stock handlers

func (s *Server) ListLots(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	withExhausted := c.Query("include_exhausted") == "true"
	lots, err := s.service.Lots(id, withExhausted)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

func (s *Server) AddLot(c *gin.Context) {
	var lot models.InventoryLot
	if err := c.ShouldBindJSON(&lot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !units.Known(lot.Unit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a known unit is required"})
		return
	}
	if err := s.service.AddLot(c.Request.Context(), &lot); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

func (s *Server) RecordPurchase(c *gin.Context) {
	var purchase models.Purchase
	if err := c.ShouldBindJSON(&purchase); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !units.Known(purchase.Unit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a known unit is required"})
		return
	}
	lot, err := s.service.RecordPurchase(c.Request.Context(), &purchase)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"purchase": purchase, "lot": lot})
}

func (s *Server) ListPurchases(c *gin.Context) {
	query := s.db.Order("purchased_at DESC")
	if raw := c.Query("ingredient_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient_id"})
			return
		}
		query = query.Where("ingredient_id = ?", uint(id))
	}
	var purchases []models.Purchase
	if err := query.Find(&purchases).Error; err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

// consumeRequest is the body of POST /inventory/consume. The quantity
// is in the ingredient's canonical unit.
type consumeRequest struct {
	IngredientID uint            `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

func (s *Server) Consume(c *gin.Context) {
	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := s.service.Consume(c.Request.Context(), req.IngredientID, req.Quantity)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Recipe handlers

func (s *Server) ListRecipes(c *gin.Context) {
	var recipes []models.Recipe
	if err := s.db.Preload("Ingredients").Order("name ASC").Find(&recipes).Error; err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (s *Server) CreateRecipe(c *gin.Context) {
	var recipe models.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if recipe.Name == "" || len(recipe.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and at least one ingredient are required"})
		return
	}
	if err := s.db.Create(&recipe).Error; err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (s *Server) GetRecipe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var recipe models.Recipe
	if err := s.db.Preload("Ingredients").First(&recipe, id).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
			return
		}
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// assembleRequest is the body of POST /recipes/:id/assemble.
type assembleRequest struct {
	Batches        int  `json:"batches"`
	AllowShortfall bool `json:"allow_shortfall"`
}

func (s *Server) AssembleRecipe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req := assembleRequest{Batches: 1}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := s.assembler.Assemble(c.Request.Context(), id, req.Batches, req.AllowShortfall)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if !report.Committed {
		// rolled back; the report says what was missing
		c.JSON(http.StatusConflict, report)
		return
	}
	c.JSON(http.StatusOK, report)
}
