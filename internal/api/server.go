package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"go.uber.org/zap"

	"bakehouse/internal/inventory"
	"bakehouse/internal/production"
	"bakehouse/internal/stream"
	"bakehouse/internal/units"
)

// Server represents the HTTP surface of the bakery application.
type Server struct {
	Router    *gin.Engine
	db        *gorm.DB
	service   *inventory.Service
	assembler *production.Assembler
	events    *stream.Hub
	log       *zap.Logger
}

// NewServer creates the API server and wires all routes.
func NewServer(db *gorm.DB, service *inventory.Service, assembler *production.Assembler, events *stream.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		Router:    gin.Default(),
		db:        db,
		service:   service,
		assembler: assembler,
		events:    events,
		log:       logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Bakehouse API is running"})
	})

	// Live stock event feed for the desktop UI
	if s.events != nil {
		s.Router.GET("/ws/stock", s.events.HandleWS)
	}

	v1 := s.Router.Group("/api/v1")
	{
		// Catalog
		v1.GET("/units", s.ListUnits)
		v1.GET("/ingredients", s.ListIngredients)
		v1.POST("/ingredients", s.CreateIngredient)
		v1.GET("/ingredients/:id", s.GetIngredient)
		v1.PUT("/ingredients/:id", s.UpdateIngredient)
		v1.DELETE("/ingredients/:id", s.DeleteIngredient)

		// Stock
		v1.GET("/ingredients/:id/lots", s.ListLots)
		v1.POST("/lots", s.AddLot)
		v1.POST("/purchases", s.RecordPurchase)
		v1.GET("/purchases", s.ListPurchases)
		v1.POST("/inventory/consume", s.Consume)

		// Recipes and assembly
		v1.GET("/recipes", s.ListRecipes)
		v1.POST("/recipes", s.CreateRecipe)
		v1.GET("/recipes/:id", s.GetRecipe)
		v1.POST("/recipes/:id/assemble", s.AssembleRecipe)
	}
}

// ListUnits returns all registered unit identifiers.
func (s *Server) ListUnits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"units": units.All()})
}

// renderError maps domain errors to HTTP statuses.
func (s *Server) renderError(c *gin.Context, err error) {
	var notFound *inventory.NotFoundError
	var conversion *units.ConversionError
	var conflict *inventory.ConcurrencyError

	switch {
	case errors.Is(err, inventory.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &conversion):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
