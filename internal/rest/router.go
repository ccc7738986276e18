package rest

import (
	"net/http"
	"time"

	"arkom-be/internal/commission"
	"arkom-be/internal/config"
	"arkom-be/internal/listing"
	"arkom-be/internal/metrics"
	"arkom-be/internal/notification"
	"arkom-be/internal/profile"
	"arkom-be/internal/taxonomy"
	"arkom-be/internal/theme"
	"arkom-be/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Taxonomy      taxonomy.Service
	Listings      listing.Service
	Commissions   commission.Service
	Notifications notification.Service
	Profiles      profile.Service
	Themes        theme.Service
}

type handler struct {
	svc Services
}

// NewRouter builds the HTTP API. Identity is resolved by the net/http
// middleware in front of it; the router only enforces it.
func NewRouter(svc Services, corsOrigins []string) *gin.Engine {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{config.DefaultCORSOrigin}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Device-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := &handler{svc: svc}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "counters": metrics.Snapshot()})
	})

	api := r.Group("/api/v1")

	// ---------- Public ----------

	api.GET("/catalogues", h.catalogueTree)
	api.GET("/categories/:id/filters", h.categoryFilters)
	api.GET("/listings", h.browseListings)
	api.GET("/listings/:id", h.getListing)

	// ---------- Authenticated ----------

	user := api.Group("")
	user.Use(requireAuth())
	{
		user.POST("/listings", h.createListing)
		user.PATCH("/listings/:id", h.updateListing)
		user.DELETE("/listings/:id", h.deleteListing)
		user.GET("/me/listings", h.myListings)

		user.POST("/commissions", h.requestCommission)
		user.GET("/commissions/incoming", h.incomingCommissions)
		user.GET("/commissions/outgoing", h.outgoingCommissions)
		user.POST("/commissions/:id/respond", h.respondCommission)

		user.GET("/notifications", h.pollNotifications)
		user.POST("/notifications/:id/read", h.markNotificationRead)
		user.POST("/notifications/read-all", h.markAllNotificationsRead)

		user.GET("/profile", h.getProfile)
		user.PUT("/profile", h.upsertProfile)

		user.GET("/theme", h.getTheme)
		user.PUT("/theme", h.updateTheme)
		user.GET("/theme/css", h.themeCSS)
	}

	// ---------- Admin ----------

	admin := api.Group("/admin")
	admin.Use(requireAuth(), requireAdmin())
	{
		admin.GET("/catalogues", h.listCatalogues)
		admin.POST("/catalogues", h.createCatalogue)
		admin.PUT("/catalogues/order", h.reorderCatalogues)
		admin.PATCH("/catalogues/:id", h.updateCatalogue)
		admin.DELETE("/catalogues/:id", h.deleteCatalogue)

		admin.GET("/catalogues/:id/categories", h.listCategories)
		admin.PUT("/catalogues/:id/categories/order", h.reorderCategories)
		admin.POST("/categories", h.createCategory)
		admin.PATCH("/categories/:id", h.updateCategory)
		admin.DELETE("/categories/:id", h.deleteCategory)

		admin.GET("/categories/:id/filters", h.assignedFilters)
		admin.PUT("/categories/:id/filters/:filterId", h.assignFilter)
		admin.DELETE("/categories/:id/filters/:filterId", h.unassignFilter)

		admin.GET("/filters", h.listFilters)
		admin.POST("/filters", h.createFilter)
		admin.PUT("/filters/order", h.reorderFilters)
		admin.PATCH("/filters/:id", h.updateFilter)
		admin.DELETE("/filters/:id", h.deleteFilter)

		admin.POST("/filters/:id/options", h.createOption)
		admin.PUT("/filters/:id/options/order", h.reorderOptions)
		admin.PATCH("/options/:id", h.updateOption)
		admin.DELETE("/options/:id", h.deleteOption)
	}

	return r
}

func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetUserIDFromContext(c.Request.Context()); !ok {
			fail(c, http.StatusUnauthorized, "authentication required")
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.IsAdmin(c.Request.Context()) {
			fail(c, http.StatusForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

// currentUser is only called behind requireAuth.
func currentUser(c *gin.Context) int64 {
	id, _ := utils.GetUserIDFromContext(c.Request.Context())
	return id
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
