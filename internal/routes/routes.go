package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"realtycrm/internal/handlers"
	"realtycrm/internal/middleware"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	Reports   *handlers.ReportHandler
	Install   *handlers.InstallHandler
	UI        *handlers.UIHandler
	Health    *handlers.HealthHandler
}

func SetupRoutes(r *gin.Engine, h Handlers, tokens middleware.TokenParser, installed func() bool) *gin.Engine {
	// ---- public
	r.GET("/healthz", h.Health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/login", h.Auth.Login)

	// ---- first-run wizard
	install := r.Group("/install", middleware.RequireUninstalled(installed))
	{
		install.GET("", h.Install.State)
		install.POST("/steps/:step", h.Install.SubmitStep)
		install.POST("/test-connection", h.Install.TestConnection)
		install.POST("/back", h.Install.Back)
	}

	// ---- protected
	api := r.Group("/", middleware.AuthMiddleware(tokens))
	{
		api.GET("/me", h.Auth.Me)
		api.GET("/dashboard", h.Dashboard.GetDashboard)
		api.GET("/leads", h.Dashboard.ListLeads)
		api.GET("/opportunities", h.Dashboard.ListOpportunities)
		api.GET("/site-visits", h.Dashboard.ListSiteVisits)
		api.GET("/projects", h.Dashboard.ListProjects)
		api.GET("/reports/leads.pdf", h.Reports.LeadsPDF)

		ui := api.Group("/ui/panels")
		{
			ui.GET("", h.UI.List)
			ui.GET("/:name", h.UI.Get)
			ui.POST("/close-all", h.UI.CloseAll)
			ui.POST("/:name/open", h.UI.Open)
			ui.POST("/:name/close", h.UI.Close)
			ui.POST("/:name/toggle", h.UI.Toggle)
		}
	}

	// ---- admin
	admin := r.Group("/", middleware.AuthMiddleware(tokens), middleware.RequireAdmin())
	{
		admin.POST("/refresh", h.Dashboard.Refresh)
		admin.POST("/reports/digest", h.Reports.SendDigest)
	}

	return r
}
