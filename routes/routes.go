package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salonpro-gateway/config"
	"salonpro-gateway/controllers"
	"salonpro-gateway/session"
	"salonpro-gateway/utils"
)

type Deps struct {
	Sessions      *session.Manager
	Cookie        utils.CookieOptions
	CORSOrigins   []string
	Public        controllers.PublicController
	Notifications controllers.NotificationController
	Logger        *slog.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := make(map[string]bool, len(d.CORSOrigins))
	for _, o := range d.CORSOrigins {
		origins[o] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return origins[origin]
		},
	}))

	r.Use(config.PerformanceLogger(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(utils.SessionMiddleware(d.Sessions, d.Cookie))

	auth := r.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
		auth.POST("/logout", controllers.Logout)
		auth.GET("/me", controllers.Me)

		auth.POST("/refresh-user", utils.AuthMiddleware(), controllers.RefreshUser)
	}

	// Public booking site, by slug and on the legacy tree where the salon
	// comes from the session.
	for _, public := range []*gin.RouterGroup{r.Group("/s/:slug"), r.Group("/public")} {
		public.GET("/services", d.Public.GetServices)
		public.GET("/categories", d.Public.GetCategories)
		public.GET("/employees", d.Public.GetEmployees)
		public.GET("/available-slots", d.Public.GetAvailableSlots)
		public.POST("/booking", d.Public.CreateBooking)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		api.GET("/tenant", controllers.GetTenant)
		api.POST("/tenant/refresh", controllers.RefreshTenant)
		api.GET("/tenants", controllers.ListTenants)

		admin := api.Group("/admin")
		{
			admin.PUT("/tenant", controllers.SelectTenant)
			admin.DELETE("/tenant", controllers.ClearTenant)
		}

		api.GET("/theme", controllers.GetTheme)
		api.GET("/theme.css", controllers.GetThemeCSS)
		api.PUT("/theme", controllers.UpdateTheme)
		api.DELETE("/theme", controllers.ResetTheme)

		api.GET("/dashboard", controllers.GetDashboardOverview)

		api.GET("/clients", controllers.GetClients)
		api.GET("/clients/:id", controllers.GetClient)
		api.GET("/employees", controllers.GetEmployees)
		api.GET("/employees/:id", controllers.GetEmployee)
		api.GET("/services", controllers.GetServices)
		api.GET("/services/:id", controllers.GetService)
		api.GET("/categories", controllers.GetCategories)
		api.GET("/payments", controllers.GetPayments)
		api.GET("/payments/:id", controllers.GetPayment)
		api.GET("/opening-hours", controllers.GetOpeningHours)

		appointments := api.Group("/appointments")
		{
			appointments.GET("/view", controllers.GetAppointmentsView)
			appointments.PATCH("/view", controllers.UpdateAppointmentsView)
			appointments.POST("/view/navigate", controllers.NavigateAppointmentsView)
			appointments.GET("/permissions", controllers.GetAppointmentPermissions)

			appointments.POST("", controllers.CreateAppointment)
			appointments.GET("/:id", controllers.GetAppointment)
			appointments.DELETE("/:id", controllers.DeleteAppointment)
			appointments.POST("/:id/confirm", controllers.ConfirmAppointment)
			appointments.POST("/:id/start", controllers.StartAppointment)
			appointments.POST("/:id/complete", controllers.CompleteAppointment)
			appointments.POST("/:id/cancel", controllers.CancelAppointment)
			appointments.POST("/:id/reschedule", controllers.RescheduleAppointment)
			appointments.POST("/:id/move", controllers.MoveAppointment)
			appointments.GET("/:id/move-candidates", controllers.GetMoveCandidates)
			appointments.GET("/:id/notifications", d.Notifications.GetAppointmentNotifications)
		}
	}

	return r
}
