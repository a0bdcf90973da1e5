package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yigit/schooladmin/internal/app/controllers"
	"github.com/yigit/schooladmin/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth          *controllers.AuthController
	Course        *controllers.CourseController
	Assignment    *controllers.AssignmentController
	Communication *controllers.CommunicationController
	Directory     *controllers.DirectoryController
	Health        *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	SetupSwagger(router)

	api := router.Group("/api")

	// --- Public routes ---
	api.POST("/signup/student", h.Auth.SignupStudent)
	api.POST("/signup/request", h.Auth.RequestSignup)
	api.POST("/login", h.Auth.Login)
	api.GET("/request-status/:identifier", h.Auth.RequestStatus)
	api.POST("/admin/login", h.Auth.AdminLogin)
	api.POST("/token/refresh", h.Auth.RefreshToken)
	api.GET("/departments", h.Directory.ListDepartments)

	// --- Operator routes ---
	admin := api.Group("/admin")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.AdminRequired())
	{
		admin.GET("/pending-requests", h.Auth.PendingRequests)
		admin.POST("/approve/:requestId", h.Auth.Approve)
		admin.POST("/reject/:requestId", h.Auth.Reject)
		admin.GET("/users", h.Auth.ListUsers)
	}

	// --- Authenticated routes ---
	// Role checks that depend on stored data happen in the services.
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/me", h.Auth.Me)
		authenticated.POST("/logout", h.Auth.Logout)

		authenticated.GET("/courses", h.Course.ListCourses)
		authenticated.POST("/courses", h.Course.CreateCourse)
		authenticated.POST("/enrollments", h.Course.Enroll)

		authenticated.GET("/assignments", h.Assignment.ListAssignments)
		authenticated.POST("/assignments", h.Assignment.CreateAssignment)
		authenticated.POST("/assignments/:id/submit", h.Assignment.Submit)
		authenticated.GET("/assignments/:id/submissions", h.Assignment.ListSubmissions)
		authenticated.POST("/submissions/:id/grade", h.Assignment.Grade)
		authenticated.GET("/grades", h.Assignment.Grades)

		authenticated.GET("/faculty", h.Directory.ListFaculty)
		authenticated.GET("/classmates", h.Directory.ListClassmates)

		authenticated.GET("/schedule", h.Communication.ListSchedule)
		authenticated.POST("/schedule", h.Communication.CreateSchedule)
		authenticated.GET("/announcements", h.Communication.ListAnnouncements)
		authenticated.POST("/announcements", h.Communication.CreateAnnouncement)
		authenticated.GET("/notifications", h.Communication.ListNotifications)
		authenticated.POST("/notifications/:id/read", h.Communication.MarkNotificationRead)
		authenticated.GET("/reports", h.Communication.Reports)
	}
}
