package routes

import (
	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/controllers"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/middleware"
)

// Controllers groups every HTTP handler the router mounts
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Training     *controllers.TrainingController
	Match        *controllers.MatchController
	Calendar     *controllers.CalendarController
	Announcement *controllers.AnnouncementController
	Assignment   *controllers.AssignmentController
	Fundraising  *controllers.FundraisingController
	Notification *controllers.NotificationController
	Performance  *controllers.PerformanceController
	Report       *controllers.ReportController

	// Realtime upgrades /ws connections; nil disables the endpoint
	Realtime gin.HandlerFunc
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")
	require := authMiddleware.Require

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", c.Auth.Signup)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
	}

	// Landing page sponsorship form
	v1.POST("/sponsorships", c.Fundraising.SubmitSponsorship)

	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	if c.Realtime != nil {
		authenticated.GET("/ws", c.Realtime)
	}

	me := authenticated.Group("/me")
	{
		me.GET("", c.User.GetProfile)
		me.PUT("", c.User.UpdateProfile)
		me.POST("/avatar", c.User.UploadAvatar)
		me.GET("/navigation", c.User.Navigation)
		me.GET("/performance-notes", c.Performance.MyNotes)
	}

	authenticated.GET("/directory", require(appauth.OpDirectoryView), c.User.Directory)

	users := authenticated.Group("/users", require(appauth.OpUsersManage))
	{
		users.GET("", c.User.ListUsers)
		users.POST("", c.User.CreateUser)
		users.GET("/:id", c.User.GetUser)
		users.PUT("/:id/role", c.User.UpdateRole)
		users.DELETE("/:id", c.User.DeleteUser)
	}

	assignments := authenticated.Group("/assignments")
	{
		assignments.GET("", require(appauth.OpAssignmentsManage), c.Assignment.ListAssignments)
		assignments.POST("", require(appauth.OpAssignmentsManage), c.Assignment.Assign)
		assignments.DELETE("/:id", require(appauth.OpAssignmentsManage), c.Assignment.Unassign)
		assignments.GET("/mine", require(appauth.OpAssignmentsOwn), c.Assignment.ListMyStudents)
	}

	authenticated.GET("/calendar", require(appauth.OpCalendarView), c.Calendar.Events)

	trainings := authenticated.Group("/trainings")
	{
		trainings.GET("", c.Training.ListTrainings)
		trainings.GET("/:id", c.Training.GetTraining)
		trainings.POST("", require(appauth.OpTrainingCreate), c.Training.CreateTraining)
		trainings.PATCH("/:id", require(appauth.OpTrainingUpdate), c.Training.UpdateTraining)
		trainings.DELETE("/:id", require(appauth.OpTrainingDelete), c.Training.DeleteTraining)

		trainings.POST("/:id/join", require(appauth.OpTrainingJoin), c.Training.JoinTraining)
		trainings.DELETE("/:id/join", require(appauth.OpTrainingLeave), c.Training.LeaveTraining)

		trainings.POST("/:id/attendance", require(appauth.OpAttendanceMark), c.Training.MarkAttendance)
		trainings.PUT("/:id/attendance", require(appauth.OpAttendanceMark), c.Training.BulkMarkAttendance)
		trainings.GET("/:id/attendance/export", require(appauth.OpAttendanceExport), c.Report.ExportTrainingAttendance)
	}

	matches := authenticated.Group("/matches")
	{
		matches.GET("", c.Match.ListMatches)
		matches.GET("/:id", c.Match.GetMatch)
		matches.POST("", require(appauth.OpMatchCreate), c.Match.CreateMatch)
		matches.PATCH("/:id", require(appauth.OpMatchUpdate), c.Match.UpdateMatch)
		matches.PUT("/:id/result", require(appauth.OpMatchUpdate), c.Match.SetResult)
		matches.DELETE("/:id", require(appauth.OpMatchDelete), c.Match.DeleteMatch)

		matches.POST("/:id/join", require(appauth.OpMatchJoin), c.Match.JoinMatch)
		matches.DELETE("/:id/join", require(appauth.OpMatchLeave), c.Match.LeaveMatch)
		matches.PATCH("/:id/roster/:studentId", require(appauth.OpRosterManage), c.Match.UpdateRosterEntry)

		matches.GET("/:id/attendance", c.Match.GetAttendance)
		matches.PUT("/:id/attendance", require(appauth.OpMatchAttendanceMark), c.Match.BulkMarkAttendance)
	}

	announcements := authenticated.Group("/announcements")
	{
		announcements.GET("", c.Announcement.ListAnnouncements)
		announcements.GET("/unread", c.Announcement.Unread)
		announcements.GET("/:id", c.Announcement.GetAnnouncement)
		announcements.POST("/:id/read", c.Announcement.MarkRead)
		announcements.POST("", require(appauth.OpAnnouncementCreate), c.Announcement.CreateAnnouncement)
		announcements.PATCH("/:id", require(appauth.OpAnnouncementUpdate), c.Announcement.UpdateAnnouncement)
		announcements.DELETE("/:id", require(appauth.OpAnnouncementDelete), c.Announcement.DeleteAnnouncement)
	}

	campaigns := authenticated.Group("/campaigns")
	{
		campaigns.GET("", require(appauth.OpFundraisingView), c.Fundraising.ListCampaigns)
		campaigns.GET("/:id", require(appauth.OpFundraisingView), c.Fundraising.GetCampaign)
		campaigns.POST("", require(appauth.OpCampaignManage), c.Fundraising.CreateCampaign)
		campaigns.PATCH("/:id", require(appauth.OpCampaignManage), c.Fundraising.UpdateCampaign)
		campaigns.DELETE("/:id", require(appauth.OpCampaignManage), c.Fundraising.DeleteCampaign)
	}

	sponsorships := authenticated.Group("/sponsorships")
	{
		sponsorships.GET("", require(appauth.OpFundraisingView), c.Fundraising.ListSponsorships)
		sponsorships.PUT("/:id/status", require(appauth.OpSponsorshipReview), c.Fundraising.ReviewSponsorship)
	}

	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("", c.Notification.ListNotifications)
		notifications.POST("", require(appauth.OpNotificationCreate), c.Notification.CreateNotification)
		notifications.POST("/read-all", c.Notification.MarkAllRead)
		notifications.POST("/:id/read", c.Notification.MarkRead)
	}

	notes := authenticated.Group("/performance-notes", require(appauth.OpPerformanceRead))
	{
		notes.GET("", c.Performance.ListNotes)
		notes.GET("/export", c.Report.ExportPerformanceNotes)
		notes.POST("", require(appauth.OpPerformanceWrite), c.Performance.CreateNote)
		notes.DELETE("/:id", require(appauth.OpPerformanceWrite), c.Performance.DeleteNote)
	}

	analytics := authenticated.Group("/analytics", require(appauth.OpAnalyticsView))
	{
		analytics.GET("", c.Report.Analytics)
		analytics.GET("/export", c.Report.ExportAnalytics)
	}
}
