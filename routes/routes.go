package routes

import (
	"asset_borrow_tracker/app"
	"asset_borrow_tracker/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	itemCtl := controllers.NewItemController(s)
	catCtl := controllers.NewCategoryController(s)
	borrowCtl := controllers.NewBorrowController(s)
	maintCtl := controllers.NewMaintenanceController(s)
	userCtl := controllers.NewUserController(s)
	dashCtl := controllers.NewDashboardController(s)
	sysCtl := controllers.NewSystemController(s)
	auditCtl := controllers.NewAuditController(s)
	eventsCtl := controllers.NewEventsController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.Tokens, a.AppSessions(), a.Repo, a.Config)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(a.Repo, a.RDB, a.Config.SeenThrottle)

	api := r.Group("/api")

	// ------------------------------
	// 登录（公开）/ 登出 / 当前用户
	// ------------------------------
	api.POST("/auth/login", authCtl.Login)
	authed := api.Group("", authMW, seenMW)
	authed.POST("/auth/logout", authCtl.Logout)
	authed.GET("/auth/me", authCtl.Me)

	admin := authed.Group("", adminMW)

	// ------------------------------
	// 物品
	// ------------------------------
	items := authed.Group("/items")
	{
		items.GET("", itemCtl.ListItems) // ?page=&size=
		items.GET("/available", itemCtl.ListAvailable)
		items.GET("/search", itemCtl.Search) // ?query=&category=&status=&sortBy=&order=
		items.GET("/:id", itemCtl.GetItem)
		items.GET("/:id/qrcode", itemCtl.QRCode)
	}
	itemsAdmin := admin.Group("/items")
	{
		itemsAdmin.GET("/overview", itemCtl.Overview) // ?q=&status=&page=&size=
		itemsAdmin.GET("/:id/maintenance", itemCtl.MaintenanceHistory)
		itemsAdmin.POST("", itemCtl.CreateItem)
		itemsAdmin.POST("/bulk", itemCtl.CreateBulkItems)
		itemsAdmin.PUT("/:id", itemCtl.UpdateItem)
	}

	// ------------------------------
	// 分类
	// ------------------------------
	authed.GET("/categories", catCtl.List)
	admin.POST("/categories", catCtl.Create)

	// ------------------------------
	// 借还
	// ------------------------------
	authed.POST("/borrow", borrowCtl.Create)
	authed.GET("/borrow/mine", borrowCtl.Mine)
	authed.PUT("/borrow/:id/return", borrowCtl.Return)
	admin.GET("/borrow", borrowCtl.List)
	admin.PUT("/borrow/:id/approve", borrowCtl.Approve)
	admin.PUT("/borrow/:id/reject", borrowCtl.Reject)

	// ------------------------------
	// 维护（仅管理员）
	// ------------------------------
	admin.POST("/maintenance/:id/start", maintCtl.Start)
	admin.POST("/maintenance/:id/complete", maintCtl.Complete)

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := admin.Group("/users")
	{
		users.GET("", userCtl.ListUsers) // ?q=&page=&size=
		users.POST("", userCtl.CreateUser)
		users.PUT("/:id/role", userCtl.UpdateRole)
	}

	// ------------------------------
	// 管理面板 / 系统 / 审计
	// ------------------------------
	admin.GET("/dashboard", dashCtl.Summary)
	authed.GET("/system/health", sysCtl.Health)
	admin.POST("/system/cleanup", sysCtl.Cleanup)
	admin.GET("/audit", auditCtl.List)

	// ------------------------------
	// 实时通知（SSE）
	// ------------------------------
	authed.GET("/events", eventsCtl.UserStream)
	admin.GET("/events/admin", eventsCtl.AdminStream)
}
