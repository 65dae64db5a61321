package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/societyos/authhub/internal/authz"
	"github.com/societyos/authhub/internal/middleware"
)

type Deps struct {
	Auth     *AuthHTTP
	Admin    *AdminHTTP
	Services ServicesHTTP
	Bearer   *middleware.BearerAuth
	Engine   *authz.Engine
}

// Register wires the route table. Every protected endpoint declares its
// required role set or permission set statically, after bearer auth.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	user := v1.Group("/user")
	user.POST("/register", d.Auth.Register)
	user.POST("/login", d.Auth.Login)
	user.POST("/refresh-token", d.Auth.Refresh)
	user.POST("/forgot-password", d.Auth.ForgotPassword)
	user.POST("/reset-password", d.Auth.ResetPassword)
	user.POST("/verify-email", d.Auth.VerifyEmail)

	userPriv := v1.Group("/user", d.Bearer.RequireAuth)
	userPriv.POST("/logout", d.Auth.Logout)
	userPriv.POST("/change-password", d.Auth.ChangePassword)

	roles := v1.Group("/roles", d.Bearer.RequireAuth, middleware.RequireRole(authz.RoleAdmin))
	roles.GET("", d.Admin.ListUsers)
	roles.POST("/assign", d.Admin.AssignRole)

	perms := v1.Group("/roles/permissions", d.Bearer.RequireAuth,
		middleware.RequireRole(authz.RoleAdmin),
		middleware.RequirePermissions(d.Engine, authz.PermManageRoles))
	perms.POST("", d.Admin.GrantPermission)
	perms.DELETE("", d.Admin.RevokePermission)

	users := v1.Group("/users", d.Bearer.RequireAuth,
		middleware.RequireRole(authz.RoleAdmin),
		middleware.RequirePermissions(d.Engine, authz.PermReadUsers))
	users.GET("/search", d.Admin.SearchUsers)

	services := v1.Group("/services", d.Bearer.RequireAuth)
	services.GET("/amenities", d.Services.Amenities)
	services.GET("/notices", d.Services.Notices)
	services.GET("/cctv", d.Services.CCTV, middleware.RequireRole(authz.RoleAdmin))
	services.GET("/security-logs", d.Services.SecurityLogs, middleware.RequireRole(authz.RoleAdmin))
	services.GET("/electrical-panel", d.Services.ElectricalPanel, middleware.RequireRole(authz.RoleModerator))
	services.GET("/maintenance-schedule", d.Services.MaintenanceSchedule, middleware.RequireRole(authz.RoleModerator))

	v1.GET("/admin/panel", d.Services.AdminPanel, d.Bearer.RequireAuth,
		middleware.RequirePermissions(d.Engine, authz.PermAccessAdminPanel))
	v1.GET("/moderator/panel", d.Services.ModeratorPanel, d.Bearer.RequireAuth,
		middleware.RequirePermissions(d.Engine, authz.PermAccessModeratorPanel))
}
