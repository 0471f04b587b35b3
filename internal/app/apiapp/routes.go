package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mangala-lk/backend/internal/config"
	"github.com/mangala-lk/backend/internal/domain/enums"
	activitysvc "github.com/mangala-lk/backend/internal/services/activity"
	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	convsvc "github.com/mangala-lk/backend/internal/services/conversations"
	notifsvc "github.com/mangala-lk/backend/internal/services/notifications"
	photosvc "github.com/mangala-lk/backend/internal/services/photos"
	profilesvc "github.com/mangala-lk/backend/internal/services/profiles"
	proposalsvc "github.com/mangala-lk/backend/internal/services/proposals"
	usersvc "github.com/mangala-lk/backend/internal/services/users"
	"github.com/mangala-lk/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService         *authsvc.Service
	ProfileService      *profilesvc.Service
	PhotoService        *photosvc.Service
	ProposalService     *proposalsvc.Service
	ConversationService *convsvc.Service
	NotificationService *notifsvc.Service
	ActivityService     *activitysvc.Service
	UserService         *usersvc.Service
	Logger              *zap.Logger
	Config              config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	photoHandler := handlers.NewPhotoHandler(deps.PhotoService)
	proposalHandler := handlers.NewProposalHandler(deps.ProposalService)
	messageHandler := handlers.NewMessageHandler(deps.ConversationService)
	notificationHandler := handlers.NewNotificationHandler(deps.NotificationService)
	activityHandler := handlers.NewActivityHandler(deps.ActivityService)
	userHandler := handlers.NewUserHandler(deps.UserService)
	adminHandler := handlers.NewAdminHandler(deps.UserService)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	adminMW := RequireRole(enums.RoleAdmin)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/profile", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", profileHandler.GetOwn)
		r.Post("/", profileHandler.Upsert)
		r.Put("/", profileHandler.Upsert)
		r.Route("/photos", func(r chi.Router) {
			r.Post("/upload", photoHandler.Upload)
			r.Put("/{photoID}/main", photoHandler.SetMain)
			r.Delete("/{photoID}", photoHandler.Delete)
		})
		r.Get("/{userID}", profileHandler.Get)
	})
	r.With(authMW).Get("/users/{userID}/photos", photoHandler.List)

	r.Route("/proposals", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/send", proposalHandler.Send)
		r.Get("/", proposalHandler.List)
		r.Post("/{proposalID}/respond", proposalHandler.Respond)
		r.Post("/{proposalID}/withdraw", proposalHandler.Withdraw)
	})

	r.Route("/messages", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", messageHandler.List)
		r.Post("/", messageHandler.Send)
		r.Get("/{conversationID}", messageHandler.Get)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", notificationHandler.List)
		r.Post("/mark-read", notificationHandler.MarkRead)
		r.With(adminMW).Post("/create", notificationHandler.Create)
	})

	r.Route("/logs/activity", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", activityHandler.Log)
		r.With(adminMW).Get("/", activityHandler.Query)
	})

	r.With(authMW).Get("/users/me/summary", userHandler.Summary)

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW, adminMW)
		r.Get("/users/{userID}", adminHandler.GetUser)
		r.Post("/users/{userID}/suspend", adminHandler.SuspendUser)
		r.Post("/users/{userID}/activate", adminHandler.ActivateUser)
		r.Post("/users/{userID}/verify", adminHandler.VerifyUser)
		r.Post("/profiles/{profileID}/approve", adminHandler.ApproveProfile)
		r.Post("/profiles/{profileID}/refuse", adminHandler.RefuseProfile)
		r.Post("/photos/{photoID}/approve", adminHandler.ApprovePhoto)
	})
}
