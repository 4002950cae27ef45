package router

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/handlers"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/media"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/middleware"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/notify"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/scheduler"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/blocking"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/content"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/conversation"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/discovery"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/exchange"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/friendship"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/services/profile"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/config"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/firebase"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, firebaseApp *firebase.App) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.Notification{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	st := store.NewStore(mgClient, cfg.MongoDatabase)
	if err := st.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to ensure MongoDB indexes: %v", err)
	}
	log.Println("MongoDB indexes ensured.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	db := st.Database()

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	relationshipRepo := repositories.NewMongoRelationshipRepository(db)
	conversationRepo := repositories.NewMongoConversationRepository(db)
	contentRepo := repositories.NewMongoContentRepository(db)
	communityRepo := repositories.NewMongoCommunityRepository(db)
	exchangeRepo := repositories.NewMongoExchangeRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	// --- Collaborators ---
	emitter := notify.NewOutboxEmitter(notificationRepo, firebaseApp.MessagingClient)

	var mediaStore media.Store = media.Nop{}
	if firebaseApp.Bucket != nil {
		mediaStore = media.NewFirebaseStorage(firebaseApp.Bucket, cfg.StorageBucket)
	}

	// The scheduler callback closes over the exchange service, which is
	// constructed below with the scheduler itself.
	var exchangeSvc *exchange.Service
	sched := scheduler.NewInProcess(func(p scheduler.Payload) {
		if p.Kind == exchange.PayloadKindLetter && exchangeSvc != nil {
			exchangeSvc.DeliverLetter(context.Background(), p.ID)
		}
	})

	// --- Initialize Services ---
	blockingSvc := blocking.NewService(st, userRepo, relationshipRepo, conversationRepo,
		contentRepo, communityRepo, exchangeRepo, emitter, mediaStore, sched, firebaseApp.AuthClient)
	friendshipSvc := friendship.NewService(st, userRepo, relationshipRepo, blockingSvc, emitter, mediaStore, sched)
	conversationSvc := conversation.NewService(st, relationshipRepo, conversationRepo, emitter, mediaStore)
	discoverySvc := discovery.NewService(userRepo, blockingSvc, mediaStore)
	profileSvc := profile.NewService(st, userRepo, mediaStore)
	contentSvc := content.NewService(st, contentRepo, blockingSvc, mediaStore)
	exchangeSvc = exchange.NewService(st, userRepo, relationshipRepo, exchangeRepo, emitter, sched)

	// --- Protected routes (require Firebase authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.FirebaseAuthMiddleware(firebaseApp.AuthClient))
	log.Println("Firebase authentication middleware applied to /api/v1 group.")

	handlers.NewUserHandler(profileSvc, blockingSvc).RegisterUserRoutes(api)
	handlers.NewFriendshipHandler(friendshipSvc).RegisterFriendshipRoutes(api)
	handlers.NewBlockHandler(blockingSvc).RegisterBlockRoutes(api)
	handlers.NewConversationHandler(conversationSvc).RegisterConversationRoutes(api)
	handlers.NewDiscoveryHandler(discoverySvc).RegisterDiscoveryRoutes(api)
	handlers.NewPostHandler(contentSvc).RegisterPostRoutes(api)
	handlers.NewExchangeHandler(exchangeSvc).RegisterExchangeRoutes(api)
	handlers.NewNotificationHandler(notificationRepo).RegisterNotificationRoutes(api)

	log.Println("All routes configured.")
}
