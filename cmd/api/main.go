package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"wingman_go_backend/cmd/api/config"
	"wingman_go_backend/internal/api"
	"wingman_go_backend/internal/auth"
	"wingman_go_backend/internal/broker"
	"wingman_go_backend/internal/database"
	"wingman_go_backend/internal/guest"
	"wingman_go_backend/internal/services"
	"wingman_go_backend/internal/wsocket"

	"github.com/gorilla/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set in the environment")
	}

	mapsAPIKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if mapsAPIKey == "" {
		log.Fatal("GOOGLE_MAPS_API_KEY is not set in the environment")
	}

	ctx := context.Background()

	database.InitDB()

	cfg := config.NewConfig()

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(geminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}
	defer genaiClient.Close()

	// Initialize internal services
	mapsService := services.NewMapsService(mapsAPIKey)
	toolDispatcher := services.NewToolDispatcher(mapsService)
	orchestrator := services.NewChatOrchestrator(genaiClient, toolDispatcher, cfg.ChatModelName, cfg.MaxModelRounds)

	conversationService := services.NewConversationServiceDB(database.DB)
	dateService := services.NewDateServiceDB(database.DB)
	userService := services.NewUserService(database.DB)
	pdfService := services.NewPDFService()

	messageBroker := broker.NewBroker()

	chatTurnService := services.NewChatTurnService(
		orchestrator,
		conversationService,
		dateService,
		userService,
		messageBroker,
		cfg.RatedDateHistoryLimit,
	)

	guestManager := guest.NewManager(cfg.GuestMessageLimit, cfg.GuestSessionDuration)

	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173" // Default to your local frontend
	}

	// CORS middleware configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(allowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// WebSocket upgrader
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // TODO: Implement a more secure check in production
		},
	}

	wsHandler := wsocket.NewHandler(chatTurnService, upgrader)

	api.SetupRoutes(r, chatTurnService, conversationService, dateService, userService, mapsService, pdfService, guestManager)
	auth.SetupRoutes(r, userService)

	r.GET("/ws/chat", auth.AuthMiddleware(userService), func(c *gin.Context) {
		user, _ := c.Get("user")
		wsHandler.HandleWebSocket(c.Writer, c.Request, user, messageBroker)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
