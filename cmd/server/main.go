// cmd/server/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/targetly/crm-backend/internal/ai"
	"github.com/targetly/crm-backend/internal/config"
	"github.com/targetly/crm-backend/internal/db"
	"github.com/targetly/crm-backend/internal/handler"
	"github.com/targetly/crm-backend/internal/queue"
	"github.com/targetly/crm-backend/internal/repository"
	"github.com/targetly/crm-backend/internal/service"
	"github.com/targetly/crm-backend/internal/vendor"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	database, err := db.Connect(context.Background(), cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("failed to connect to mongo", "error", err)
		os.Exit(1)
	}

	customerRepo := repository.NewCustomerRepository(database)
	campaignRepo := repository.NewCampaignRepository(database)
	logRepo := repository.NewCommunicationLogRepository(database)

	var translator service.Translator
	var suggester service.MessageSuggester
	if cfg.AIAPIKey != "" {
		client := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
		translator = client
		suggester = client
	} else {
		logger.Warn("AI_API_KEY not set, natural-language segmentation disabled")
	}

	deliveryService := &service.DeliveryService{
		LogRepo:      logRepo,
		CampaignRepo: campaignRepo,
		Logger:       logger,
	}

	var dispatch queue.Queue
	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Error("failed to connect to broker", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		amqpQueue, err := queue.NewAMQPQueue(conn, cfg.DispatchQueue)
		if err != nil {
			logger.Error("failed to declare dispatch queue", "error", err)
			os.Exit(1)
		}
		defer amqpQueue.Close()
		dispatch = amqpQueue
	} else {
		logger.Warn("AMQP_URL not set, running the in-process delivery simulator")
		memQueue := queue.NewInMemoryQueue()
		service.StartLocalVendor(memQueue, vendor.NewSimulator(cfg.VendorSuccessRate), deliveryService, logger)
		dispatch = memQueue
	}

	segmentService := &service.SegmentService{
		CustomerRepo: customerRepo,
		Translator:   translator,
		Logger:       logger,
	}
	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		CustomerRepo: customerRepo,
		LogRepo:      logRepo,
		Segments:     segmentService,
		Suggester:    suggester,
		Queue:        dispatch,
		Logger:       logger,
	}

	router := handler.NewRouter(
		&handler.CampaignHandler{Service: campaignService, Delivery: deliveryService, Logger: logger},
		&handler.DeliveryHandler{Delivery: deliveryService, Logger: logger},
		&handler.CustomerHandler{Repo: customerRepo, Logger: logger},
	)

	logger.Info("server listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
