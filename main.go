// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/tomhenman/trustable/internal/config"
	"github.com/tomhenman/trustable/internal/lexicon"
	"github.com/tomhenman/trustable/services"
	"github.com/tomhenman/trustable/workflows"
)

// createDatabaseClient creates a database client using our config structure
func createDatabaseClient(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Port: %s", cfg.Port)
	log.Printf("Database Host: %s", cfg.Database.Host)
	log.Printf("Database Name: %s", cfg.Database.Name)

	if cfg.OpenAIAPIKey == "" {
		log.Printf("WARNING: OpenAI API key not loaded!")
	} else {
		log.Printf("OpenAI API key loaded (length: %d)", len(cfg.OpenAIAPIKey))
	}
	if cfg.AnthropicAPIKey == "" {
		log.Printf("WARNING: Anthropic API key not loaded!")
	} else {
		log.Printf("Anthropic API key loaded (length: %d)", len(cfg.AnthropicAPIKey))
	}

	ctx := context.Background()
	db, err := createDatabaseClient(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Printf("Successfully connected to database")

	repoManager := services.NewRepositoryManager(db)
	log.Printf("Repository manager initialized")

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		log.Printf("Running in development mode - signing key verification disabled")
	}

	// Lexicons ship with compiled defaults; a file path overrides them.
	lex, err := lexicon.Load(cfg.Engine.LexiconPath)
	if err != nil {
		log.Fatalf("Failed to load lexicon: %v", err)
	}
	log.Printf("Lexicon version %s loaded (%d positive, %d negative, %d hedging, %d recommendation terms)",
		lex.Version, len(lex.Positive), len(lex.Negative), len(lex.Hedging), len(lex.Recommendation))

	// Initialize the scoring engine and its collaborators
	extractionService := services.NewExtractionService(&cfg.Engine)
	classificationService := services.NewClassificationService(&cfg.Engine, lex)
	scoringService := services.NewScoringService(&cfg.Engine)
	alertService := services.NewAlertService(&cfg.Engine)
	discoveryService := services.NewCompetitorDiscoveryService(cfg)
	scanService := services.NewScanService(cfg, repoManager, extractionService, classificationService, scoringService, alertService, discoveryService)
	log.Printf("Scoring engine initialized")

	// Create Inngest client
	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "trustable",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		log.Fatalf("Failed to create Inngest client: %v", err)
	}

	// Initialize and register workflows
	log.Printf("Initializing and registering workflows...")

	log.Printf("Initializing NewScanProcessor workflow...")
	scanProcessor := workflows.NewScanProcessor(scanService, cfg)
	scanProcessor.SetClient(client)
	scanProcessor.ProcessScan()

	log.Printf("Initializing NewScheduledProcessor workflow...")
	scheduledProcessor := workflows.NewScheduledProcessor(cfg, scanService)
	scheduledProcessor.SetClient(client)
	scheduledProcessor.DailyScanProcessor()
	scheduledProcessor.WeeklyLoadAnalyzer()

	log.Printf("All processors initialized and functions registered")

	log.Printf("Starting Inngest client...")
	// Create and start server
	h := client.Serve()
	mux := http.NewServeMux()
	mux.Handle("/api/inngest", h)
	log.Printf("Inngest client started successfully...")

	// Root endpoint for ALB health check
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"service":"trustable","status":"running"}`))
	})

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.HandleFunc("/test/trigger-scan", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		businessID := r.URL.Query().Get("business_id")
		if businessID == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"business_id query parameter is required"}`))
			return
		}
		evt := inngestgo.Event{
			Name: "scan.process",
			Data: map[string]interface{}{"business_id": businessID, "triggered_by": "manual_test"},
		}
		result, err := client.Send(r.Context(), evt)
		if err != nil {
			log.Printf("Failed to send test event: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf(`{"error":"Failed to send event: %v"}`, err)))
			return
		}
		log.Printf("Test event sent successfully: %+v", result)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(fmt.Sprintf(`{"status":"success","message":"Scan triggered for business %s","event_ids":["%s"]}`, businessID, result)))
	})

	// Start server
	port := cfg.Port
	log.Printf("Starting Trustable Workflows service on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}
