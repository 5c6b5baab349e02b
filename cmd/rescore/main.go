package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/google/uuid"
	"github.com/tomhenman/trustable/internal/config"
	"github.com/tomhenman/trustable/internal/lexicon"
	"github.com/tomhenman/trustable/internal/models"
	"github.com/tomhenman/trustable/services"
)

// Standalone one-off tool: intentionally duplicates DB bootstrapping from main.go
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

// rescore replays the deterministic half of the pipeline over stored
// response texts: extract, classify, aggregate. No AI platform is called
// and nothing is written unless -write is passed, so it doubles as a
// verification that a stored score is reproducible from its inputs.
func main() {
	businessIDFlag := flag.String("business", "", "business UUID to rescore (required)")
	scanIDFlag := flag.String("scan", "", "restrict to a single scan UUID (optional)")
	write := flag.Bool("write", false, "persist the recomputed score as a new row")
	flag.Parse()

	if *businessIDFlag == "" {
		log.Fatal("Usage: rescore -business <uuid> [-scan <uuid>] [-write]")
	}

	businessID, err := uuid.Parse(*businessIDFlag)
	if err != nil {
		log.Fatalf("Invalid business ID: %v", err)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file loaded: %v", err)
	}
	cfg := config.Load()

	ctx := context.Background()
	db, err := createDatabaseClient(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repos := services.NewRepositoryManager(db)

	lex, err := lexicon.Load(cfg.Engine.LexiconPath)
	if err != nil {
		log.Fatalf("Failed to load lexicon: %v", err)
	}

	extraction := services.NewExtractionService(&cfg.Engine)
	classification := services.NewClassificationService(&cfg.Engine, lex)
	scoring := services.NewScoringService(&cfg.Engine)

	business, err := repos.BusinessRepo.GetByID(ctx, businessID)
	if err != nil {
		log.Fatalf("Failed to load business: %v", err)
	}
	if business == nil {
		log.Fatalf("Business %s not found", businessID)
	}
	identity := business.Identity()

	var stored []*models.ResponseAnalysis
	if *scanIDFlag != "" {
		scanID, err := uuid.Parse(*scanIDFlag)
		if err != nil {
			log.Fatalf("Invalid scan ID: %v", err)
		}
		stored, err = repos.AnalysisRepo.GetByScan(ctx, scanID)
		if err != nil {
			log.Fatalf("Failed to load analyses for scan %s: %v", scanID, err)
		}
	} else {
		stored, err = repos.AnalysisRepo.GetByBusiness(ctx, businessID, 1000)
		if err != nil {
			log.Fatalf("Failed to load analyses for business %s: %v", businessID, err)
		}
	}
	if len(stored) == 0 {
		log.Fatalf("No stored analyses found for business %s", business.Name)
	}

	// Group by scan so each batch is rescored on its own.
	byScan := make(map[uuid.UUID][]*models.ResponseAnalysis)
	var scanOrder []uuid.UUID
	for _, analysis := range stored {
		if _, seen := byScan[analysis.ScanID]; !seen {
			scanOrder = append(scanOrder, analysis.ScanID)
		}
		byScan[analysis.ScanID] = append(byScan[analysis.ScanID], analysis)
	}

	fmt.Printf("[Rescore] Rescoring %d analyses across %d scans for business %s\n",
		len(stored), len(scanOrder), business.Name)

	mismatches := 0
	for _, scanID := range scanOrder {
		batch := models.NewScanBatch(scanID, businessID)
		for _, old := range byScan[scanID] {
			signals := extraction.ExtractSignals(old.ResponseText, identity)
			fresh := classification.Classify(signals, old.ResponseText)
			fresh.AnalysisID = old.AnalysisID
			fresh.BusinessID = old.BusinessID
			fresh.ScanID = old.ScanID
			fresh.Platform = old.Platform
			fresh.CreatedAt = old.CreatedAt

			if err := batch.Add(&fresh); err != nil {
				log.Fatalf("Rejected analysis %s: %v", old.AnalysisID, err)
			}

			if fresh.Sentiment != old.Sentiment || fresh.MentionType != old.MentionType ||
				fresh.IsRecommended != old.IsRecommended {
				mismatches++
				fmt.Printf("[Rescore] Drifted classification for %s: sentiment %s→%s, mention %s→%s\n",
					old.AnalysisID, old.Sentiment, fresh.Sentiment, old.MentionType, fresh.MentionType)
			}
		}

		score, err := scoring.Aggregate(batch)
		if err != nil {
			log.Fatalf("Failed to aggregate scan %s: %v", scanID, err)
		}

		fmt.Printf("[Rescore] Scan %s: overall=%d (visibility=%d sentiment=%d confidence=%d recommendation=%d citation=%d trust=%d) from %d responses\n",
			scanID, score.Overall, score.Visibility, score.Sentiment, score.Confidence,
			score.Recommendation, score.Citation, score.Trust, score.ResponseCount)

		if *write {
			score.ScoreID = uuid.New()
			score.CreatedAt = time.Now().UTC()
			if err := repos.CompositeScoreRepo.Create(ctx, score); err != nil {
				log.Fatalf("Failed to store recomputed score: %v", err)
			}
			fmt.Printf("[Rescore] ✅ Stored recomputed score %s for scan %s\n", score.ScoreID, scanID)
		}
	}

	if mismatches > 0 {
		fmt.Printf("[Rescore] ⚠️ %d classifications differ from their stored rows (lexicon or thresholds changed since)\n", mismatches)
	} else {
		fmt.Printf("[Rescore] ✅ All classifications reproduced their stored rows\n")
	}
}
