package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	emailPkg "fitinsight/internal/adapters/email"
	web "fitinsight/internal/adapters/http"
	"fitinsight/internal/adapters/storage"
	accountStore "fitinsight/internal/adapters/storage/account"
	datasetStore "fitinsight/internal/adapters/storage/dataset"
	"fitinsight/internal/application/orchestrators"
	"fitinsight/internal/domain/risk"

	"github.com/google/uuid"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("FITINSIGHT_DB", "fitinsight.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	acctStore := accountStore.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore: acctStore,
		DatasetStore: datasetStore.NewMemoryStore(),
	}

	// Seed default admin account if no accounts exist
	adminEmail := envOrDefault("FITINSIGHT_ADMIN_EMAIL", "admin@fitinsight.local")
	adminPassword := envOrDefault("FITINSIGHT_ADMIN_PASSWORD", "change-me-on-first-login")
	seedDeps := orchestrators.CreateAccountDeps{
		AccountStore: acctStore,
		GenerateID:   func() string { return uuid.New().String() },
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Select the risk classification policy
	policy, err := risk.FromName(os.Getenv("FITINSIGHT_RISK_POLICY"))
	if err != nil {
		log.Fatalf("invalid FITINSIGHT_RISK_POLICY: %v", err)
	}
	web.SetRiskPolicy(policy)
	log.Printf("Risk policy: %s", policy.Name())

	// Configure email sender
	resendKey := os.Getenv("FITINSIGHT_RESEND_KEY")
	emailFrom := envOrDefault("FITINSIGHT_RESEND_FROM", "FitInsight <noreply@fitinsight.local>")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom)
		if os.Getenv("FITINSIGHT_ENV") == "production" {
			log.Println("WARNING: FITINSIGHT_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set FITINSIGHT_RESEND_KEY for real delivery)")
		}
	}

	// Create HTTP handler with middleware
	mux := web.NewMux(envOrDefault("FITINSIGHT_STATIC_DIR", "static"), stores)

	// Start server
	addr := envOrDefault("FITINSIGHT_ADDR", ":8080")
	log.Printf("FitInsight %s starting on %s (env=%s)", version, addr, envOrDefault("FITINSIGHT_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
