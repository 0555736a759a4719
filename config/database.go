package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	PagesDB *pgxpool.Pool

	PagesGorm *gorm.DB
)

func InitDB() {
	initPgx()
	initGORM()
}

func initPgx() {
	// Pages/menu store - use managed URL if provided
	pagesURL := os.Getenv("PAGES_DB_URL")
	if pagesURL == "" {
		// fallback to local
		pagesURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/emberline_pages?sslmode=disable",
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
		)
		log.Println("⚠️ PAGES_DB_URL not set, using local default")
	}

	var err error
	PagesDB, err = pgxpool.New(context.Background(), pagesURL)
	if err != nil {
		log.Fatalf("❌ Unable to connect to pages database: %v", err)
	}

	if err = PagesDB.Ping(context.Background()); err != nil {
		log.Fatalf("❌ Pages database ping failed: %v", err)
	}

	log.Println("✅ Pages database connected (pgx)")
}

func initGORM() {
	// Shared logger config
	gormLogger := logger.Default.LogMode(logger.Info)
	if os.Getenv("APP_ENV") == "production" {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	// Prefer full URL
	var pagesDSN string
	if os.Getenv("PAGES_DB_URL") != "" {
		pagesDSN = os.Getenv("PAGES_DB_URL")
	} else {
		pagesDSN = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=emberline_pages port=%s sslmode=disable TimeZone=UTC",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_PORT", "5432"),
		)
		log.Println("⚠️ PAGES_DB_URL not set, using local GORM default")
	}

	var err error
	PagesGorm, err = gorm.Open(postgres.Open(pagesDSN), &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to pages database with GORM: %v", err)
	}
	if sqlDB, err := PagesGorm.DB(); err == nil {
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(2 * time.Minute)
	}
	log.Println("✅ Pages database connected (GORM)")
}

func CloseDB() {
	if PagesDB != nil {
		PagesDB.Close()
		log.Println("✅ Pages database connection closed (pgx)")
	}

	if PagesGorm != nil {
		sqlDB, _ := PagesGorm.DB()
		if sqlDB != nil {
			sqlDB.Close()
			log.Println("✅ Pages database connection closed (GORM)")
		}
	}
}

// WithTimeout returns a context with a 10s timeout (bumped from 5s for managed
// Postgres cold starts)
func WithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func WithCustomTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
