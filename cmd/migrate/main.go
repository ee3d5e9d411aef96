package main

import (
	"log"

	"github.com/sam-evolv/property-assistant-sub010/internal/config"
	"github.com/sam-evolv/property-assistant-sub010/internal/model"
	"github.com/sam-evolv/property-assistant-sub010/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false, database.DefaultPoolConfig())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.Development{},
		&model.Unit{},
		&model.SalesPipelineEntry{},
		&model.AnalyticsCounter{},
		&model.DocumentChunk{},
		&model.AssistantExchange{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating indexes...")
	postMigrationSQL := []string{
		// Cosine search is always filtered by corpus first.
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding
		 ON document_chunks USING hnsw (embedding_value vector_cosine_ops);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_document_chunks_position
		 ON document_chunks (corpus_id, document_id, chunk_index) WHERE deleted_at IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_units_scope_status
		 ON units (tenant_id, development_id, status) WHERE deleted_at IS NULL;`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed.")
}
