package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/config"
	"github.com/sam-evolv/property-assistant-sub010/internal/entity"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/specification"
	"github.com/sam-evolv/property-assistant-sub010/internal/repository/unitofwork"
	"github.com/sam-evolv/property-assistant-sub010/internal/service"
	"github.com/sam-evolv/property-assistant-sub010/pkg/database"
	"github.com/sam-evolv/property-assistant-sub010/pkg/embedding"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

type seedFile struct {
	Tenants    []seedTenant   `yaml:"tenants"`
	Regulatory []seedDocument `yaml:"regulatory"`
}

type seedTenant struct {
	ID           uuid.UUID         `yaml:"id"`
	Developments []seedDevelopment `yaml:"developments"`
}

type seedDevelopment struct {
	ID        uuid.UUID      `yaml:"id"`
	Name      string         `yaml:"name"`
	Location  string         `yaml:"location"`
	Status    string         `yaml:"status"`
	Units     []seedUnits    `yaml:"units"`
	Pipeline  []seedStage    `yaml:"pipeline"`
	Counters  []seedCounter  `yaml:"counters"`
	Documents []seedDocument `yaml:"documents"`
}

type seedUnits struct {
	Prefix    string  `yaml:"prefix"`
	Count     int     `yaml:"count"`
	HouseType string  `yaml:"house_type"`
	Price     float64 `yaml:"price"`
	Status    string  `yaml:"status"`
}

type seedStage struct {
	Stage string  `yaml:"stage"`
	Count int     `yaml:"count"`
	Value float64 `yaml:"value"`
}

type seedCounter struct {
	Name   string `yaml:"name"`
	Value  int64  `yaml:"value"`
	Period string `yaml:"period"`
}

type seedDocument struct {
	Title      string `yaml:"title"`
	SourceType string `yaml:"source_type"`
	Content    string `yaml:"content"`
}

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	var data seedFile
	if err := yaml.Unmarshal(demoYAML, &data); err != nil {
		log.Fatalf("Error: invalid seed file: %v", err)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false, database.DefaultPoolConfig())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	embeddingProvider, err := embedding.NewProvider(cfg.Ai)
	if err != nil {
		log.Fatalf("Error: embedding provider: %v", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	ingest := service.NewDocumentIngestService(uowFactory, embeddingProvider, logger.NewConsoleLogger(zapcore.InfoLevel))

	for _, tenant := range data.Tenants {
		for _, dev := range tenant.Developments {
			if err := seedDevelopmentData(ctx, uowFactory, tenant.ID, dev); err != nil {
				log.Fatalf("Error seeding %s: %v", dev.Name, err)
			}
			for _, doc := range dev.Documents {
				indexDocument(ctx, ingest, dev.ID.String(), doc)
			}
		}
	}

	for _, doc := range data.Regulatory {
		indexDocument(ctx, ingest, cfg.Assistant.RegulatoryCorpusID, doc)
	}

	log.Println("✅ Seeding completed!")
}

func seedDevelopmentData(ctx context.Context, uowFactory unitofwork.RepositoryFactory, tenantID uuid.UUID, dev seedDevelopment) error {
	uow := uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.DevelopmentRepository().FindOne(ctx,
		specification.TenantOwnedBy{TenantID: tenantID.String()},
		specification.ByID{ID: dev.ID},
	)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Printf("Development '%s' already exists, skipping...", dev.Name)
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	now := time.Now()
	var units []*entity.Unit
	for _, group := range dev.Units {
		for i := 0; i < group.Count; i++ {
			unit := &entity.Unit{
				Id:            uuid.New(),
				TenantId:      tenantID,
				DevelopmentId: dev.ID,
				UnitNumber:    fmt.Sprintf("%s-%03d", group.Prefix, len(units)+1),
				HouseType:     group.HouseType,
				Status:        group.Status,
				Price:         group.Price,
				Currency:      "EUR",
				CreatedAt:     now,
			}
			if group.Status == entity.UnitStatusSold {
				// Spread sales over the last eight weeks for the velocity function.
				soldAt := now.AddDate(0, 0, -(i*56)/max(group.Count, 1))
				unit.SoldAt = &soldAt
			}
			units = append(units, unit)
		}
	}

	if err := uow.DevelopmentRepository().Create(ctx, &entity.Development{
		Id:         dev.ID,
		TenantId:   tenantID,
		Name:       dev.Name,
		Location:   dev.Location,
		Status:     dev.Status,
		TotalUnits: len(units),
		CreatedAt:  now,
	}); err != nil {
		return err
	}
	if err := uow.UnitRepository().CreateBulk(ctx, units); err != nil {
		return err
	}

	next := 0
	for _, stage := range dev.Pipeline {
		for i := 0; i < stage.Count && len(units) > 0; i++ {
			unit := units[next%len(units)]
			next++
			if err := uow.SalesPipelineRepository().Create(ctx, &entity.SalesPipelineEntry{
				Id:             uuid.New(),
				TenantId:       tenantID,
				DevelopmentId:  dev.ID,
				UnitId:         unit.Id,
				BuyerName:      fmt.Sprintf("Buyer %d", next),
				Stage:          stage.Stage,
				Value:          stage.Value,
				StageChangedAt: now.AddDate(0, 0, -i),
				CreatedAt:      now,
			}); err != nil {
				return err
			}
		}
	}

	devID := dev.ID
	for _, counter := range dev.Counters {
		if err := uow.AnalyticsCounterRepository().Create(ctx, &entity.AnalyticsCounter{
			Id:            uuid.New(),
			TenantId:      tenantID,
			DevelopmentId: &devID,
			Name:          counter.Name,
			Value:         counter.Value,
			Period:        counter.Period,
			RecordedAt:    now,
		}); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}
	log.Printf("Created development: %s (%d units)", dev.Name, len(units))
	return nil
}

// indexDocument derives a stable document id from corpus and title, so a
// second run replaces the chunks instead of duplicating them.
func indexDocument(ctx context.Context, ingest service.IDocumentIngestService, corpusID string, doc seedDocument) {
	docID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(corpusID+"/"+strings.ToLower(doc.Title)))
	n, err := ingest.Ingest(ctx, service.IngestDocument{
		CorpusID:   corpusID,
		DocumentID: docID,
		Title:      doc.Title,
		Content:    doc.Content,
		SourceType: doc.SourceType,
	})
	if err != nil {
		log.Printf("Error indexing '%s': %v", doc.Title, err)
		return
	}
	log.Printf("Indexed '%s' into %s (%d chunks)", doc.Title, corpusID, n)
}
