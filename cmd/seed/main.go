package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"signage/internal/config"
	"signage/internal/db"
	"signage/internal/logger"
	"signage/internal/repository"
	"signage/internal/service"
)

// SeedSlideData is one slide of an import document.
type SeedSlideData struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Duration  *int       `json:"duration"`
	FontSize  *int       `json:"font_size"`
	IsActive  *bool      `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func main() {
	cfg := config.Load()
	logger.InitLogger(logger.ParseLevel(cfg.LogLevel))

	tenant := flag.String("tenant", cfg.DefaultTenant, "tenant to seed")
	from := flag.String("from", "", "optional URL or file with a JSON array of slides to import")
	flag.Parse()

	logger.Info("Starting seed script...")

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	slideRepo := repository.NewSlideRepository(gormDB)
	fixedRepo := repository.NewFixedContentRepository(gormDB)

	result, err := service.NewSeedService(userRepo, slideRepo, fixedRepo).SeedDefaults(ctx, *tenant)
	if err != nil {
		logger.Fatalf("Failed to seed defaults: %v", err)
	}
	logger.Infof("Seed completed for tenant %q", *tenant)
	logger.Infof("  - Users created: %d", result.Users)
	logger.Infof("  - Slides created: %d", result.Slides)
	logger.Infof("  - Fixed content blocks created: %d", result.FixedContent)

	if *from == "" {
		return
	}

	logger.Infof("Importing slides from: %s", *from)
	items, err := loadSlides(ctx, *from)
	if err != nil {
		logger.Fatalf("Failed to load slides: %v", err)
	}
	// Uploads are not part of an import, so no file storage is needed.
	slides := service.NewSlideService(slideRepo, nil, nil)
	created, skipped, err := importSlides(ctx, slides, *tenant, items)
	if err != nil {
		logger.Fatalf("Failed to import slides: %v", err)
	}
	logger.Infof("  - Slides imported: %d", created)
	logger.Infof("  - Slides skipped: %d", skipped)
}

// loadSlides reads an import document from an http(s) URL or a local file.
func loadSlides(ctx context.Context, source string) ([]SeedSlideData, error) {
	var body []byte
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("source returned status code: %d", resp.StatusCode)
		}
		if body, err = io.ReadAll(resp.Body); err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
	} else {
		var err error
		if body, err = os.ReadFile(source); err != nil {
			return nil, err
		}
	}

	var items []SeedSlideData
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return items, nil
}

// importSlides creates each slide whose title is not already present in the
// tenant. Invalid entries are logged and skipped.
func importSlides(ctx context.Context, slides service.SlideService, tenant string, items []SeedSlideData) (created, skipped int, err error) {
	existing, err := slides.ListForAdmin(ctx, tenant)
	if err != nil {
		return 0, 0, fmt.Errorf("list slides: %w", err)
	}
	titles := make(map[string]bool, len(existing))
	for _, s := range existing {
		titles[s.Title] = true
	}

	for _, item := range items {
		if titles[item.Title] {
			skipped++
			continue
		}
		_, err := slides.Create(ctx, tenant, service.CreateSlideInput{
			Title:     item.Title,
			Content:   item.Content,
			Duration:  item.Duration,
			FontSize:  item.FontSize,
			IsActive:  item.IsActive,
			ExpiresAt: item.ExpiresAt,
		})
		if err != nil {
			logger.Warningf("Skipping slide %q: %v", item.Title, err)
			skipped++
			continue
		}
		titles[item.Title] = true
		created++
	}
	return created, skipped, nil
}
