package services

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/crypt"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
	"gorm.io/gorm"
)

// ImportService bulk-loads stock from text and JSON uploads. Every accepted
// row materializes the category path, upserts the product and adds one
// encrypted stock unit.
type ImportService struct {
	categories *repositories.CategoryRepository
	items      *repositories.ItemRepository
	catalog    *CatalogService
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{
		categories: repositories.NewCategoryRepository(db),
		items:      repositories.NewItemRepository(db),
		catalog:    NewCatalogService(db),
	}
}

// ImportRow is one parsed record, independent of the upload format.
type ImportRow struct {
	Path        []string `json:"-"`
	PathString  string   `json:"path"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	PrivateData string   `json:"private_data"`
}

// RowError records why a single row was rejected. The import keeps going.
type RowError struct {
	Line int    `json:"line"`
	Err  string `json:"error"`
}

// ImportReport summarizes one upload.
type ImportReport struct {
	Added   int        `json:"added"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors,omitempty"`
}

func (r ImportReport) record() {
	metrics.ImportRows.WithLabelValues("added").Add(float64(r.Added))
	metrics.ImportRows.WithLabelValues("skipped").Add(float64(r.Skipped))
}

// ImportText parses the line format
//
//	Root>Sub>Product;description;price;private data
//
// and loads each valid line as one unit of stock. Malformed lines are
// reported per line number and do not abort the run.
func (s *ImportService) ImportText(data []byte, locationID *uint) (ImportReport, error) {
	var report ImportReport

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		row, err := parseTextLine(line)
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, RowError{Line: lineNo, Err: err.Error()})
			continue
		}
		if err := s.loadRow(row, locationID); err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, RowError{Line: lineNo, Err: err.Error()})
			continue
		}
		report.Added++
	}
	if err := sc.Err(); err != nil {
		return report, fmt.Errorf("import: scan: %w", err)
	}

	s.archive(data, "txt")
	report.record()
	logger.Info("import: text done", "added", report.Added, "skipped", report.Skipped)
	return report, nil
}

// ImportJSON parses an array of objects with the same fields as the text
// format, the path given as "Root>Sub>Product".
func (s *ImportService) ImportJSON(data []byte, locationID *uint) (ImportReport, error) {
	var report ImportReport

	var rows []ImportRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return report, fmt.Errorf("import: invalid JSON: %w", err)
	}

	for i, row := range rows {
		row.Path = splitPath(row.PathString)
		if err := validateRow(row); err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, RowError{Line: i + 1, Err: err.Error()})
			continue
		}
		if err := s.loadRow(row, locationID); err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, RowError{Line: i + 1, Err: err.Error()})
			continue
		}
		report.Added++
	}

	s.archive(data, "json")
	report.record()
	logger.Info("import: json done", "added", report.Added, "skipped", report.Skipped)
	return report, nil
}

// loadRow upserts the category path and stores one encrypted stock unit.
func (s *ImportService) loadRow(row ImportRow, locationID *uint) error {
	product, err := s.categories.GetOrCreatePath(row.Path, row.Price, row.Description)
	if err != nil {
		return err
	}

	enc, err := crypt.Encrypt(row.PrivateData)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	if err := s.items.CreateBatch([]models.Item{{
		CategoryID:  product.ID,
		LocationID:  locationID,
		PrivateData: enc,
		IsNew:       true,
	}}); err != nil {
		return err
	}

	s.catalog.InvalidateQty(product.ID)
	return nil
}

// parseTextLine splits one `path;description;price;payload` line.
// The payload may itself contain semicolons, so only the first three
// separators are structural.
func parseTextLine(line string) (ImportRow, error) {
	parts := strings.SplitN(line, ";", 4)
	if len(parts) != 4 {
		return ImportRow{}, fmt.Errorf("expected 4 fields separated by ';', got %d", len(parts))
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return ImportRow{}, fmt.Errorf("invalid price %q", parts[2])
	}

	row := ImportRow{
		Path:        splitPath(parts[0]),
		Description: strings.TrimSpace(parts[1]),
		Price:       price,
		PrivateData: parts[3],
	}
	if err := validateRow(row); err != nil {
		return ImportRow{}, err
	}
	return row, nil
}

func splitPath(raw string) []string {
	var names []string
	for _, p := range strings.Split(raw, ">") {
		p = strings.TrimSpace(p)
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

func validateRow(row ImportRow) error {
	if len(row.Path) == 0 {
		return fmt.Errorf("empty category path")
	}
	if row.Price <= 0 {
		return repositories.ErrInvalidPrice
	}
	if strings.TrimSpace(row.PrivateData) == "" {
		return fmt.Errorf("empty private data")
	}
	return nil
}

// archive keeps the raw upload on the configured disk for auditing.
// A failed archive is logged but never fails the import itself.
func (s *ImportService) archive(data []byte, ext string) {
	path := fmt.Sprintf("imports/%s.%s", time.Now().Format("20060102-150405"), ext)
	if err := storage.Put(path, data); err != nil {
		logger.Warn("import: archive failed", "path", path, "error", err)
	}
}
