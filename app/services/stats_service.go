package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
	"gorm.io/gorm"
)

// StatsService aggregates the numbers the admin dashboard shows.
type StatsService struct {
	repos *repositories.Registry
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{repos: repositories.New(db)}
}

// Snapshot holds sales figures for one trailing window.
type Snapshot struct {
	Days     int     `json:"days"`
	NewUsers int     `json:"new_users"`
	Orders   int     `json:"orders"`
	Units    int     `json:"units"`
	Revenue  float64 `json:"revenue"`
	Refunded float64 `json:"refunded"`
}

// Overview is the full dashboard payload.
type Overview struct {
	TotalUsers int64      `json:"total_users"`
	Windows    []Snapshot `json:"windows"`
}

// statWindows are the trailing windows the dashboard reports on.
var statWindows = []int{1, 7, 30}

// Overview computes the dashboard numbers for the standard windows.
func (s *StatsService) Overview() (Overview, error) {
	total, err := s.repos.Users.CountAll()
	if err != nil {
		return Overview{}, err
	}

	overview := Overview{TotalUsers: total}
	for _, days := range statWindows {
		snap, err := s.Window(days)
		if err != nil {
			return Overview{}, err
		}
		overview.Windows = append(overview.Windows, snap)
	}
	return overview, nil
}

// Window computes one trailing window of days.
func (s *StatsService) Window(days int) (Snapshot, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	users, err := s.repos.Users.NewSince(cutoff)
	if err != nil {
		return Snapshot{}, err
	}
	buys, err := s.repos.Buys.Since(cutoff)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Days: days, NewUsers: len(users)}
	for _, buy := range buys {
		if buy.IsRefunded {
			snap.Refunded += buy.TotalPrice
			continue
		}
		snap.Orders++
		snap.Units += buy.Quantity
		snap.Revenue += buy.TotalPrice
	}
	return snap, nil
}

// ExportBuys writes every purchase of the trailing window as CSV to the
// configured disk and returns the stored path.
func (s *StatsService) ExportBuys(days int) (string, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	buys, err := s.repos.Buys.Since(cutoff)
	if err != nil {
		return "", err
	}

	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "created_at", "user_id", "category_id", "quantity", "total_price", "refunded"})
	for _, buy := range buys {
		_ = w.Write([]string{
			strconv.FormatUint(uint64(buy.ID), 10),
			buy.CreatedAt.Format(time.RFC3339),
			strconv.FormatUint(uint64(buy.UserID), 10),
			strconv.FormatUint(uint64(buy.CategoryID), 10),
			strconv.Itoa(buy.Quantity),
			strconv.FormatFloat(buy.TotalPrice, 'f', 2, 64),
			strconv.FormatBool(buy.IsRefunded),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("stats: write csv: %w", err)
	}

	path := fmt.Sprintf("exports/buys-%s.csv", time.Now().Format("20060102-150405"))
	if err := storage.Put(path, b.Bytes()); err != nil {
		return "", err
	}

	logger.Info("stats: export written", "path", path, "rows", len(buys))
	return path, nil
}
