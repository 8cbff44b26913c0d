package service

import (
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/repository"
)

type DashboardService interface {
	GetStockMovement(days int) ([]repository.StockMovementData, error)
	GetDashboardStats() (*repository.DashboardStats, error)
}

type dashboardService struct {
	reportRepo repository.ReportRepository
	now        Clock
}

func NewDashboardService(rRepo repository.ReportRepository, clock Clock) DashboardService {
	return &dashboardService{reportRepo: rRepo, now: clock.orDefault()}
}

func (s *dashboardService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.reportRepo.GetStockMovement(startDate, endDate)
	return data, apperr.Wrap("dashboard.stock_movement", err)
}

func (s *dashboardService) GetDashboardStats() (*repository.DashboardStats, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats, err := s.reportRepo.GetDashboardStats(dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperr.Wrap("dashboard.stats", err)
	}
	return stats, nil
}
