package db

import (
	"context"

	"asset_borrow_tracker/models"
)

type DashboardCounts struct {
	TotalItems       int64 `json:"totalItems"`
	TotalCategories  int64 `json:"totalCategories"`
	TotalUsers       int64 `json:"totalUsers"`
	AvailableItems   int64 `json:"availableItems"`
	BorrowedItems    int64 `json:"borrowedItems"`
	MaintenanceItems int64 `json:"maintenanceItems"`
	PendingRequests  int64 `json:"pendingRequests"`
	ApprovedRequests int64 `json:"approvedRequests"`
}

type Dashboard struct {
	Counts           DashboardCounts        `json:"counts"`
	RecentActivities []models.BorrowRequest `json:"recentActivities"`
}

func (r *Repo) DashboardSummary(ctx context.Context) (*Dashboard, error) {
	db := r.DB.WithContext(ctx)
	var d Dashboard

	// 按状态分组一次查完
	var itemRows []struct {
		Status models.ItemStatus
		N      int64
	}
	if err := db.Model(&models.Item{}).Select("status, COUNT(*) AS n").Group("status").Scan(&itemRows).Error; err != nil {
		return nil, err
	}
	for _, row := range itemRows {
		d.Counts.TotalItems += row.N
		switch row.Status {
		case models.ItemAvailable:
			d.Counts.AvailableItems = row.N
		case models.ItemBorrowed:
			d.Counts.BorrowedItems = row.N
		case models.ItemMaintenance:
			d.Counts.MaintenanceItems = row.N
		}
	}

	var reqRows []struct {
		Status models.BorrowStatus
		N      int64
	}
	if err := db.Model(&models.BorrowRequest{}).Select("status, COUNT(*) AS n").
		Where("status IN ?", []models.BorrowStatus{models.BorrowPending, models.BorrowApproved}).
		Group("status").Scan(&reqRows).Error; err != nil {
		return nil, err
	}
	for _, row := range reqRows {
		if row.Status == models.BorrowPending {
			d.Counts.PendingRequests = row.N
		} else {
			d.Counts.ApprovedRequests = row.N
		}
	}

	if err := db.Model(&models.Category{}).Count(&d.Counts.TotalCategories).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Count(&d.Counts.TotalUsers).Error; err != nil {
		return nil, err
	}

	if err := db.Preload("Item.Category").Preload("User").
		Order("updated_at DESC").
		Limit(5).
		Find(&d.RecentActivities).Error; err != nil {
		return nil, err
	}
	return &d, nil
}
