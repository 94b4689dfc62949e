package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/utils"
	"github.com/xuri/excelize/v2"
)

// Stats - сводка для админ-панели.
type Stats struct {
	TotalUsers      int64
	BlockedUsers    int64
	PendingOrders   int64
	ConfirmedOrders int64
	CancelledOrders int64
	AvailableItems  int64
	SoldItems       int64
	Revenue         int64
	BroadcastsToday int64
}

func (s *Service) GatherStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var err error

	if stats.TotalUsers, stats.BlockedUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, err
	}
	counts := []struct {
		status string
		dst    *int64
	}{
		{models.OrderPending, &stats.PendingOrders},
		{models.OrderConfirmed, &stats.ConfirmedOrders},
		{models.OrderCancelled, &stats.CancelledOrders},
	}
	for _, c := range counts {
		if *c.dst, err = s.repo.CountOrdersByStatus(ctx, c.status); err != nil {
			return nil, err
		}
	}
	if stats.AvailableItems, err = s.repo.CountInventoryByStatus(ctx, models.ItemAvailable); err != nil {
		return nil, err
	}
	if stats.SoldItems, err = s.repo.CountInventoryByStatus(ctx, models.ItemSold); err != nil {
		return nil, err
	}
	if stats.Revenue, err = s.repo.Revenue(ctx); err != nil {
		return nil, err
	}
	midnight := utils.StartOfDay(time.Now())
	if stats.BroadcastsToday, err = s.repo.CountBroadcastsSince(ctx, midnight); err != nil {
		return nil, err
	}
	return stats, nil
}

// ExportSalesReport собирает xlsx по подтверждённым заказам за период.
func (s *Service) ExportSalesReport(ctx context.Context, since time.Time) ([]byte, error) {
	orders, err := s.repo.ConfirmedOrdersSince(ctx, since)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Продажи"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Заказ", "Дата", "Покупатель", "Товар", "Город", "Район", "Вес, г", "Цена, ₽"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	var total int64
	for row, order := range orders {
		values := []interface{}{order.Reference, "", order.UserID, "", "", "", "", ""}
		if order.ConfirmedAt != nil {
			values[1] = order.ConfirmedAt.Format("02.01.2006 15:04")
		}
		if order.User != nil && order.User.Username != "" {
			values[2] = "@" + order.User.Username
		}
		if inv := order.Inventory; inv != nil {
			if inv.Product != nil {
				values[3] = inv.Product.Name
			}
			if inv.City != nil {
				values[4] = inv.City.Name
			}
			if inv.District != nil {
				values[5] = inv.District.Name
			}
			values[6] = inv.WeightGrams
			values[7] = inv.PriceRub
			total += inv.PriceRub
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	totalRow := len(orders) + 3
	cell, _ := excelize.CoordinatesToCellName(7, totalRow)
	f.SetCellValue(sheet, cell, "Итого:")
	cell, _ = excelize.CoordinatesToCellName(8, totalRow)
	f.SetCellValue(sheet, cell, total)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return buf.Bytes(), nil
}
