package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/utils"
	"github.com/google/uuid"
)

// ConfirmResult несёт подтверждённый заказ и расшифрованный клад для выдачи.
type ConfirmResult struct {
	Order   *models.Order
	Payload string
}

// PlaceOrder резервирует позицию и создаёт заказ с пруфом оплаты одной
// транзакцией. Заказ появляется только вместе с подтверждением: пока
// покупатель не прислал пруф, позиция остаётся на витрине.
// Если позицию успели забрать, возвращает ErrItemTaken.
func (s *Service) PlaceOrder(ctx context.Context, userID, itemID int64, proof string) (*models.Order, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}

	reserved, err := s.repo.ReserveInventoryItem(ctx, itemID, userID, tx)
	if err != nil {
		s.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to reserve item: %w", err)
	}
	if !reserved {
		s.repo.Rollback(tx)
		return nil, ErrItemTaken
	}

	order := &models.Order{
		Reference:    strings.ToUpper(uuid.NewString()[:8]),
		UserID:       userID,
		InventoryID:  itemID,
		Status:       models.OrderPending,
		PaymentProof: proof,
	}
	if err := s.repo.CreateOrder(ctx, order, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.repo.TouchUserActivity(ctx, userID, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}

	if err := s.repo.Commit(tx); err != nil {
		return nil, err
	}

	s.logger.Infof("✅ Order %s placed: user %d, item %d", order.Reference, userID, itemID)
	return s.repo.GetOrder(ctx, order.ID)
}

// ConfirmOrder переводит заказ pending -> confirmed, позицию reserved -> sold
// и обновляет счётчики покупателя одной транзакцией. Повторное подтверждение
// или подтверждение отклонённого заказа возвращает ErrAlreadyProcessed.
func (s *Service) ConfirmOrder(ctx context.Context, orderID, adminID int64) (*ConfirmResult, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrderForUpdate(ctx, orderID, tx)
	if err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if order == nil {
		s.repo.Rollback(tx)
		return nil, ErrNotFound
	}
	if order.Status != models.OrderPending {
		s.repo.Rollback(tx)
		return nil, ErrAlreadyProcessed
	}

	item, err := s.repo.GetInventoryItem(ctx, order.InventoryID)
	if err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if item == nil {
		s.repo.Rollback(tx)
		return nil, ErrNotFound
	}

	// Клад расшифровывается до записи: битый конверт откатывает
	// подтверждение, заказ остаётся pending.
	payload, err := utils.OpenPayload(s.payloadKey, item.PayloadSealed)
	if err != nil {
		s.repo.Rollback(tx)
		s.logger.Errorf("Failed to open payload for order %d: %v", orderID, err)
		return nil, fmt.Errorf("failed to open payload: %w", err)
	}

	if err := s.repo.MarkOrderConfirmed(ctx, orderID, adminID, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}
	if err := s.repo.MarkInventorySold(ctx, order.InventoryID, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to mark item sold: %w", err)
	}

	if err := s.repo.AddUserPurchase(ctx, order.UserID, item.PriceRub, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}

	if err := s.repo.Commit(tx); err != nil {
		return nil, err
	}

	s.LogAction(ctx, adminID, "order", "confirm", fmt.Sprintf("order #%d", orderID))
	s.logger.Infof("✅ Order %d confirmed by admin %d", orderID, adminID)

	confirmed, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{Order: confirmed, Payload: payload}, nil
}

// RejectOrder переводит заказ pending -> cancelled и возвращает позицию
// в продажу одной транзакцией.
func (s *Service) RejectOrder(ctx context.Context, orderID, adminID int64, reason string) (*models.Order, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrderForUpdate(ctx, orderID, tx)
	if err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if order == nil {
		s.repo.Rollback(tx)
		return nil, ErrNotFound
	}
	if order.Status != models.OrderPending {
		s.repo.Rollback(tx)
		return nil, ErrAlreadyProcessed
	}

	if err := s.repo.MarkOrderCancelled(ctx, orderID, reason, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if err := s.repo.ReleaseInventoryItem(ctx, order.InventoryID, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, fmt.Errorf("failed to release item: %w", err)
	}

	if err := s.repo.Commit(tx); err != nil {
		return nil, err
	}

	s.LogAction(ctx, adminID, "order", "reject", fmt.Sprintf("order #%d: %s", orderID, reason))
	s.logger.Infof("Order %d rejected by admin %d", orderID, adminID)

	return s.repo.GetOrder(ctx, orderID)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *Service) FindOrderByReference(ctx context.Context, reference string) (*models.Order, error) {
	order, err := s.repo.GetOrderByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *Service) CountOrders(ctx context.Context, status string) (int64, error) {
	return s.repo.CountOrdersByStatus(ctx, status)
}

func (s *Service) ListOrders(ctx context.Context, status string, limit, offset int) ([]*models.Order, int64, error) {
	return s.repo.ListOrders(ctx, status, limit, offset)
}

func (s *Service) ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, int64, error) {
	return s.repo.ListUserOrders(ctx, userID, limit, offset)
}

// OrderPayload расшифровывает клад подтверждённого заказа для повторного показа.
func (s *Service) OrderPayload(ctx context.Context, orderID int64) (string, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", ErrNotFound
	}
	if order.Status != models.OrderConfirmed {
		return "", ErrAlreadyProcessed
	}
	item, err := s.repo.GetInventoryItem(ctx, order.InventoryID)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", ErrNotFound
	}
	return utils.OpenPayload(s.payloadKey, item.PayloadSealed)
}
