package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmarkov/shop_bot/config"
	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/utils"
	"gorm.io/gorm"
)

// Ошибки доменных конфликтов, различаемые обработчиками.
var (
	ErrNotFound         = errors.New("запись не найдена")
	ErrItemTaken        = errors.New("товар уже продан или зарезервирован")
	ErrAlreadyProcessed = errors.New("заказ уже обработан")
)

type Service struct {
	repo           Repository
	payloadKey     []byte
	adminChatID    int64
	broadcastDelay time.Duration
	logger         *utils.Logger
}

type Repository interface {
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User, tx *gorm.DB) error
	TouchUserActivity(ctx context.Context, telegramID int64, tx *gorm.DB) error
	SetUserBlocked(ctx context.Context, telegramID int64, blocked bool) error
	AddUserPurchase(ctx context.Context, telegramID int64, price int64, tx *gorm.DB) error
	GetUnblockedUserIDs(ctx context.Context) ([]int64, error)
	ListUsers(ctx context.Context, blockedOnly bool, limit, offset int) ([]*models.User, int64, error)
	CountUsers(ctx context.Context) (total, blocked int64, err error)

	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	CreateCity(ctx context.Context, city *models.City) error
	GetCity(ctx context.Context, id int64) (*models.City, error)
	ListCities(ctx context.Context) ([]*models.City, error)
	CreateDistrict(ctx context.Context, district *models.District) error
	GetDistrict(ctx context.Context, id int64) (*models.District, error)
	ListDistricts(ctx context.Context, cityID int64) ([]*models.District, error)

	CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error)
	ReserveInventoryItem(ctx context.Context, id, buyerID int64, tx *gorm.DB) (bool, error)
	MarkInventorySold(ctx context.Context, id int64, tx *gorm.DB) error
	ReleaseInventoryItem(ctx context.Context, id int64, tx *gorm.DB) error
	ProductsWithStock(ctx context.Context) ([]*models.StockCount, error)
	CitiesWithStock(ctx context.Context, productID int64) ([]*models.StockCount, error)
	DistrictsWithStock(ctx context.Context, productID, cityID int64) ([]*models.StockCount, error)
	OfferGroups(ctx context.Context, productID, cityID, districtID int64) ([]*models.OfferGroup, error)
	CountInventoryByStatus(ctx context.Context, status string) (int64, error)

	CreateOrder(ctx context.Context, order *models.Order, tx *gorm.DB) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetOrderByReference(ctx context.Context, reference string) (*models.Order, error)
	GetOrderForUpdate(ctx context.Context, id int64, tx *gorm.DB) (*models.Order, error)
	MarkOrderConfirmed(ctx context.Context, id, adminID int64, tx *gorm.DB) error
	MarkOrderCancelled(ctx context.Context, id int64, reason string, tx *gorm.DB) error
	ListOrders(ctx context.Context, status string, limit, offset int) ([]*models.Order, int64, error)
	ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, int64, error)
	CountOrdersByStatus(ctx context.Context, status string) (int64, error)
	CountUserConfirmedOrders(ctx context.Context, userID int64) (int64, error)
	Revenue(ctx context.Context) (int64, error)
	ConfirmedOrdersSince(ctx context.Context, since time.Time) ([]*models.Order, error)

	CreateReview(ctx context.Context, review *models.Review) error
	ListApprovedReviews(ctx context.Context, limit, offset int) ([]*models.Review, int64, error)
	ListPendingReviews(ctx context.Context, limit, offset int) ([]*models.Review, int64, error)
	ApproveReview(ctx context.Context, id int64) error
	DeleteReview(ctx context.Context, id int64) error
	CountRecentUserReviews(ctx context.Context, userID int64, since time.Time) (int64, error)

	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	GetTicket(ctx context.Context, id int64) (*models.Ticket, error)
	ListOpenTickets(ctx context.Context, limit, offset int) ([]*models.Ticket, int64, error)
	AnswerTicket(ctx context.Context, id, adminID int64, response string) error

	CreateBroadcast(ctx context.Context, broadcast *models.Broadcast) error
	GetBroadcast(ctx context.Context, id int64) (*models.Broadcast, error)
	FinishBroadcast(ctx context.Context, id int64, sent, failed int) error
	ListBroadcasts(ctx context.Context, limit, offset int) ([]*models.Broadcast, int64, error)
	CountBroadcastsSince(ctx context.Context, since time.Time) (int64, error)

	GetSettings(ctx context.Context) (*models.BotSettings, error)
	SaveSettings(ctx context.Context, settings *models.BotSettings) error

	IsAdmin(ctx context.Context, userID int64) (bool, error)
	CreateActionLog(ctx context.Context, entry *models.ActionLog) error
	ListActionLogs(ctx context.Context, since time.Time, limit, offset int) ([]*models.ActionLog, int64, error)
	PruneActionLogs(ctx context.Context, before time.Time) (int64, error)

	BeginTransaction(ctx context.Context) (*gorm.DB, error)
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)
}

func NewService(repo Repository, cfg *config.Config, logger *utils.Logger) *Service {
	return &Service{
		repo:           repo,
		payloadKey:     cfg.PayloadKeyBytes(),
		adminChatID:    cfg.AdminChatID,
		broadcastDelay: time.Duration(cfg.BroadcastDelayMS) * time.Millisecond,
		logger:         logger,
	}
}

// IsAdmin проверяет доступ по таблице admins; сконфигурированный
// ADMIN_CHAT_ID всегда проходит, даже если сид не отработал.
func (s *Service) IsAdmin(ctx context.Context, userID int64) bool {
	if userID == s.adminChatID {
		return true
	}
	ok, err := s.repo.IsAdmin(ctx, userID)
	if err != nil {
		s.logger.Errorf("Failed to check admin %d: %v", userID, err)
		return false
	}
	return ok
}

// LogAction пишет строку в журнал действий; сбой журнала не ломает операцию.
func (s *Service) LogAction(ctx context.Context, adminID int64, actionType, actionName, details string) {
	entry := &models.ActionLog{
		AdminID:    adminID,
		ActionType: actionType,
		ActionName: actionName,
		Details:    details,
	}
	if err := s.repo.CreateActionLog(ctx, entry); err != nil {
		s.logger.Errorf("Failed to write action log: %v", err)
	}
}

func (s *Service) ListActionLogs(ctx context.Context, since time.Time, limit, offset int) ([]*models.ActionLog, int64, error) {
	return s.repo.ListActionLogs(ctx, since, limit, offset)
}

func (s *Service) PruneActionLogs(ctx context.Context, adminID int64, before time.Time) (int64, error) {
	removed, err := s.repo.PruneActionLogs(ctx, before)
	if err != nil {
		return 0, err
	}
	s.LogAction(ctx, adminID, "logs", "prune", fmt.Sprintf("removed %d", removed))
	return removed, nil
}
