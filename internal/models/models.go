package models

import "time"

// Статусы товарных единиц
const (
	ItemAvailable = "available"
	ItemReserved  = "reserved"
	ItemSold      = "sold"
)

// Статусы заказов
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderCancelled = "cancelled"
)

// Статусы рассылок
const (
	BroadcastSending   = "sending"
	BroadcastCompleted = "completed"
)

// Статусы обращений
const (
	TicketOpen     = "open"
	TicketAnswered = "answered"
	TicketClosed   = "closed"
)

type User struct {
	TelegramID       int64     `gorm:"primaryKey" json:"telegram_id"`
	Username         string    `json:"username"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	IsBlocked        bool      `gorm:"default:false;index" json:"is_blocked"`
	CaptchaPassed    bool      `gorm:"default:false" json:"captcha_passed"`
	TotalOrders      int       `gorm:"default:0" json:"total_orders"`
	TotalSpent       int64     `gorm:"default:0" json:"total_spent"`
	RegistrationDate time.Time `gorm:"autoCreateTime" json:"registration_date"`
	LastActivity     time.Time `json:"last_activity"`
}

type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type City struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"unique;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type District struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CityID    int64     `gorm:"not null;uniqueIndex:idx_city_district" json:"city_id"`
	City      *City     `gorm:"foreignKey:CityID" json:"city,omitempty"`
	Name      string    `gorm:"not null;uniqueIndex:idx_city_district" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type InventoryItem struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	ProductID     int64      `gorm:"not null;index" json:"product_id"`
	Product       *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CityID        int64      `gorm:"not null;index" json:"city_id"`
	City          *City      `gorm:"foreignKey:CityID" json:"city,omitempty"`
	DistrictID    int64      `gorm:"not null;index" json:"district_id"`
	District      *District  `gorm:"foreignKey:DistrictID" json:"district,omitempty"`
	WeightGrams   float64    `gorm:"not null" json:"weight_grams"`
	PriceRub      int64      `gorm:"not null" json:"price_rub"`
	PayloadSealed string     `gorm:"not null" json:"-"`
	Status        string     `gorm:"default:available;index" json:"status"`
	BuyerID       *int64     `json:"buyer_id,omitempty"`
	SoldAt        *time.Time `json:"sold_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Order struct {
	ID              int64          `gorm:"primaryKey" json:"id"`
	Reference       string         `gorm:"unique;not null" json:"reference"`
	UserID          int64          `gorm:"not null;index" json:"user_id"`
	User            *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	InventoryID     int64          `gorm:"not null" json:"inventory_id"`
	Inventory       *InventoryItem `gorm:"foreignKey:InventoryID" json:"inventory,omitempty"`
	Status          string         `gorm:"default:pending;index" json:"status"`
	PaymentProof    string         `json:"payment_proof"`
	ConfirmedBy     *int64         `json:"confirmed_by,omitempty"`
	ConfirmedAt     *time.Time     `json:"confirmed_at,omitempty"`
	RejectionReason string         `json:"rejection_reason"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type Review struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderID    *int64    `json:"order_id,omitempty"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `json:"comment"`
	IsApproved bool      `gorm:"default:false;index" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

type Ticket struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	UserID        int64      `gorm:"not null;index" json:"user_id"`
	Subject       string     `gorm:"not null" json:"subject"`
	Message       string     `gorm:"not null" json:"message"`
	Status        string     `gorm:"default:open;index" json:"status"`
	AdminResponse string     `json:"admin_response"`
	RespondedBy   *int64     `json:"responded_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

type Broadcast struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	AdminID     int64      `gorm:"not null" json:"admin_id"`
	MessageText string     `gorm:"not null" json:"message_text"`
	Status      string     `gorm:"default:sending" json:"status"`
	TotalCount  int        `gorm:"default:0" json:"total_count"`
	SentCount   int        `gorm:"default:0" json:"sent_count"`
	FailedCount int        `gorm:"default:0" json:"failed_count"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// BotSettings - единственная строка с id=1. Колонки фиксированы,
// никаких динамических имен настроек.
type BotSettings struct {
	ID                  int64     `gorm:"primaryKey" json:"id"`
	CaptchaEnabled      bool      `gorm:"default:false" json:"captcha_enabled"`
	MaintenanceMode     bool      `gorm:"default:false" json:"maintenance_mode"`
	WelcomeText         string    `json:"welcome_text"`
	PaymentInstructions string    `json:"payment_instructions"`
	SupportUsername     string    `json:"support_username"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type Admin struct {
	UserID   int64     `gorm:"primaryKey" json:"user_id"`
	Username string    `json:"username"`
	Role     string    `gorm:"default:admin" json:"role"`
	AddedBy  int64     `json:"added_by"`
	AddedAt  time.Time `gorm:"autoCreateTime" json:"added_at"`
}

type ActionLog struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	AdminID    int64     `gorm:"not null" json:"admin_id"`
	ActionType string    `gorm:"not null" json:"action_type"`
	ActionName string    `gorm:"not null" json:"action_name"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// SendFunc доставляет одно сообщение получателю. Сервис рассылки
// не знает про транспорт, бот подставляет сюда отправку в Telegram.
type SendFunc func(userID int64, text string) error

// StockCount - строка каталога: измерение (товар/город/район) и остаток.
type StockCount struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// OfferGroup - сгруппированное предложение внутри района: одинаковые
// (вес, цена) схлопнуты, FirstID - представитель группы для покупки.
type OfferGroup struct {
	WeightGrams float64 `json:"weight_grams"`
	PriceRub    int64   `json:"price_rub"`
	Count       int     `json:"count"`
	FirstID     int64   `json:"first_id"`
}
