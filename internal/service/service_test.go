package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dmarkov/shop_bot/config"
	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/utils"
	"gorm.io/gorm"
)

// fakeRepo - репозиторий в памяти. Транзакционные параметры игнорируются:
// тесты проверяют семантику переходов, а не SQL.
type fakeRepo struct {
	users      map[int64]*models.User
	products   map[int64]*models.Product
	cities     map[int64]*models.City
	districts  map[int64]*models.District
	items      map[int64]*models.InventoryItem
	orders     map[int64]*models.Order
	reviews    map[int64]*models.Review
	tickets    map[int64]*models.Ticket
	broadcasts map[int64]*models.Broadcast
	logs       []*models.ActionLog
	settings   *models.BotSettings
	admins     map[int64]bool
	nextID     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      make(map[int64]*models.User),
		products:   make(map[int64]*models.Product),
		cities:     make(map[int64]*models.City),
		districts:  make(map[int64]*models.District),
		items:      make(map[int64]*models.InventoryItem),
		orders:     make(map[int64]*models.Order),
		reviews:    make(map[int64]*models.Review),
		tickets:    make(map[int64]*models.Ticket),
		broadcasts: make(map[int64]*models.Broadcast),
		settings: &models.BotSettings{
			ID:                  1,
			WelcomeText:         "Добро пожаловать!",
			PaymentInstructions: "Карта 0000",
			SupportUsername:     "support",
		},
		admins: make(map[int64]bool),
	}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func newTestService(repo *fakeRepo) *Service {
	cfg := &config.Config{
		AdminChatID:      1,
		PayloadKey:       strings.Repeat("ab", 32),
		BroadcastDelayMS: 0,
	}
	return NewService(repo, cfg, utils.InitLogger("error"))
}

// --- пользователи ---

func (f *fakeRepo) GetUser(_ context.Context, id int64) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateUser(_ context.Context, user *models.User) error {
	f.users[user.TelegramID] = user
	return nil
}

func (f *fakeRepo) UpdateUser(_ context.Context, user *models.User, _ *gorm.DB) error {
	f.users[user.TelegramID] = user
	return nil
}

func (f *fakeRepo) TouchUserActivity(_ context.Context, id int64, _ *gorm.DB) error {
	if u := f.users[id]; u != nil {
		u.LastActivity = time.Now()
	}
	return nil
}

func (f *fakeRepo) SetUserBlocked(_ context.Context, id int64, blocked bool) error {
	if u := f.users[id]; u != nil {
		u.IsBlocked = blocked
	}
	return nil
}

func (f *fakeRepo) AddUserPurchase(_ context.Context, id, price int64, _ *gorm.DB) error {
	if u := f.users[id]; u != nil {
		u.TotalOrders++
		u.TotalSpent += price
	}
	return nil
}

func (f *fakeRepo) GetUnblockedUserIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for id, u := range f.users {
		if !u.IsBlocked {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeRepo) ListUsers(_ context.Context, blockedOnly bool, limit, offset int) ([]*models.User, int64, error) {
	var users []*models.User
	for _, u := range f.users {
		if !blockedOnly || u.IsBlocked {
			users = append(users, u)
		}
	}
	return users, int64(len(users)), nil
}

func (f *fakeRepo) CountUsers(_ context.Context) (int64, int64, error) {
	var total, blocked int64
	for _, u := range f.users {
		total++
		if u.IsBlocked {
			blocked++
		}
	}
	return total, blocked, nil
}

// --- каталог ---

func (f *fakeRepo) CreateProduct(_ context.Context, p *models.Product) error {
	p.ID = f.id()
	f.products[p.ID] = p
	return nil
}

func (f *fakeRepo) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	return f.products[id], nil
}

func (f *fakeRepo) ListProducts(_ context.Context) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) CreateCity(_ context.Context, c *models.City) error {
	c.ID = f.id()
	f.cities[c.ID] = c
	return nil
}

func (f *fakeRepo) GetCity(_ context.Context, id int64) (*models.City, error) {
	return f.cities[id], nil
}

func (f *fakeRepo) ListCities(_ context.Context) ([]*models.City, error) {
	var out []*models.City
	for _, c := range f.cities {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepo) CreateDistrict(_ context.Context, d *models.District) error {
	d.ID = f.id()
	f.districts[d.ID] = d
	return nil
}

func (f *fakeRepo) GetDistrict(_ context.Context, id int64) (*models.District, error) {
	return f.districts[id], nil
}

func (f *fakeRepo) ListDistricts(_ context.Context, cityID int64) ([]*models.District, error) {
	var out []*models.District
	for _, d := range f.districts {
		if d.CityID == cityID {
			out = append(out, d)
		}
	}
	return out, nil
}

// --- витрина ---

func (f *fakeRepo) CreateInventoryItem(_ context.Context, item *models.InventoryItem) error {
	item.ID = f.id()
	if item.Status == "" {
		item.Status = models.ItemAvailable
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeRepo) GetInventoryItem(_ context.Context, id int64) (*models.InventoryItem, error) {
	return f.items[id], nil
}

func (f *fakeRepo) ReserveInventoryItem(_ context.Context, id, buyerID int64, _ *gorm.DB) (bool, error) {
	item := f.items[id]
	if item == nil || item.Status != models.ItemAvailable {
		return false, nil
	}
	item.Status = models.ItemReserved
	item.BuyerID = &buyerID
	return true, nil
}

func (f *fakeRepo) MarkInventorySold(_ context.Context, id int64, _ *gorm.DB) error {
	item := f.items[id]
	if item == nil || item.Status != models.ItemReserved {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	item.Status = models.ItemSold
	item.SoldAt = &now
	return nil
}

func (f *fakeRepo) ReleaseInventoryItem(_ context.Context, id int64, _ *gorm.DB) error {
	item := f.items[id]
	if item == nil || item.Status != models.ItemReserved {
		return gorm.ErrRecordNotFound
	}
	item.Status = models.ItemAvailable
	item.BuyerID = nil
	return nil
}

func (f *fakeRepo) ProductsWithStock(_ context.Context) ([]*models.StockCount, error) {
	counts := make(map[int64]int)
	for _, item := range f.items {
		if item.Status == models.ItemAvailable {
			counts[item.ProductID]++
		}
	}
	var out []*models.StockCount
	for id, n := range counts {
		name := ""
		if p := f.products[id]; p != nil {
			name = p.Name
		}
		out = append(out, &models.StockCount{ID: id, Name: name, Count: n})
	}
	return out, nil
}

func (f *fakeRepo) CitiesWithStock(_ context.Context, productID int64) ([]*models.StockCount, error) {
	counts := make(map[int64]int)
	for _, item := range f.items {
		if item.Status == models.ItemAvailable && item.ProductID == productID {
			counts[item.CityID]++
		}
	}
	var out []*models.StockCount
	for id, n := range counts {
		out = append(out, &models.StockCount{ID: id, Count: n})
	}
	return out, nil
}

func (f *fakeRepo) DistrictsWithStock(_ context.Context, productID, cityID int64) ([]*models.StockCount, error) {
	counts := make(map[int64]int)
	for _, item := range f.items {
		if item.Status == models.ItemAvailable && item.ProductID == productID && item.CityID == cityID {
			counts[item.DistrictID]++
		}
	}
	var out []*models.StockCount
	for id, n := range counts {
		out = append(out, &models.StockCount{ID: id, Count: n})
	}
	return out, nil
}

func (f *fakeRepo) OfferGroups(_ context.Context, productID, cityID, districtID int64) ([]*models.OfferGroup, error) {
	type key struct {
		w float64
		p int64
	}
	groups := make(map[key]*models.OfferGroup)
	for _, item := range f.items {
		if item.Status != models.ItemAvailable ||
			item.ProductID != productID || item.CityID != cityID || item.DistrictID != districtID {
			continue
		}
		k := key{item.WeightGrams, item.PriceRub}
		g := groups[k]
		if g == nil {
			g = &models.OfferGroup{WeightGrams: item.WeightGrams, PriceRub: item.PriceRub, FirstID: item.ID}
			groups[k] = g
		}
		g.Count++
		if item.ID < g.FirstID {
			g.FirstID = item.ID
		}
	}
	var out []*models.OfferGroup
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriceRub < out[j].PriceRub })
	return out, nil
}

func (f *fakeRepo) CountInventoryByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, item := range f.items {
		if item.Status == status {
			n++
		}
	}
	return n, nil
}

// --- заказы ---

func (f *fakeRepo) CreateOrder(_ context.Context, order *models.Order, _ *gorm.DB) error {
	order.ID = f.id()
	order.CreatedAt = time.Now()
	f.orders[order.ID] = order
	return nil
}

func (f *fakeRepo) getOrderLoaded(id int64) *models.Order {
	order := f.orders[id]
	if order == nil {
		return nil
	}
	if item := f.items[order.InventoryID]; item != nil {
		order.Inventory = item
		item.Product = f.products[item.ProductID]
		item.City = f.cities[item.CityID]
		item.District = f.districts[item.DistrictID]
	}
	order.User = f.users[order.UserID]
	return order
}

func (f *fakeRepo) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	return f.getOrderLoaded(id), nil
}

func (f *fakeRepo) GetOrderByReference(_ context.Context, reference string) (*models.Order, error) {
	for id, o := range f.orders {
		if o.Reference == reference {
			return f.getOrderLoaded(id), nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetOrderForUpdate(_ context.Context, id int64, _ *gorm.DB) (*models.Order, error) {
	return f.orders[id], nil
}

func (f *fakeRepo) MarkOrderConfirmed(_ context.Context, id, adminID int64, _ *gorm.DB) error {
	order := f.orders[id]
	if order == nil || order.Status != models.OrderPending {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	order.Status = models.OrderConfirmed
	order.ConfirmedBy = &adminID
	order.ConfirmedAt = &now
	return nil
}

func (f *fakeRepo) MarkOrderCancelled(_ context.Context, id int64, reason string, _ *gorm.DB) error {
	order := f.orders[id]
	if order == nil || order.Status != models.OrderPending {
		return gorm.ErrRecordNotFound
	}
	order.Status = models.OrderCancelled
	order.RejectionReason = reason
	return nil
}

func (f *fakeRepo) ListOrders(_ context.Context, status string, limit, offset int) ([]*models.Order, int64, error) {
	var out []*models.Order
	for id, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, f.getOrderLoaded(id))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) ListUserOrders(_ context.Context, userID int64, limit, offset int) ([]*models.Order, int64, error) {
	var out []*models.Order
	for id, o := range f.orders {
		if o.UserID == userID {
			out = append(out, f.getOrderLoaded(id))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) CountOrdersByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, o := range f.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountUserConfirmedOrders(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, o := range f.orders {
		if o.UserID == userID && o.Status == models.OrderConfirmed {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) Revenue(_ context.Context) (int64, error) {
	var sum int64
	for _, o := range f.orders {
		if o.Status != models.OrderConfirmed {
			continue
		}
		if item := f.items[o.InventoryID]; item != nil {
			sum += item.PriceRub
		}
	}
	return sum, nil
}

func (f *fakeRepo) ConfirmedOrdersSince(_ context.Context, since time.Time) ([]*models.Order, error) {
	var out []*models.Order
	for id, o := range f.orders {
		if o.Status == models.OrderConfirmed && o.ConfirmedAt != nil && o.ConfirmedAt.After(since) {
			out = append(out, f.getOrderLoaded(id))
		}
	}
	return out, nil
}

// --- отзывы ---

func (f *fakeRepo) CreateReview(_ context.Context, review *models.Review) error {
	review.ID = f.id()
	review.CreatedAt = time.Now()
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeRepo) ListApprovedReviews(_ context.Context, limit, offset int) ([]*models.Review, int64, error) {
	var out []*models.Review
	for _, r := range f.reviews {
		if r.IsApproved {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) ListPendingReviews(_ context.Context, limit, offset int) ([]*models.Review, int64, error) {
	var out []*models.Review
	for _, r := range f.reviews {
		if !r.IsApproved {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) ApproveReview(_ context.Context, id int64) error {
	r := f.reviews[id]
	if r == nil {
		return gorm.ErrRecordNotFound
	}
	r.IsApproved = true
	return nil
}

func (f *fakeRepo) DeleteReview(_ context.Context, id int64) error {
	delete(f.reviews, id)
	return nil
}

func (f *fakeRepo) CountRecentUserReviews(_ context.Context, userID int64, since time.Time) (int64, error) {
	var n int64
	for _, r := range f.reviews {
		if r.UserID == userID && r.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

// --- обращения ---

func (f *fakeRepo) CreateTicket(_ context.Context, ticket *models.Ticket) error {
	ticket.ID = f.id()
	ticket.CreatedAt = time.Now()
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeRepo) GetTicket(_ context.Context, id int64) (*models.Ticket, error) {
	return f.tickets[id], nil
}

func (f *fakeRepo) ListOpenTickets(_ context.Context, limit, offset int) ([]*models.Ticket, int64, error) {
	var out []*models.Ticket
	for _, t := range f.tickets {
		if t.Status == models.TicketOpen {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) AnswerTicket(_ context.Context, id, adminID int64, response string) error {
	t := f.tickets[id]
	if t == nil || t.Status != models.TicketOpen {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	t.Status = models.TicketAnswered
	t.AdminResponse = response
	t.RespondedBy = &adminID
	t.ClosedAt = &now
	return nil
}

// --- рассылки ---

func (f *fakeRepo) CreateBroadcast(_ context.Context, broadcast *models.Broadcast) error {
	broadcast.ID = f.id()
	broadcast.CreatedAt = time.Now()
	f.broadcasts[broadcast.ID] = broadcast
	return nil
}

func (f *fakeRepo) GetBroadcast(_ context.Context, id int64) (*models.Broadcast, error) {
	return f.broadcasts[id], nil
}

func (f *fakeRepo) FinishBroadcast(_ context.Context, id int64, sent, failed int) error {
	bc := f.broadcasts[id]
	if bc == nil {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	bc.Status = models.BroadcastCompleted
	bc.SentCount = sent
	bc.FailedCount = failed
	bc.CompletedAt = &now
	return nil
}

func (f *fakeRepo) ListBroadcasts(_ context.Context, limit, offset int) ([]*models.Broadcast, int64, error) {
	var out []*models.Broadcast
	for _, bc := range f.broadcasts {
		out = append(out, bc)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) CountBroadcastsSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, bc := range f.broadcasts {
		if bc.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

// --- настройки и админы ---

func (f *fakeRepo) GetSettings(_ context.Context) (*models.BotSettings, error) {
	return f.settings, nil
}

func (f *fakeRepo) SaveSettings(_ context.Context, settings *models.BotSettings) error {
	settings.ID = 1
	f.settings = settings
	return nil
}

func (f *fakeRepo) IsAdmin(_ context.Context, userID int64) (bool, error) {
	return f.admins[userID], nil
}

func (f *fakeRepo) CreateActionLog(_ context.Context, entry *models.ActionLog) error {
	entry.ID = f.id()
	entry.CreatedAt = time.Now()
	f.logs = append(f.logs, entry)
	return nil
}

func (f *fakeRepo) ListActionLogs(_ context.Context, since time.Time, limit, offset int) ([]*models.ActionLog, int64, error) {
	var out []*models.ActionLog
	for _, l := range f.logs {
		if since.IsZero() || l.CreatedAt.After(since) {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) PruneActionLogs(_ context.Context, before time.Time) (int64, error) {
	var kept []*models.ActionLog
	var removed int64
	for _, l := range f.logs {
		if !before.IsZero() && l.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	f.logs = kept
	return removed, nil
}

// --- транзакции ---

func (f *fakeRepo) BeginTransaction(_ context.Context) (*gorm.DB, error) { return nil, nil }
func (f *fakeRepo) Commit(_ *gorm.DB) error                              { return nil }
func (f *fakeRepo) Rollback(_ *gorm.DB)                                  {}
