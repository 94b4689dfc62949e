package bot

import (
	"strconv"
	"strings"
	"sync"
)

// Константы состояний диалога
const (
	stateDefault = ""

	// Покупатель
	stateAwaitingCaptcha      = "awaiting_captcha"
	stateAwaitingPaymentProof = "awaiting_payment_proof"
	stateAwaitingReviewText   = "awaiting_review_text"
	stateAwaitingTicketText   = "awaiting_ticket_text"

	// Админ: каталог и пополнение
	stateAwaitingProductName  = "awaiting_product_name"
	stateAwaitingProductDesc  = "awaiting_product_desc"
	stateAwaitingCityName     = "awaiting_city_name"
	stateAwaitingDistrictName = "awaiting_district_name"
	stateAwaitingWeightPrice  = "awaiting_weight_price"
	stateAwaitingPayload      = "awaiting_payload"

	// Админ: заказы, пользователи, рассылки, настройки
	stateAwaitingRejectReason    = "awaiting_reject_reason"
	stateAwaitingOrderSearch     = "awaiting_order_search"
	stateAwaitingUserSearch      = "awaiting_user_search"
	stateAwaitingDirectMessage   = "awaiting_direct_message"
	stateAwaitingBroadcastText   = "awaiting_broadcast_text"
	stateAwaitingTicketReply     = "awaiting_ticket_reply"
	stateAwaitingWelcomeText     = "awaiting_welcome_text"
	stateAwaitingPaymentDetails  = "awaiting_payment_details"
	stateAwaitingSupportUsername = "awaiting_support_username"
)

// Tracker хранит состояние диалога и временные поля мастеров в памяти.
// Передаётся боту снаружи, чтобы обработчики можно было тестировать
// без Telegram.
type Tracker struct {
	mu     sync.Mutex
	states map[int64]string
	fields map[int64]map[string]string
}

func NewTracker() *Tracker {
	return &Tracker{
		states: make(map[int64]string),
		fields: make(map[int64]map[string]string),
	}
}

func (t *Tracker) SetState(userID int64, state string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state == stateDefault {
		delete(t.states, userID)
	} else {
		t.states[userID] = state
	}
}

func (t *Tracker) State(userID int64) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[userID]
}

func (t *Tracker) SetField(userID int64, key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fields[userID] == nil {
		t.fields[userID] = make(map[string]string)
	}
	t.fields[userID][key] = value
}

func (t *Tracker) Field(userID int64, key string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fields[userID][key]
}

func (t *Tracker) FieldInt64(userID int64, key string) int64 {
	v, _ := strconv.ParseInt(t.Field(userID, key), 10, 64)
	return v
}

// Clear сбрасывает и состояние, и поля. Повторный вход в любой мастер
// начинается с Clear, чтобы хвосты брошенного диалога не протекали.
func (t *Tracker) Clear(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, userID)
	delete(t.fields, userID)
}

// Begin - вход в мастер: чистый лист плюс стартовое состояние.
func (t *Tracker) Begin(userID int64, state string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.fields, userID)
	t.states[userID] = state
}

// parseSuffixID вырезает числовой ID из токена callback-а вида "prefix_123".
func parseSuffixID(data, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(data, prefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
