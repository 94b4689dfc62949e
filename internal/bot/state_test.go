package bot

import (
	"sync"
	"testing"
)

func TestTrackerStateLifecycle(t *testing.T) {
	tr := NewTracker()

	if got := tr.State(1); got != stateDefault {
		t.Errorf("fresh state = %q, want empty", got)
	}

	tr.SetState(1, stateAwaitingPaymentProof)
	if got := tr.State(1); got != stateAwaitingPaymentProof {
		t.Errorf("state = %q", got)
	}

	// Установка пустого состояния удаляет запись.
	tr.SetState(1, stateDefault)
	if got := tr.State(1); got != stateDefault {
		t.Errorf("state after reset = %q", got)
	}
}

func TestTrackerFields(t *testing.T) {
	tr := NewTracker()

	tr.SetField(1, "order_id", "42")
	if got := tr.Field(1, "order_id"); got != "42" {
		t.Errorf("field = %q", got)
	}
	if got := tr.FieldInt64(1, "order_id"); got != 42 {
		t.Errorf("int field = %d", got)
	}
	if got := tr.FieldInt64(1, "missing"); got != 0 {
		t.Errorf("missing int field = %d", got)
	}

	// Поля разных пользователей не пересекаются.
	if got := tr.Field(2, "order_id"); got != "" {
		t.Errorf("foreign field = %q", got)
	}
}

func TestTrackerBeginClobbersOldWizard(t *testing.T) {
	tr := NewTracker()

	tr.SetState(1, stateAwaitingRejectReason)
	tr.SetField(1, "order_id", "42")

	// Вход в новый мастер стирает хвосты брошенного.
	tr.Begin(1, stateAwaitingBroadcastText)
	if got := tr.State(1); got != stateAwaitingBroadcastText {
		t.Errorf("state = %q", got)
	}
	if got := tr.Field(1, "order_id"); got != "" {
		t.Errorf("stale field survived Begin: %q", got)
	}
}

func TestTrackerClear(t *testing.T) {
	tr := NewTracker()

	tr.SetState(1, stateAwaitingPayload)
	tr.SetField(1, "rs_price", "5000")
	tr.Clear(1)

	if tr.State(1) != stateDefault || tr.Field(1, "rs_price") != "" {
		t.Error("Clear left state or fields behind")
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			tr.Begin(n, stateAwaitingPaymentProof)
			tr.SetField(n, "order_id", "1")
			tr.State(n)
			tr.Clear(n)
		}(int64(i))
	}
	wg.Wait()
}

func TestParseSuffixID(t *testing.T) {
	if id, ok := parseSuffixID("buy_item_42", "buy_item_"); !ok || id != 42 {
		t.Errorf("got %d, %v", id, ok)
	}
	if _, ok := parseSuffixID("buy_item_abc", "buy_item_"); ok {
		t.Error("accepted non-numeric id")
	}
	if _, ok := parseSuffixID("buy_item_", "buy_item_"); ok {
		t.Error("accepted empty id")
	}
}

func TestParseListToken(t *testing.T) {
	status, page, ok := parseListToken("adm_ord_list_pending_2", "adm_ord_list_")
	if !ok || status != "pending" || page != 2 {
		t.Errorf("got %q, %d, %v", status, page, ok)
	}
	if _, _, ok := parseListToken("adm_ord_list_pending", "adm_ord_list_"); ok {
		t.Error("accepted token without page")
	}
}
