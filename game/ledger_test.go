package game

import (
	"testing"
)

func TestShieldOrderTogglesWithExactRefund(t *testing.T) {
	st := newTestStore(t)
	gameID, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())
	round := currentRound(t, st, gameID)
	city := planetCities(t, st, planets[0].ID)[0]

	mustPlace(t, ledger, planets[0].ID, OrderShield, city.ID)
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 700 {
		t.Fatalf("expected balance 700 after shield order, got %d", got)
	}

	order, err := st.GetOrder(planets[0].ID, string(OrderShield), round, city.ID)
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}
	if order == nil {
		t.Fatal("expected shield order to be recorded")
	}

	// Same order again cancels it and refunds the full cost.
	mustPlace(t, ledger, planets[0].ID, OrderShield, city.ID)
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 1000 {
		t.Fatalf("expected balance 1000 after cancel, got %d", got)
	}
	order, err = st.GetOrder(planets[0].ID, string(OrderShield), round, city.ID)
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}
	if order != nil {
		t.Fatal("expected shield order to be withdrawn")
	}
}

func TestShieldOrderInsufficientFunds(t *testing.T) {
	st := newTestStore(t)
	_, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())
	city := planetCities(t, st, planets[0].ID)[0]

	if err := st.AddBalance(planets[0].ID, -800); err != nil {
		t.Fatalf("failed to drain balance: %v", err)
	}

	reason, err := ledger.PlaceOrder(planets[0].ID, OrderShield, city.ID)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if reason != NotEnoughMoney {
		t.Fatalf("expected NOT_ENOUGH_MONEY, got %s", reason)
	}
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 200 {
		t.Fatalf("expected balance untouched at 200, got %d", got)
	}
}

func TestDevelopOrderChargesCost(t *testing.T) {
	st := newTestStore(t)
	_, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())
	city := planetCities(t, st, planets[0].ID)[0]

	mustPlace(t, ledger, planets[0].ID, OrderDevelop, city.ID)
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 850 {
		t.Fatalf("expected balance 850, got %d", got)
	}
}

func TestOrderRejectsUnknownCity(t *testing.T) {
	st := newTestStore(t)
	_, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())

	reason, err := ledger.PlaceOrder(planets[0].ID, OrderDevelop, 99999)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if reason != ObjectNotFound {
		t.Fatalf("expected OBJECT_NOT_FOUND, got %s", reason)
	}
}

func TestOrdersRejectedOutsideRound(t *testing.T) {
	st := newTestStore(t)
	gameID, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())
	engine := NewEngine(st, testConfig())
	city := planetCities(t, st, planets[0].ID)[0]

	if _, reason, err := engine.EndCurrentRound(gameID); err != nil || reason != Success {
		t.Fatalf("failed to end round: %v %s", err, reason)
	}

	reason, err := ledger.PlaceOrder(planets[0].ID, OrderShield, city.ID)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if reason != UntimelyAction {
		t.Fatalf("expected UNTIMELY_ACTION, got %s", reason)
	}
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 1000 {
		t.Fatalf("expected balance untouched, got %d", got)
	}
}

func TestCreateOrderDeltaCharging(t *testing.T) {
	st := newTestStore(t)
	gameID, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())
	round := currentRound(t, st, gameID)

	if err := st.InventPlanets([]int64{planets[0].ID}); err != nil {
		t.Fatalf("failed to invent planet: %v", err)
	}

	mustPlace(t, ledger, planets[0].ID, OrderCreate, 3)
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 550 {
		t.Fatalf("expected balance 550 after ordering 3, got %d", got)
	}

	// Lowering the count refunds only the difference.
	mustPlace(t, ledger, planets[0].ID, OrderCreate, 2)
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 700 {
		t.Fatalf("expected balance 700 after lowering to 2, got %d", got)
	}
	order, err := st.GetOrderByKind(planets[0].ID, string(OrderCreate), round)
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}
	if order == nil || order.Argument != 2 {
		t.Fatalf("expected create order for 2, got %+v", order)
	}

	// Zero withdraws the order and refunds everything.
	mustPlace(t, ledger, planets[0].ID, OrderCreate, 0)
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 1000 {
		t.Fatalf("expected balance 1000 after withdrawal, got %d", got)
	}
	order, err = st.GetOrderByKind(planets[0].ID, string(OrderCreate), round)
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}
	if order != nil {
		t.Fatal("expected create order to be withdrawn")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	st := newTestStore(t)
	_, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())

	reason, err := ledger.PlaceOrder(planets[0].ID, OrderCreate, -1)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if reason != NegativeAmount {
		t.Fatalf("expected NEGATIVE_AMOUNT, got %s", reason)
	}

	reason, err = ledger.PlaceOrder(planets[0].ID, OrderCreate, 2)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if reason != IsNotInvented {
		t.Fatalf("expected IS_NOT_INVENTED, got %s", reason)
	}
}

func TestAttackOrderToggleRefundsMeteorite(t *testing.T) {
	st := newTestStore(t)
	_, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())
	target := planetCities(t, st, planets[1].ID)[0]

	if err := st.InventPlanets([]int64{planets[0].ID}); err != nil {
		t.Fatalf("failed to invent planet: %v", err)
	}
	if err := st.AddMeteorites(planets[0].ID, 2); err != nil {
		t.Fatalf("failed to stock meteorites: %v", err)
	}

	mustPlace(t, ledger, planets[0].ID, OrderAttack, target.ID)
	if got := reloadPlanet(t, st, planets[0].ID).Meteorites; got != 1 {
		t.Fatalf("expected 1 meteorite left, got %d", got)
	}

	mustPlace(t, ledger, planets[0].ID, OrderAttack, target.ID)
	if got := reloadPlanet(t, st, planets[0].ID).Meteorites; got != 2 {
		t.Fatalf("expected meteorite refunded, got %d", got)
	}
}

func TestAttackOrderValidation(t *testing.T) {
	st := newTestStore(t)
	_, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())
	own := planetCities(t, st, planets[0].ID)[0]
	target := planetCities(t, st, planets[1].ID)[0]

	// Attacks require rocketry.
	reason, err := ledger.PlaceOrder(planets[0].ID, OrderAttack, target.ID)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if reason != IsNotInvented {
		t.Fatalf("expected IS_NOT_INVENTED, got %s", reason)
	}

	if err := st.InventPlanets([]int64{planets[0].ID}); err != nil {
		t.Fatalf("failed to invent planet: %v", err)
	}

	reason, err = ledger.PlaceOrder(planets[0].ID, OrderAttack, own.ID)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if reason != SelfAttack {
		t.Fatalf("expected SELF_ATTACK, got %s", reason)
	}

	reason, err = ledger.PlaceOrder(planets[0].ID, OrderAttack, target.ID)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if reason != NotEnoughMeteorites {
		t.Fatalf("expected NOT_ENOUGH_METEORITES, got %s", reason)
	}
}

func TestEcoOrderToggle(t *testing.T) {
	st := newTestStore(t)
	_, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())

	reason, err := ledger.PlaceOrder(planets[0].ID, OrderEco, 0)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if reason != NotEnoughMeteorites {
		t.Fatalf("expected NOT_ENOUGH_METEORITES, got %s", reason)
	}

	if err := st.AddMeteorites(planets[0].ID, 1); err != nil {
		t.Fatalf("failed to stock meteorites: %v", err)
	}

	mustPlace(t, ledger, planets[0].ID, OrderEco, 0)
	if got := reloadPlanet(t, st, planets[0].ID).Meteorites; got != 0 {
		t.Fatalf("expected 0 meteorites after eco order, got %d", got)
	}

	mustPlace(t, ledger, planets[0].ID, OrderEco, 0)
	if got := reloadPlanet(t, st, planets[0].ID).Meteorites; got != 1 {
		t.Fatalf("expected meteorite refunded, got %d", got)
	}
}

func TestSanctionsOrderIsFree(t *testing.T) {
	st := newTestStore(t)
	gameID, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())
	round := currentRound(t, st, gameID)

	mustPlace(t, ledger, planets[0].ID, OrderSanctions, planets[1].ID)
	planet := reloadPlanet(t, st, planets[0].ID)
	if planet.Balance != 1000 || planet.Meteorites != 0 {
		t.Fatalf("expected sanctions to cost nothing, got balance %d meteorites %d",
			planet.Balance, planet.Meteorites)
	}

	order, err := st.GetOrder(planets[0].ID, string(OrderSanctions), round, planets[1].ID)
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}
	if order == nil {
		t.Fatal("expected sanctions order to be recorded")
	}

	mustPlace(t, ledger, planets[0].ID, OrderSanctions, planets[1].ID)
	order, err = st.GetOrder(planets[0].ID, string(OrderSanctions), round, planets[1].ID)
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}
	if order != nil {
		t.Fatal("expected sanctions order to be withdrawn")
	}
}

func TestInventOrderToggle(t *testing.T) {
	st := newTestStore(t)
	_, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())

	mustPlace(t, ledger, planets[0].ID, OrderInvent, 0)
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 500 {
		t.Fatalf("expected balance 500, got %d", got)
	}

	mustPlace(t, ledger, planets[0].ID, OrderInvent, 0)
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 1000 {
		t.Fatalf("expected balance 1000 after cancel, got %d", got)
	}
}

func TestInventOrderValidation(t *testing.T) {
	st := newTestStore(t)
	_, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())

	if err := st.InventPlanets([]int64{planets[0].ID}); err != nil {
		t.Fatalf("failed to invent planet: %v", err)
	}
	reason, err := ledger.PlaceOrder(planets[0].ID, OrderInvent, 0)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if reason != AlreadyInvented {
		t.Fatalf("expected ALREADY_INVENTED, got %s", reason)
	}

	if err := st.AddBalance(planets[1].ID, -900); err != nil {
		t.Fatalf("failed to drain balance: %v", err)
	}
	reason, err = ledger.PlaceOrder(planets[1].ID, OrderInvent, 0)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if reason != NotEnoughMoney {
		t.Fatalf("expected NOT_ENOUGH_MONEY, got %s", reason)
	}
}

func TestTransfer(t *testing.T) {
	st := newTestStore(t)
	_, planets := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())

	reason, err := ledger.Transfer(planets[0].ID, planets[1].ID, 250)
	if err != nil {
		t.Fatalf("Transfer returned error: %v", err)
	}
	if reason != Success {
		t.Fatalf("expected transfer to succeed, got %s", reason)
	}
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 750 {
		t.Fatalf("expected sender balance 750, got %d", got)
	}
	if got := reloadPlanet(t, st, planets[1].ID).Balance; got != 1250 {
		t.Fatalf("expected receiver balance 1250, got %d", got)
	}
}

func TestTransferValidation(t *testing.T) {
	st := newTestStore(t)
	_, planets := newTestGame(t, st, 2)
	_, others := newTestGame(t, st, 2)
	ledger := NewLedger(st, testConfig())

	tests := []struct {
		name   string
		from   int64
		to     int64
		amount int
		want   FailureReason
	}{
		{"negative amount", planets[0].ID, planets[1].ID, -5, NegativeAmount},
		{"zero amount", planets[0].ID, planets[1].ID, 0, NegativeAmount},
		{"unknown sender", 99999, planets[1].ID, 10, ObjectNotFound},
		{"unknown receiver", planets[0].ID, 99999, 10, ObjectNotFound},
		{"cross game", planets[0].ID, others[0].ID, 10, DifferentGames},
		{"over budget", planets[0].ID, planets[1].ID, 1001, NotEnoughMoney},
	}
	for _, tt := range tests {
		reason, err := ledger.Transfer(tt.from, tt.to, tt.amount)
		if err != nil {
			t.Fatalf("%s: Transfer returned error: %v", tt.name, err)
		}
		if reason != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, reason)
		}
	}

	// Nothing moved.
	if got := reloadPlanet(t, st, planets[0].ID).Balance; got != 1000 {
		t.Fatalf("expected sender balance untouched, got %d", got)
	}
}
