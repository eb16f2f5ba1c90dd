package game

// Game lifecycle. Orders are only accepted while a round is going; income is
// paid out during the meeting between rounds.
const (
	StatusWaiting = "waiting"
	StatusRound   = "round"
	StatusMeeting = "meeting"
	StatusEnded   = "ended"
)

// OrderKind names a planet's round-scoped intent.
type OrderKind string

const (
	OrderAttack    OrderKind = "attack"
	OrderDevelop   OrderKind = "develop"
	OrderShield    OrderKind = "shield"
	OrderCreate    OrderKind = "create"
	OrderEco       OrderKind = "eco"
	OrderSanctions OrderKind = "sanctions"
	OrderInvent    OrderKind = "invent"
)

// ParseOrderKind validates an order kind coming off the wire.
func ParseOrderKind(s string) (OrderKind, bool) {
	switch OrderKind(s) {
	case OrderAttack, OrderDevelop, OrderShield, OrderCreate, OrderEco, OrderSanctions, OrderInvent:
		return OrderKind(s), true
	}
	return "", false
}

// FailureReason is the machine-readable outcome of every game operation.
// Business-rule violations come back as values, never as errors; an
// operation that returns anything but Success performed no mutation.
type FailureReason string

const (
	Success               FailureReason = "SUCCESS"
	UntimelyAction        FailureReason = "UNTIMELY_ACTION"
	UntimelyNegotiations  FailureReason = "UNTIMELY_NEGOTIATIONS"
	PlanetIsBusy          FailureReason = "PLANET_IS_BUSY"
	BilateralNegotiations FailureReason = "BILATERAL_NEGOTIATIONS"
	AlreadyNegotiating    FailureReason = "ALREADY_NEGOTIATING"
	ObjectNotFound        FailureReason = "OBJECT_NOT_FOUND"
	AlreadyInvented       FailureReason = "ALREADY_INVENTED"
	NotEnoughMoney        FailureReason = "NOT_ENOUGH_MONEY"
	NotEnoughPlayers      FailureReason = "NOT_ENOUGH_PLAYERS"
	NotEnoughMeteorites   FailureReason = "NOT_ENOUGH_METEORITES"
	NotInGame             FailureReason = "NOT_IN_GAME"
	NegativeAmount        FailureReason = "NEGATIVE_AMOUNT"
	IsNotInvented         FailureReason = "IS_NOT_INVENTED"
	SelfAttack            FailureReason = "SELF_ATTACK"
	RoundIsNotGoing       FailureReason = "ROUND_IS_NOT_GOING"
	AlreadyInGame         FailureReason = "ALREADY_IN_GAME"
	GameEnded             FailureReason = "GAME_ENDED"
	GameIsFull            FailureReason = "GAME_IS_FULL"
	CannotStartRound      FailureReason = "CANNOT_START_ROUND"
	DifferentGames        FailureReason = "DIFFERENT_GAMES"
)

// Event is broadcast to a game's websocket room.
type Event struct {
	Type    string `json:"type"`
	GameID  int64  `json:"gameId"`
	Payload any    `json:"payload,omitempty"`
}

type PlayerJoinedPayload struct {
	PlanetID   int64  `json:"planetId"`
	PlanetName string `json:"planetName"`
	Commander  string `json:"commander"`
}

type RoundStartedPayload struct {
	Round int64 `json:"round"`
}

type RoundWarningPayload struct {
	Round       int64 `json:"round"`
	SecondsLeft int   `json:"secondsLeft"`
}

type NegotiationPayload struct {
	PlanetFrom int64 `json:"planetFrom"`
	PlanetTo   int64 `json:"planetTo"`
}

// Summary is the settlement result of one round: everything the report
// layer needs without re-deriving the rules.
type Summary struct {
	GameID          int64      `json:"gameId"`
	Round           int64      `json:"round"`
	Ecorate         int        `json:"ecorate"`
	DestroyedCities []int64    `json:"destroyedCities"`
	ConsumedShields []int64    `json:"consumedShields"`
	InventedPlanets []int64    `json:"inventedPlanets"`
	DevelopedCities []int64    `json:"developedCities"`
	ShieldedCities  []int64    `json:"shieldedCities"`
	Sanctions       []Sanction `json:"sanctions"`
	MeteoritesMade  int        `json:"meteoritesMade"`
	EcoBoosts       int        `json:"ecoBoosts"`
}

type Sanction struct {
	PlanetFrom int64 `json:"planetFrom"`
	PlanetTo   int64 `json:"planetTo"`
}
