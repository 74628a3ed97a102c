package types

type BotState string

const (
	StateIdle           BotState = "idle"
	StateReadyDelay     BotState = "ready-delay"
	StateSearching      BotState = "searching"
	StatePursuing       BotState = "pursuing"
	StateEvadingReverse BotState = "evading-reverse"
	StateEvadingTurn    BotState = "evading-turn"
	StateUnknown        BotState = "unknown"
)
