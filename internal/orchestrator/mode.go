package orchestrator

import "fmt"

// Mode is one operator command. Exactly one Mode is active per invocation and
// it is immutable once selected.
type Mode int

const (
	ModeStartDemo Mode = iota
	ModeStartProduction
	ModeStop
	ModeShowLogs
	ModeReset
	ModeHealthCheck
)

var modeTokens = map[Mode]string{
	ModeStartDemo:       "start-demo",
	ModeStartProduction: "start-production",
	ModeStop:            "stop",
	ModeShowLogs:        "show-logs",
	ModeReset:           "reset",
	ModeHealthCheck:     "health-check",
}

func (m Mode) String() string {
	if token, ok := modeTokens[m]; ok {
		return token
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode resolves an operator token to a Mode. An empty token selects the
// default, start-demo.
func ParseMode(token string) (Mode, error) {
	if token == "" {
		return ModeStartDemo, nil
	}
	for mode, candidate := range modeTokens {
		if candidate == token {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, token)
}

// ModeTokens lists all recognized tokens in display order.
func ModeTokens() []string {
	return []string{
		modeTokens[ModeStartDemo],
		modeTokens[ModeStartProduction],
		modeTokens[ModeStop],
		modeTokens[ModeShowLogs],
		modeTokens[ModeReset],
		modeTokens[ModeHealthCheck],
	}
}
