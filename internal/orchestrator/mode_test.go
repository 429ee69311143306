package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseModeRecognizedTokens(t *testing.T) {
	cases := map[string]Mode{
		"start-demo":       ModeStartDemo,
		"start-production": ModeStartProduction,
		"stop":             ModeStop,
		"show-logs":        ModeShowLogs,
		"reset":            ModeReset,
		"health-check":     ModeHealthCheck,
	}

	for token, want := range cases {
		mode, err := ParseMode(token)
		require.NoError(t, err, token)
		require.Equal(t, want, mode, token)
		require.Equal(t, token, mode.String())
	}
}

func TestParseModeDefault(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	require.Equal(t, ModeStartDemo, mode)
}

func TestParseModeUnrecognized(t *testing.T) {
	for _, token := range []string{"start", "Start-Demo", "destroy", "status"} {
		_, err := ParseMode(token)
		require.ErrorIs(t, err, ErrInvalidMode, token)
	}
}

func TestModeTokensCoversAllModes(t *testing.T) {
	tokens := ModeTokens()
	require.Len(t, tokens, len(modeTokens))
	for _, token := range tokens {
		_, err := ParseMode(token)
		require.NoError(t, err)
	}
}
