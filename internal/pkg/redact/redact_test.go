package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Пакет unit-тестов для internal/pkg/redact.
//
// Покрытие (табличные тесты):
//   - Username: happy-path (ASCII), короткий логин (≤2 рун), пустая строка,
//     Unicode-логины (многобайтовые руны);
//   - Литералы Token/Password.

// TestUsername_Table — табличные тесты на маскирование логина.
func TestUsername_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii_len_gt_2", in: "alice", want: "al***"},
		{name: "ascii_len_1", in: "a", want: "***"},
		{name: "ascii_len_2", in: "ab", want: "***"},
		{name: "empty_string", in: "", want: "***"},
		{name: "unicode_len_gt_2_runes", in: "юзернейм", want: "юз***"},
		{name: "unicode_len_2_runes", in: "юз", want: "***"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, Username(tt.in))
		})
	}
}

// TestLiterals_TokenAndPassword — литералы для токенов/паролей неизменны.
func TestLiterals_TokenAndPassword(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[REDACTED_TOKEN]", Token())
	require.Equal(t, "[REDACTED_PASSWORD]", Password())
}
