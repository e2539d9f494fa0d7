// redact содержит хелперы для безопасного логирования чувствительных значений.
// Токены и пароли в логи не попадают никогда; логин маскируется до первых
// двух символов.
package redact

// Username маскирует логин, оставляя первые две руны.
func Username(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		return "***"
	}

	return string(r[:2]) + "***"
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
