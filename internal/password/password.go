// password реализует работу с паролями: bcrypt-хэширование, проверку
// и оценку сложности.
//
// Все функции чистые: без I/O, без разделяемого состояния, безопасны
// для конкурентного вызова.
package password

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Tier — итоговая оценка сложности пароля.
type Tier string

const (
	TierWeak       Tier = "weak"
	TierMedium     Tier = "medium"
	TierStrong     Tier = "strong"
	TierVeryStrong Tier = "very_strong"
)

// Strength — результат проверки сложности пароля.
type Strength struct {
	// Valid — true, если пароль удовлетворяет всем обязательным правилам.
	Valid bool
	// Errors — по одному сообщению на каждое нарушенное правило.
	Errors []string
	// Tier — оценка по кумулятивному скору (длина + классы символов).
	Tier Tier
}

// MinLength — минимально допустимая длина пароля.
const MinLength = 8

// Hash хэширует пароль с помощью bcrypt (адаптивная стоимость по умолчанию).
func Hash(password string) (string, error) {
	const op = "password.Hash"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// Verify сравнивает пароль с хэшем; сравнение внутри bcrypt — constant-time.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Check проверяет пароль на соответствие обязательным правилам и
// возвращает оценку сложности.
//
// Правила: длина >= 8, хотя бы одна заглавная и строчная буквы, цифра
// и спецсимвол. Каждое нарушение добавляет отдельное сообщение в Errors.
func Check(pw string) Strength {
	var errs []string

	runes := []rune(pw)
	classes := classify(pw)

	if len(runes) < MinLength {
		errs = append(errs, "password must be at least 8 characters long")
	}
	if !classes.upper {
		errs = append(errs, "password must contain at least one uppercase letter")
	}
	if !classes.lower {
		errs = append(errs, "password must contain at least one lowercase letter")
	}
	if !classes.digit {
		errs = append(errs, "password must contain at least one digit")
	}
	if !classes.special {
		errs = append(errs, "password must contain at least one special character")
	}

	return Strength{
		Valid:  len(errs) == 0,
		Errors: errs,
		Tier:   tier(runes, classes),
	}
}

type charClasses struct {
	upper, lower, digit, special bool
}

func classify(pw string) charClasses {
	var c charClasses
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			c.upper = true
		case unicode.IsLower(r):
			c.lower = true
		case unicode.IsDigit(r):
			c.digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			c.special = true
		}
	}

	return c
}

// tier считает кумулятивный скор: по одному баллу за пороги длины
// (>=8, >=12, >=16) и за каждый класс символов; максимум 7.
// Маппинг: weak < 3 <= medium < 5 <= strong < 7 <= very_strong.
func tier(runes []rune, c charClasses) Tier {
	score := 0

	if len(runes) >= 8 {
		score++
	}
	if len(runes) >= 12 {
		score++
	}
	if len(runes) >= 16 {
		score++
	}

	if c.upper {
		score++
	}
	if c.lower {
		score++
	}
	if c.digit {
		score++
	}
	if c.special {
		score++
	}

	switch {
	case score < 3:
		return TierWeak
	case score < 5:
		return TierMedium
	case score < 7:
		return TierStrong
	default:
		return TierVeryStrong
	}
}
