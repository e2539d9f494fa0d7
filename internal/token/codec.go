// token реализует кодек самодостаточных подписанных токенов (JWT, HS256).
//
// Кодек не имеет разделяемого изменяемого состояния: секрет и issuer
// задаются один раз при создании, после чего экземпляр безопасен для
// конкурентного использования.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind — вид токена.
type Kind string

const (
	// KindAccess — короткоживущий токен доступа к API.
	KindAccess Kind = "access"
	// KindRefresh — долгоживущий токен для выпуска новой пары.
	KindRefresh Kind = "refresh"
)

var (
	// ErrTokenMalformed — строка не является корректным токеном
	// (битый формат, неизвестный вид, отсутствующие клеймы).
	ErrTokenMalformed = errors.New("token malformed")

	// ErrSignatureInvalid — подпись не сходится (токен подделан или
	// подписан другим секретом).
	ErrSignatureInvalid = errors.New("token signature invalid")

	// ErrTokenExpired — срок действия токена истёк; проверяется внутри
	// Decode до любой логики вызывающего.
	ErrTokenExpired = errors.New("token expired")
)

// Claims — типизированные клеймы токена: sub/iat/exp из RegisteredClaims
// плюс вид токена в клейме "type".
type Claims struct {
	Kind Kind `json:"type"`
	jwt.RegisteredClaims
}

// UserID возвращает subject как uuid.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// RemainingLifetime — остаток жизни токена относительно now; не меньше нуля.
func (c *Claims) RemainingLifetime(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}

	d := c.ExpiresAt.Time.Sub(now)
	if d < 0 {
		return 0
	}

	return d
}

// Codec подписывает и проверяет токены процессным секретом.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewCodec создаёт кодек с данным секретом и issuer.
func NewCodec(secret, issuer string) *Codec {
	return &Codec{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// SetClock подменяет источник времени (для тестов).
func (c *Codec) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// Issue выпускает подписанный токен вида kind для subject со сроком ttl.
// Возвращает строку токена и момент истечения (UTC).
func (c *Codec) Issue(subject uuid.UUID, kind Kind, ttl time.Duration) (string, time.Time, error) {
	const op = "token.Issue"

	now := c.now().UTC()
	expiresAt := now.Add(ttl)

	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, expiresAt, nil
}

// Decode проверяет подпись и срок действия токена и возвращает клеймы.
//
// Ошибки: ErrTokenExpired / ErrSignatureInvalid / ErrTokenMalformed;
// вызывающий ветвится через errors.Is, не разбирая текст.
// Вместе с ErrTokenExpired возвращаются и клеймы: подпись корректна,
// и вызывающему может понадобиться subject истёкшего токена (аудит выхода).
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	const op = "token.Decode"

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: unexpected signing method", op)
			}

			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			if parsed != nil {
				if claims, ok := parsed.Claims.(*Claims); ok {
					return claims, fmt.Errorf("%s: %w", op, ErrTokenExpired)
				}
			}

			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%s: %w", op, ErrSignatureInvalid)
		default:
			return nil, fmt.Errorf("%s: %w", op, ErrTokenMalformed)
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenMalformed)
	}

	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenMalformed)
	}

	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenMalformed)
	}

	return claims, nil
}
