package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/fsdevblog/urlkeeper/internal/models"
)

// ShortCodeAlphabet допустимые символы короткого кода.
const ShortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// reservedShortCodes корневые маршруты приложения. Такой код перекрывался бы
// статическим маршрутом и никогда не доходил бы до GET /:code.
//
//nolint:gochecknoglobals
var reservedShortCodes = map[string]struct{}{
	"register":  {},
	"login":     {},
	"logout":    {},
	"dashboard": {},
	"shorten":   {},
	"profile":   {},
	"ping":      {},
	"metrics":   {},
}

// IsReservedShortCode сообщает, совпадает ли код с именем корневого маршрута.
func IsReservedShortCode(code string) bool {
	_, ok := reservedShortCodes[code]
	return ok
}

// RandomCodeGenerator генерирует коды из ShortCodeAlphabet криптографически стойким генератором.
type RandomCodeGenerator struct {
	length int
}

func NewRandomCodeGenerator() *RandomCodeGenerator {
	return &RandomCodeGenerator{length: models.ShortCodeLength}
}

func (g *RandomCodeGenerator) Generate() (string, error) {
	alphabetLen := big.NewInt(int64(len(ShortCodeAlphabet)))
	code := make([]byte, g.length)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("generate short code: %w", err)
		}
		code[i] = ShortCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// IsValidShortCode проверяет длину и алфавит кода без обращения к хранилищу.
func IsValidShortCode(code string) bool {
	if len(code) != models.ShortCodeLength {
		return false
	}
	for i := range len(code) {
		c := code[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
