// Package svccert следит за наличием действующей пары сертификат/ключ на диске для HTTPS сервера.
package svccert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsdevblog/urlkeeper/internal/sslcert"
)

const (
	defaultCertFilePath = "cert.pem" // Путь к файлу сертификата по умолчанию.
	defaultKeyFilePath  = "key.pem"  // Путь к файлу приватного ключа по умолчанию.
)

// Options Опции для конфигурации сервиса.
type Options struct {
	CertFilePath string   // Путь к файлу сертификата.
	KeyFilePath  string   // Путь к файлу приватного ключа.
	Hosts        []string // Хосты, на которые выписывается сертификат. Пусто - значения sslcert по умолчанию.
}

// Cert Сервис для генерации SSL/TLS сертификатов.
type Cert struct {
	gen          *sslcert.Generator
	certFilePath string
	keyFilePath  string
}

// New создает новый экземпляр Cert с указанными опциями.
// Если опции не указаны, используются значения по умолчанию.
func New(opts ...func(*Options)) *Cert {
	o := Options{
		CertFilePath: defaultCertFilePath,
		KeyFilePath:  defaultKeyFilePath,
	}
	for _, opt := range opts {
		opt(&o)
	}
	gen := sslcert.New(func(so *sslcert.Options) {
		if len(o.Hosts) > 0 {
			so.Hosts = o.Hosts
		}
	})
	return &Cert{
		gen:          gen,
		certFilePath: o.CertFilePath,
		keyFilePath:  o.KeyFilePath,
	}
}

// Paths возвращает пути к файлам сертификата и ключа для http.Server.ListenAndServeTLS.
func (c *Cert) Paths() (string, string) {
	return c.certFilePath, c.keyFilePath
}

// GenerateAndSaveIfNeed проверяет существующие файлы сертификата и ключа.
// Если файлы отсутствуют, пусты, сертификат просрочен или выписан на другие хосты - генерирует и записывает новую пару.
//
// Параметры:
//   - modifiers: модификаторы для настройки генерации сертификата.
//
// Возвращает:
//   - bool: true, если была сгенерирована новая пара.
//   - error: ошибка при проверке/генерации/сохранении сертификата.
func (c *Cert) GenerateAndSaveIfNeed(modifiers ...sslcert.Modifier) (bool, error) {
	errCheck := c.check()
	switch {
	case errCheck == nil:
		return false, nil
	case errors.Is(errCheck, os.ErrNotExist),
		errors.Is(errCheck, sslcert.ErrBlankPEM),
		errors.Is(errCheck, sslcert.ErrCertExpired),
		errors.Is(errCheck, sslcert.ErrHostMismatch):
	default:
		return false, fmt.Errorf("check certificate and private key: %w", errCheck)
	}

	certPEM, keyPEM, errGen := c.gen.Generate(modifiers...)
	if errGen != nil {
		return false, fmt.Errorf("generate certificate and private key: %w", errGen)
	}
	if err := writeFile(c.certFilePath, certPEM); err != nil {
		return false, fmt.Errorf("save certificate: %w", err)
	}
	if err := writeFile(c.keyFilePath, keyPEM); err != nil {
		return false, fmt.Errorf("save private key: %w", err)
	}
	return true, nil
}

func (c *Cert) check() error {
	cert, err := os.Open(c.certFilePath)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer cert.Close()

	key, err := os.Open(c.keyFilePath)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer key.Close()

	return c.gen.CheckPemFiles(cert, key) //nolint:wrapcheck
}

// writeFile создает недостающие директории и перезаписывает файл целиком.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
