// Package sslcert генерирует и проверяет самоподписанные сертификаты для локального HTTPS.
package sslcert

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"time"
)

const (
	defaultKeyBits  = 2048
	defaultValidity = 365 * 24 * time.Hour
)

// Options параметры шаблона сертификата.
type Options struct {
	Organization string
	// Hosts DNS имена и IP адреса, на которые выписывается сертификат.
	Hosts    []string
	Validity time.Duration
	KeyBits  int
}

// Generator генератор самоподписанных сертификатов.
type Generator struct {
	opts Options
}

// New создает генератор. По умолчанию сертификат выписывается на localhost, 127.0.0.1 и ::1 сроком на год.
func New(opts ...func(*Options)) *Generator {
	o := Options{
		Organization: "urlkeeper",
		Hosts:        []string{"localhost", "127.0.0.1", "::1"},
		Validity:     defaultValidity,
		KeyBits:      defaultKeyBits,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Generator{opts: o}
}

// Modifier модификатор для изменения параметров сертификата.
type Modifier struct {
	apply func(*x509.Certificate)
}

// Modify создает новый модификатор сертификата.
func Modify(fn func(*x509.Certificate)) Modifier {
	return Modifier{apply: fn}
}

// Generate генерирует новую пару сертификат/приватный ключ в формате PEM.
// Модификаторы применяются к копии шаблона, поэтому генератор можно переиспользовать.
func (g *Generator) Generate(modifiers ...Modifier) ([]byte, []byte, error) {
	cert, err := g.template()
	if err != nil {
		return nil, nil, err
	}
	for _, m := range modifiers {
		m.apply(cert)
	}

	privKey, errGenPrivKey := rsa.GenerateKey(rand.Reader, g.opts.KeyBits)
	if errGenPrivKey != nil {
		return nil, nil, fmt.Errorf("generate private key: %w", errGenPrivKey)
	}
	certBytes, errGenCert := x509.CreateCertificate(rand.Reader, cert, cert, &privKey.PublicKey, privKey)
	if errGenCert != nil {
		return nil, nil, fmt.Errorf("generate certificate: %w", errGenCert)
	}

	certPEM, privPEM, errPEM := pemEncode(privKey, certBytes)
	if errPEM != nil {
		return nil, nil, fmt.Errorf("encode certificate and private key: %w", errPEM)
	}
	return certPEM, privPEM, nil
}

func (g *Generator) template() (*x509.Certificate, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128)) //nolint:mnd
	if err != nil {
		return nil, fmt.Errorf("generate serial number: %w", err)
	}
	now := time.Now()
	cert := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{g.opts.Organization},
		},
		NotBefore: now.Add(-time.Minute),
		NotAfter:  now.Add(g.opts.Validity),
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
		},
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	for _, h := range g.opts.Hosts {
		if ip := net.ParseIP(h); ip != nil {
			cert.IPAddresses = append(cert.IPAddresses, ip)
		} else {
			cert.DNSNames = append(cert.DNSNames, h)
		}
	}
	return cert, nil
}

// CheckPemFiles проверяет PEM сертификата и ключа.
//
// Возможные ошибки:
//   - ErrBlankPEM - пустые данные в PEM-файле
//   - ErrCertExpired - срок действия сертификата истек
//   - ErrCertNotValidYet - сертификат еще не вступил в силу
//   - ErrHostMismatch - сертификат не покрывает хосты генератора
func (g *Generator) CheckPemFiles(certSource io.Reader, keySource io.Reader) error {
	certBytes, errReadCert := io.ReadAll(certSource)
	if errReadCert != nil {
		return fmt.Errorf("read certificate: %w", errReadCert)
	}
	keyBytes, errReadKey := io.ReadAll(keySource)
	if errReadKey != nil {
		return fmt.Errorf("read private key: %w", errReadKey)
	}
	if len(certBytes) == 0 || len(keyBytes) == 0 {
		return ErrBlankPEM
	}

	block, _ := pem.Decode(certBytes)
	if block == nil {
		return errors.New("pem decode: block is nil")
	}
	if block.Type != "CERTIFICATE" {
		return errors.New("certificate type is not CERTIFICATE")
	}

	cert, errParseCert := x509.ParseCertificate(block.Bytes)
	if errParseCert != nil {
		return fmt.Errorf("parse certificate: %w", errParseCert)
	}

	now := time.Now()
	if cert.NotBefore.After(now) {
		return ErrCertNotValidYet
	}
	if cert.NotAfter.Before(now) {
		return ErrCertExpired
	}
	for _, h := range g.opts.Hosts {
		if err := cert.VerifyHostname(h); err != nil {
			return fmt.Errorf("%w: %s", ErrHostMismatch, h)
		}
	}
	return nil
}

func pemEncode(privKey *rsa.PrivateKey, certBytes []byte) ([]byte, []byte, error) {
	var certPEM bytes.Buffer
	if err := pem.Encode(&certPEM, &pem.Block{Type: "CERTIFICATE", Bytes: certBytes}); err != nil {
		return nil, nil, fmt.Errorf("pem encode certificate: %w", err)
	}

	var privKeyPEM bytes.Buffer
	if err := pem.Encode(&privKeyPEM, &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privKey),
	}); err != nil {
		return nil, nil, fmt.Errorf("pem encode RSA: %w", err)
	}

	return certPEM.Bytes(), privKeyPEM.Bytes(), nil
}
