package svccert

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/urlkeeper/internal/sslcert"
	"github.com/stretchr/testify/suite"
)

type CertServiceSuite struct {
	suite.Suite
	cert     *Cert
	certPath string
	keyPath  string
}

func TestCertService(t *testing.T) {
	suite.Run(t, new(CertServiceSuite))
}

func (s *CertServiceSuite) SetupTest() {
	dir := s.T().TempDir()
	s.certPath = filepath.Join(dir, gofakeit.Word(), "cert.pem")
	s.keyPath = filepath.Join(dir, gofakeit.Word(), "key.pem")

	s.cert = New(func(opt *Options) {
		opt.CertFilePath = s.certPath
		opt.KeyFilePath = s.keyPath
	})
}

func (s *CertServiceSuite) TestGenerateAndSaveIfNeed() {
	s.Run("missing files", func() {
		generated, err := s.cert.GenerateAndSaveIfNeed()
		s.Require().NoError(err)
		s.True(generated)

		_, err = tls.LoadX509KeyPair(s.certPath, s.keyPath)
		s.Require().NoError(err)
	})

	s.Run("valid pem is kept", func() {
		certBefore, err := os.ReadFile(s.certPath)
		s.Require().NoError(err)

		generated, err := s.cert.GenerateAndSaveIfNeed()
		s.Require().NoError(err)
		s.False(generated)

		certAfter, err := os.ReadFile(s.certPath)
		s.Require().NoError(err)
		s.Equal(certBefore, certAfter)
	})

	s.Run("expired pem is replaced", func() {
		s.Require().NoError(os.Remove(s.certPath))
		_, err := s.cert.GenerateAndSaveIfNeed(sslcert.Modify(func(c *x509.Certificate) {
			c.NotBefore = time.Now().Add(-48 * time.Hour)
			c.NotAfter = time.Now().Add(-24 * time.Hour)
		}))
		s.Require().NoError(err)

		generated, err := s.cert.GenerateAndSaveIfNeed()
		s.Require().NoError(err)
		s.True(generated)

		_, err = tls.LoadX509KeyPair(s.certPath, s.keyPath)
		s.Require().NoError(err, "file must be rewritten, not appended")
	})

	s.Run("blank files", func() {
		s.Require().NoError(os.WriteFile(s.certPath, nil, 0o600))
		generated, err := s.cert.GenerateAndSaveIfNeed()
		s.Require().NoError(err)
		s.True(generated)
	})
}
