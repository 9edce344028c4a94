package sslcert

import "errors"

// Ошибки проверки существующей пары сертификат/ключ. Все они означают, что пару нужно перевыпустить.
var (
	ErrBlankPEM        = errors.New("pem is blank")
	ErrCertExpired     = errors.New("certificate is expired")
	ErrCertNotValidYet = errors.New("certificate is not valid yet")
	// ErrHostMismatch сертификат выписан не на все хосты генератора.
	ErrHostMismatch = errors.New("certificate does not cover configured hosts")
)
