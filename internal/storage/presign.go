package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// signer produces and verifies HMAC-SHA256 signatures over presigned blob
// URLs. The signed payload is "method\nkey\nexpires" so a GET link cannot
// be replayed as an upload.
type signer struct {
	secret    []byte
	publicURL string
}

func newSigner(secret, publicURL string) *signer {
	return &signer{
		secret:    []byte(secret),
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func (s *signer) signURL(method, key string, expiresAt time.Time) string {
	expires := expiresAt.Unix()
	return fmt.Sprintf(
		"%s/%s?expires=%d&signature=%s",
		s.publicURL,
		url.PathEscape(key),
		expires,
		s.signature(method, key, expires),
	)
}

func (s *signer) signUploadForm(key string, maxSize int64, expiresAt time.Time) *UploadForm {
	expires := expiresAt.Unix()
	return &UploadForm{
		URL: fmt.Sprintf("%s/%s", s.publicURL, url.PathEscape(key)),
		Fields: map[string]string{
			"expires":   strconv.FormatInt(expires, 10),
			"signature": s.signature("PUT", key, expires),
			"max_size":  strconv.FormatInt(maxSize, 10),
		},
	}
}

func (s *signer) verify(method, key string, expires int64, signature string) error {
	if time.Now().Unix() > expires {
		return ErrSignatureExpired
	}

	expected := s.signature(method, key, expires)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrSignatureInvalid
	}

	return nil
}

func (s *signer) signature(method, key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%s\n%d", method, key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
