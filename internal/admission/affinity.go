package admission

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AffinitySigner mints and verifies the signed client-affinity token
// that pins a client's successive connections to one backend for the
// life of the token. Tokens are opaque to clients; tampering or expiry
// just falls back to fresh backend selection.
type AffinitySigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAffinitySigner(secret []byte, ttl time.Duration) *AffinitySigner {
	return &AffinitySigner{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *AffinitySigner) Mint(clientID, backendID string) string {
	expiry := s.now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%s|%d", backendID, expiry)
	mac := s.sign(clientID, payload)
	return base64.RawURLEncoding.EncodeToString([]byte(payload + "|" + mac))
}

// Verify returns the pinned backend id when the token is intact, bound
// to this client and not expired.
func (s *AffinitySigner) Verify(token, clientID string) (string, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", false
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 {
		return "", false
	}
	backendID, expiryStr, mac := parts[0], parts[1], parts[2]
	payload := backendID + "|" + expiryStr
	if !hmac.Equal([]byte(mac), []byte(s.sign(clientID, payload))) {
		return "", false
	}
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return "", false
	}
	if s.now().Unix() >= expiry {
		return "", false
	}
	return backendID, true
}

func (s *AffinitySigner) sign(clientID, payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(clientID))
	mac.Write([]byte{0})
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
