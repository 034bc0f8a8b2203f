package admission

import (
	"testing"
	"time"
)

func TestAffinityTokenPinsWithinTTL(t *testing.T) {
	signer := NewAffinitySigner([]byte("secret"), time.Hour)
	token := signer.Mint("client-1", "backend-a")

	backendID, ok := signer.Verify(token, "client-1")
	if !ok {
		t.Fatal("freshly minted token must verify")
	}
	if backendID != "backend-a" {
		t.Fatalf("got backend %q, want backend-a", backendID)
	}
}

func TestAffinityTokenExpires(t *testing.T) {
	now := time.Now()
	signer := NewAffinitySigner([]byte("secret"), time.Hour)
	signer.now = func() time.Time { return now }

	token := signer.Mint("client-1", "backend-a")

	signer.now = func() time.Time { return now.Add(time.Hour + time.Second) }
	if _, ok := signer.Verify(token, "client-1"); ok {
		t.Fatal("token must not verify past its TTL")
	}
}

func TestAffinityTokenRejectsTampering(t *testing.T) {
	signer := NewAffinitySigner([]byte("secret"), time.Hour)
	token := signer.Mint("client-1", "backend-a")

	tampered := []byte(token)
	tampered[0] ^= 1
	if _, ok := signer.Verify(string(tampered), "client-1"); ok {
		t.Fatal("tampered token must not verify")
	}
	if _, ok := signer.Verify("not-a-token", "client-1"); ok {
		t.Fatal("garbage token must not verify")
	}
}

func TestAffinityTokenBoundToClient(t *testing.T) {
	signer := NewAffinitySigner([]byte("secret"), time.Hour)
	token := signer.Mint("client-1", "backend-a")

	if _, ok := signer.Verify(token, "client-2"); ok {
		t.Fatal("token minted for one client must not verify for another")
	}
}
