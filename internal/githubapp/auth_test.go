package githubapp

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testKeyPEM(t *testing.T) ([]byte, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return pemBytes, key
}

func TestNewRejectsBadKey(t *testing.T) {
	_, err := New(1, []byte("not a pem key"), "")
	if err == nil {
		t.Fatal("expected error for malformed key")
	}
}

func TestMintAssertionClaims(t *testing.T) {
	pemBytes, key := testKeyPEM(t)

	auth, err := New(4242, pemBytes, "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	signed, err := auth.MintAssertion(now)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != "RS256" {
			return nil, fmt.Errorf("alg = %s, want RS256", tok.Method.Alg())
		}
		return &key.PublicKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("parse assertion: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if iss := claims["iss"]; iss != float64(4242) {
		t.Errorf("iss = %v, want 4242", iss)
	}

	iat := int64(claims["iat"].(float64))
	exp := int64(claims["exp"].(float64))
	if iat != now.Unix() {
		t.Errorf("iat = %d, want %d", iat, now.Unix())
	}
	if exp-iat != 600 {
		t.Errorf("lifetime = %ds, want 600", exp-iat)
	}
}

// Two assertions minted back to back must both be independently valid;
// nothing is reused between exchanges.
func TestMintAssertionFresh(t *testing.T) {
	pemBytes, _ := testKeyPEM(t)
	auth, err := New(1, pemBytes, "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	a, err := auth.MintAssertion(time.Unix(1000, 0))
	if err != nil {
		t.Fatalf("mint a: %v", err)
	}
	b, err := auth.MintAssertion(time.Unix(2000, 0))
	if err != nil {
		t.Fatalf("mint b: %v", err)
	}
	if a == b {
		t.Error("assertions with different iat must differ")
	}
}

func TestInstallationToken(t *testing.T) {
	pemBytes, _ := testKeyPEM(t)

	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/app/installations/1234/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"token": "ghs_testtoken", "expires_at": "2025-06-01T13:00:00Z"}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	auth, err := New(4242, pemBytes, server.URL+"/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	token, err := auth.InstallationToken(context.Background(), 1234)
	if err != nil {
		t.Fatalf("installation token: %v", err)
	}
	if token != "ghs_testtoken" {
		t.Errorf("token = %q, want ghs_testtoken", token)
	}
	if gotAuth == "" || gotAuth == "Bearer" {
		t.Errorf("missing bearer assertion, got %q", gotAuth)
	}
}

func TestInstallationTokenExchangeFailure(t *testing.T) {
	pemBytes, _ := testKeyPEM(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/app/installations/99/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "A JSON web token could not be decoded"}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	auth, err := New(1, pemBytes, server.URL+"/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, err = auth.InstallationToken(context.Background(), 99)
	var exchErr *AuthExchangeError
	if !errors.As(err, &exchErr) {
		t.Fatalf("got %T (%v), want *AuthExchangeError", err, err)
	}
	if exchErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", exchErr.Status)
	}
}
