package authmw

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyri56xcaesar/pms-workspace/internal/apiclient"
	"kyri56xcaesar/pms-workspace/internal/models"
)

const (
	testIssuer = "http://kc.local/realms/pms"
	testKid    = "k1"
)

func jwksServer(t *testing.T, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKid,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = testKid
	s, err := tok.SignedString(key)
	require.NoError(t, err)

	return s
}

func newVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	v, err := NewVerifier(jwksServer(t, &key.PublicKey).URL, testIssuer, "pms-front", "pms-front")
	require.NoError(t, err)
	t.Cleanup(v.Close)

	return v, key
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":                testIssuer,
		"aud":                "pms-front",
		"sub":                "u-1",
		"exp":                time.Now().Add(time.Hour).Unix(),
		"preferred_username": "anna",
		"email":              "anna@example.com",
		"realm_access":       map[string]any{"roles": []string{"user", "", "user"}},
		"resource_access": map[string]any{
			"pms-front": map[string]any{"roles": []string{"admin"}},
			"other":     map[string]any{"roles": []string{"root"}},
		},
	}
}

func TestVerifyAcceptsSignedToken(t *testing.T) {
	v, key := newVerifier(t)

	claims, err := v.Verify(sign(t, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "anna", claims.PreferredUsername)
	assert.Equal(t, []string{"user", "admin"}, claims.Roles())
	assert.True(t, claims.HasAnyRole("admin"))
	assert.False(t, claims.HasAnyRole("root"))
}

func TestVerifyRejects(t *testing.T) {
	v, key := newVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	wrongIss := validClaims()
	wrongIss["iss"] = "http://elsewhere"
	wrongAud := validClaims()
	wrongAud["aud"] = "someone-else"
	noExp := validClaims()
	delete(noExp, "exp")

	cases := map[string]string{
		"expired":      sign(t, key, expired),
		"issuer":       sign(t, key, wrongIss),
		"audience":     sign(t, key, wrongAud),
		"no expiry":    sign(t, key, noExp),
		"foreign key":  sign(t, other, validClaims()),
		"not a jwt":    "opaque",
		"hs256 signed": hs256(t),
	}
	for name, tok := range cases {
		_, err := v.Verify(tok)
		assert.Error(t, err, name)
	}

	_, err = v.Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func hs256(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	tok.Header["kid"] = testKid
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	return s
}

func TestExtractAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctx := func(header, cookie string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		if cookie != "" {
			c.Request.AddCookie(&http.Cookie{Name: "access_token", Value: cookie})
		}

		return c
	}

	tok, err := ExtractAccessToken(ctx("Bearer abc", "zzz"), "access_token")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = ExtractAccessToken(ctx("bearer  xyz ", ""), "")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	tok, err = ExtractAccessToken(ctx("Basic foo", "zzz"), "access_token")
	require.NoError(t, err)
	assert.Equal(t, "zzz", tok)

	_, err = ExtractAccessToken(ctx("", "zzz"), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestClaimsInContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := ClaimsFrom(c)
	assert.False(t, ok)

	SetClaims(c, &Claims{PreferredUsername: "anna"})
	got, ok := ClaimsFrom(c)
	require.True(t, ok)
	assert.Equal(t, "anna", got.PreferredUsername)
}

// fakeKeycloak answers the token and user-creation endpoints.
func fakeKeycloak(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var created []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/protocol/openid-connect/token"):
			_ = r.ParseForm()
			grant := r.PostForm.Get("grant_type")
			if grant == "password" && r.PostForm.Get("password") != "right" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid user credentials"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"` + grant + `-token","token_type":"Bearer","expires_in":300}`))
		case strings.HasSuffix(r.URL.Path, "/admin/realms/pms/users") && r.Method == http.MethodPost:
			var u map[string]any
			_ = json.NewDecoder(r.Body).Decode(&u)
			if r.Header.Get("Authorization") != "Bearer client_credentials-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			created = append(created, u["username"].(string))
			w.Header().Set("Location", "http://"+r.Host+r.URL.Path+"/new-id")
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	return srv, &created
}

func TestKeycloakLogin(t *testing.T) {
	srv, _ := fakeKeycloak(t)
	kc := NewKeycloak(srv.URL, "pms", "pms-front", "s3cret")

	tok, err := kc.Login(context.Background(), models.Credentials{Login: "anna", Password: "right"})
	require.NoError(t, err)
	assert.Equal(t, "password-token", tok)

	_, err = kc.Login(context.Background(), models.Credentials{Login: "anna", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, IsInvalidCredentials(err))
}

func TestKeycloakRegister(t *testing.T) {
	srv, created := fakeKeycloak(t)
	kc := NewKeycloak(strings.TrimPrefix(srv.URL, "http://"), "pms", "pms-front", "s3cret")

	tok, err := kc.Register(context.Background(), models.Credentials{Login: "bob", Email: "bob@example.com", Password: "right"})
	require.NoError(t, err)
	assert.Equal(t, "password-token", tok)
	assert.Equal(t, []string{"bob"}, *created)
}

func TestBackendProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`"registered"`))
	}))
	defer srv.Close()

	var p LoginProvider = Backend{Auth: apiclient.New(srv.URL, nil).Auth}
	_, err := p.Login(context.Background(), models.Credentials{Login: "a", Password: "b"})
	assert.True(t, IsInvalidCredentials(err))

	tok, err := p.Register(context.Background(), models.Credentials{Login: "a", Email: "a@b.c", Password: "bbbbbb"})
	require.NoError(t, err)
	assert.Equal(t, "registered", tok)
}
