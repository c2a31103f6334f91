package authmw

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Nerzal/gocloak/v13"

	"kyri56xcaesar/pms-workspace/internal/apiclient"
	"kyri56xcaesar/pms-workspace/internal/models"
)

// LoginProvider trades credentials for a bearer token.
type LoginProvider interface {
	Login(ctx context.Context, creds models.Credentials) (string, error)
	Register(ctx context.Context, creds models.Credentials) (string, error)
}

// Backend signs in through the project backend's own auth endpoints.
type Backend struct {
	Auth *apiclient.AuthAPI
}

func (b Backend) Login(ctx context.Context, creds models.Credentials) (string, error) {
	return b.Auth.Login(ctx, creds)
}

func (b Backend) Register(ctx context.Context, creds models.Credentials) (string, error) {
	return b.Auth.Register(ctx, creds)
}

// Keycloak signs in with the password grant of a Keycloak realm and creates
// accounts through its admin API.
type Keycloak struct {
	Client       *gocloak.GoCloak
	Realm        string
	clientID     string
	clientSecret string
}

func NewKeycloak(baseURL, realm, clientID, clientSecret string) *Keycloak {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return &Keycloak{
		Client:       gocloak.NewClient(strings.TrimRight(baseURL, "/")),
		Realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

func (k *Keycloak) Login(ctx context.Context, creds models.Credentials) (string, error) {
	jwt, err := k.Client.Login(
		ctx,
		k.clientID,
		k.clientSecret,
		k.Realm,
		creds.Login,
		creds.Password,
	)
	if err != nil {
		return "", fmt.Errorf("keycloak login failed: %w", err)
	}

	return jwt.AccessToken, nil
}

// Register creates an enabled user with a permanent password, then signs in
// as that user.
func (k *Keycloak) Register(ctx context.Context, creds models.Credentials) (string, error) {
	admin, err := k.Client.LoginClient(ctx, k.clientID, k.clientSecret, k.Realm)
	if err != nil {
		return "", fmt.Errorf("keycloak auth failed: %w", err)
	}

	user := gocloak.User{
		Username: gocloak.StringP(creds.Login),
		Email:    gocloak.StringP(creds.Email),
		Enabled:  gocloak.BoolP(true),
		Credentials: &[]gocloak.CredentialRepresentation{
			{
				Type:      gocloak.StringP("password"),
				Value:     gocloak.StringP(creds.Password),
				Temporary: gocloak.BoolP(false),
			},
		},
	}
	id, err := k.Client.CreateUser(ctx, admin.AccessToken, k.Realm, user)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	log.Printf("[auth] created keycloak user %s (%s)", creds.Login, id)

	return k.Login(ctx, creds)
}

// IsInvalidCredentials reports whether err is the provider refusing the
// credentials, as opposed to being unreachable.
func IsInvalidCredentials(err error) bool {
	if apiclient.IsAuthError(err) {
		return true
	}
	var apiErr *gocloak.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 400 || apiErr.Code == 401 || apiErr.Code == 403
	}

	return false
}
