package cli

import (
	"context"
	"errors"
	"fmt"

	"kyri56xcaesar/pms-workspace/internal/apiclient"
	"kyri56xcaesar/pms-workspace/internal/authmw"
	"kyri56xcaesar/pms-workspace/internal/config"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/session"
	"kyri56xcaesar/pms-workspace/internal/workspace"
)

// ErrNotSignedIn is returned by commands that need a session when there is none.
var ErrNotSignedIn = errors.New("not signed in, run `pms login` first")

// ErrSessionExpired is returned when the backend rejected the stored token.
// The session has been cleared by then.
var ErrSessionExpired = errors.New("session expired, run `pms login` again")

// App holds the dependencies shared by all commands.
type App struct {
	Config config.Config
	Store  session.Store
	// Auth signs users in. Nil means the backend's own login.
	Auth authmw.LoginProvider
}

// NewApp builds an App with the file session store.
func NewApp(cfg config.Config) (*App, error) {
	dir := cfg.SessionDir
	if dir == "" {
		dir = session.DefaultDir()
	}
	store, err := session.NewFileStore(dir)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Store: store}
	if cfg.AuthProvider == "keycloak" {
		a.Auth = authmw.NewKeycloak(cfg.AuthAddress, cfg.Realm, cfg.ClientID, cfg.ClientSecret)
	}

	return a, nil
}

func (a *App) client(tokens apiclient.TokenSource) *apiclient.Client {
	return apiclient.New(
		a.Config.ApiAddress,
		tokens,
		apiclient.WithTimeout(a.Config.RequestTimeout),
		apiclient.WithStorageURL(a.Config.StorageAddress),
	)
}

func (a *App) provider() authmw.LoginProvider {
	if a.Auth != nil {
		return a.Auth
	}

	return authmw.Backend{Auth: a.client(nil).Auth}
}

func (a *App) session(ctx context.Context) (*session.Session, error) {
	sess := session.New(a.Store, session.DefaultKey)
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}

	return sess, nil
}

// withClient runs fn with a client carrying the stored token. A token the
// backend refuses clears the session.
func (a *App) withClient(ctx context.Context, fn func(c *apiclient.Client) error) error {
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if !sess.IsAuthenticated() {
		return ErrNotSignedIn
	}

	err = fn(a.client(sess))
	if apiclient.IsAuthError(err) {
		if cerr := sess.Clear(ctx); cerr != nil {
			return errors.Join(ErrSessionExpired, cerr)
		}
		return ErrSessionExpired
	}

	return err
}

// withWorkspace opens project projectID for the signed-in user and runs fn.
func (a *App) withWorkspace(ctx context.Context, projectID int64, fn func(ws *workspace.Workspace) error) error {
	return a.withClient(ctx, func(c *apiclient.Client) error {
		me, err := c.Users.Me(ctx)
		if err != nil {
			return err
		}
		ws, err := workspace.Open(ctx, workspace.NewGateway(c), projectID, me)
		if err != nil {
			return fmt.Errorf("open project %d: %w", projectID, err)
		}

		return fn(ws)
	})
}

// signIn stores token as the current session.
func (a *App) signIn(ctx context.Context, token string) (models.User, error) {
	sess := session.New(a.Store, session.DefaultKey)
	if err := sess.SetToken(ctx, token); err != nil {
		return models.User{}, err
	}
	if !sess.IsAuthenticated() {
		return models.User{}, errors.New("the issued token is not usable")
	}

	me, err := a.client(sess).Users.Me(ctx)
	if err != nil {
		_ = sess.Clear(ctx)
		return models.User{}, fmt.Errorf("fetch profile: %w", err)
	}

	return me, nil
}
