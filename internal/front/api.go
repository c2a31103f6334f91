// Package front is the web gateway of the workspace: browsers sign in here,
// their backend token is kept server-side in the session store, and every
// board action goes through the workspace controller.
package front

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"kyri56xcaesar/pms-workspace/internal/apiclient"
	"kyri56xcaesar/pms-workspace/internal/authmw"
	"kyri56xcaesar/pms-workspace/internal/config"
	"kyri56xcaesar/pms-workspace/internal/session"
	"kyri56xcaesar/pms-workspace/internal/utils"
)

const (
	apiVersion    = "/api/v1"
	sessionCookie = "pms_sid"
	loginRedirect = "/login"
)

// Server holds everything a request handler needs.
type Server struct {
	cfg      config.Config
	engine   *gin.Engine
	store    session.Store
	auth     authmw.LoginProvider
	verifier *authmw.Verifier
}

// Option customises a Server.
type Option func(*Server)

// WithLoginProvider replaces the default backend login.
func WithLoginProvider(p authmw.LoginProvider) Option {
	return func(s *Server) { s.auth = p }
}

// WithVerifier makes the gateway check token signatures.
func WithVerifier(v *authmw.Verifier) Option {
	return func(s *Server) { s.verifier = v }
}

// New builds the gin engine with all routes.
func New(cfg config.Config, store session.Store, opts ...Option) *Server {
	s := &Server{cfg: cfg, store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.auth == nil {
		s.auth = authmw.Backend{Auth: s.client(nil).Auth}
	}

	setGinMode(cfg.ApiGinMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), requestID())
	s.setCors()
	s.setRoutes()

	return s
}

// Handler exposes the engine for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) client(tokens apiclient.TokenSource) *apiclient.Client {
	return apiclient.New(
		s.cfg.ApiAddress,
		tokens,
		apiclient.WithTimeout(s.cfg.RequestTimeout),
		apiclient.WithStorageURL(s.cfg.StorageAddress),
	)
}

func (s *Server) setCors() {
	corsconfig := cors.DefaultConfig()
	corsconfig.AllowOrigins = s.cfg.AllowedOrigins
	corsconfig.AllowMethods = s.cfg.AllowedMethods
	corsconfig.AllowHeaders = s.cfg.AllowedHeaders
	corsconfig.ExposeHeaders = []string{"X-Request-Id"}
	// credentialed requests need explicit origins
	corsconfig.AllowCredentials = !utils.Contains(s.cfg.AllowedOrigins, "*")
	s.engine.Use(cors.New(corsconfig))
}

func (s *Server) setRoutes() {
	root := s.engine.Group("/")
	{
		root.GET("/healthz", handleHealth)
	}

	apiV1 := s.engine.Group(apiVersion)
	{
		apiV1.GET("/healthz", handleHealth)
		apiV1.POST("/login", s.handleLogin)
		apiV1.POST("/register", s.handleRegister)
		apiV1.POST("/logout", s.handleLogout)
	}

	verified := apiV1.Group("/")
	verified.Use(s.requireSession())
	{
		verified.GET("/me", s.handleMe)
		verified.POST("/me", s.handleEditMe)
		verified.GET("/me/tasks", s.handleMyTasks)
		verified.GET("/me/week", s.handleMyWeek)

		verified.GET("/projects", s.handleListProjects)
		verified.POST("/projects", s.handleCreateProject)
		verified.POST("/projects/:id/edit", s.handleEditProject)
		verified.POST("/projects/:id/delete", s.handleDeleteProject)
		verified.GET("/projects/:id", s.handleBoard)
		verified.GET("/projects/:id/week", s.handleProjectWeek)

		verified.POST("/projects/:id/branches", s.handleAddBranch)
		verified.POST("/projects/:id/branches/:bid/delete", s.handleDeleteBranch)

		verified.POST("/projects/:id/branches/:bid/tasks", s.handleAddTask)
		verified.POST("/projects/:id/branches/:bid/tasks/:tid", s.handleEditTask)
		verified.POST("/projects/:id/branches/:bid/tasks/:tid/delete", s.handleDeleteTask)
		verified.POST("/projects/:id/branches/:bid/tasks/:tid/done", s.handleMarkDone)
		verified.POST("/projects/:id/branches/:bid/tasks/:tid/problem", s.handleMarkProblem)
		verified.POST("/projects/:id/branches/:bid/tasks/:tid/assign", s.handleAssign)
		verified.POST("/projects/:id/branches/:bid/tasks/:tid/unassign", s.handleUnassign)

		verified.POST("/projects/:id/members", s.handleAddMembers)
		verified.POST("/projects/:id/members/:uid/remove", s.handleRemoveMember)
		verified.POST("/projects/:id/members/:uid/role", s.handleMemberRole)
		verified.POST("/projects/:id/leave", s.handleLeave)

		verified.GET("/users/search", s.handleUserSearch)
		verified.POST("/upload", s.handleUpload)

		admin := verified.Group("/admin")
		admin.Use(s.requireAdmin())
		{
			admin.GET("/skills", s.handleAdminSkills)
			admin.POST("/skills", s.handleAdminAddSkill)
			admin.POST("/skills/:sid/delete", s.handleAdminDeleteSkill)
			admin.GET("/users", s.handleAdminUsers)
			admin.POST("/users/:uid/role", s.handleAdminSetRole)
			admin.POST("/users/:uid/delete", s.handleAdminDeleteUser)
		}
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "bad path"})
	})
}

func handleHealth(c *gin.Context) {
	respondInFormat(c, http.StatusOK, gin.H{"status": "alive"})
}

// newStore picks the session backend named in the configuration.
func newStore(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
		}

		return session.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
	case "postgres":
		dsn := session.PostgresDSN(cfg.DBUser, cfg.DBPassword, cfg.DBAddress, cfg.DBName)
		store, err := session.NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil
	case "file", "":
		dir := cfg.SessionDir
		if dir == "" {
			dir = session.DefaultDir()
		}
		store, err := session.NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}

		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend: %q", cfg.SessionBackend)
	}
}

// InitAndServe runs the gateway until SIGINT or SIGTERM.
func InitAndServe(confPath string) {
	cfg := config.Load(confPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to set up the session store: %v", err)
	}
	defer closeStore()

	var opts []Option
	if cfg.AuthProvider == "keycloak" {
		opts = append(opts, WithLoginProvider(authmw.NewKeycloak(cfg.AuthAddress, cfg.Realm, cfg.ClientID, cfg.ClientSecret)))
	}
	if cfg.JWKSURL != "" {
		issuer := fmt.Sprintf("%s/realms/%s", strings.TrimRight(cfg.AuthAddress, "/"), cfg.Realm)
		verifier, err := authmw.NewVerifier(cfg.JWKSURL, issuer, cfg.Audience, cfg.ClientID)
		if err != nil {
			log.Fatalf("failed to instantiate the token verifier: %v", err)
		}
		defer verifier.Close()
		opts = append(opts, WithVerifier(verifier))
	}

	s := New(cfg, store, opts...)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Second * 5,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()
	log.Printf("[front] listening on %s, backend %s", cfg.Addr(), cfg.ApiAddress)

	<-ctx.Done()

	stop()
	log.Println("shutting down gracefully, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func setGinMode(mode string) {
	switch strings.ToLower(mode) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "envgin":
		gin.SetMode(gin.EnvGinMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}

// respondInFormat answers JSON unless ?format=xml asks otherwise.
func respondInFormat(c *gin.Context, status int, data any) {
	switch strings.ToLower(c.DefaultQuery("format", "json")) {
	case "xml":
		c.XML(status, data)
	default:
		c.JSON(status, data)
	}
}
