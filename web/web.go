// Package web assembles the HTTP server of cinerate: routing, middleware,
// TLS serving and the background job scheduler.
package web

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cinerate/cinerate/config"
	"github.com/cinerate/cinerate/logger"
	"github.com/cinerate/cinerate/util/common"
	"github.com/cinerate/cinerate/util/random"
	"github.com/cinerate/cinerate/util/token"
	"github.com/cinerate/cinerate/web/controller"
	"github.com/cinerate/cinerate/web/docs"
	"github.com/cinerate/cinerate/web/entity"
	"github.com/cinerate/cinerate/web/job"
	"github.com/cinerate/cinerate/web/middleware"
	"github.com/cinerate/cinerate/web/network"
	"github.com/cinerate/cinerate/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Server owns the services, the HTTP listener and the cron scheduler.
type Server struct {
	cfg *config.Config
	db  *gorm.DB
	log *logger.Logger

	httpServer *http.Server
	listener   net.Listener
	cron       *cron.Cron

	public   middleware.PublicPaths
	tokens   *token.Codec
	users    *service.UserService
	ledger   *service.SessionLedger
	auth     *service.AuthService
	movies   *service.MovieService
	reviews  *service.ReviewService
	activity *service.ActivityService

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer wires the services over db. An empty secret key is only
// accepted by config in debug mode; a random one is used then.
func NewServer(cfg *config.Config, db *gorm.DB, log *logger.Logger) *Server {
	secret := cfg.SecretKey
	if secret == "" {
		log.Warning("SECRET_KEY not set, using a random key; tokens will not survive a restart")
		secret = random.Secret()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		db:     db,
		log:    log,
		public: middleware.NewPublicPaths(cfg.PublicPaths),
		tokens: token.NewCodec([]byte(secret)),
		ctx:    ctx,
		cancel: cancel,
	}
	s.users = service.NewUserService(db, log, cfg.BcryptCost)
	s.ledger = service.NewSessionLedger(db, log)
	s.auth = service.NewAuthService(s.users, s.ledger, s.tokens, log, cfg.AccessTokenTTL, cfg.AllowAdminSignup)
	s.movies = service.NewMovieService(db, log)
	s.reviews = service.NewReviewService(db, log)
	s.activity = service.NewActivityService(db, log)
	return s
}

// Handler builds the routing engine without starting a listener.
func (s *Server) Handler() (http.Handler, error) {
	return s.initRouter()
}

// initRouter initializes Gin, registers middleware and controllers and
// returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if _, err := docs.Load(s.ctx); err != nil {
		return nil, err
	}

	if s.cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	if s.cfg.WebDomain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(s.cfg.WebDomain))
	}
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/openapi.json"}),
	))
	engine.Use(middleware.AuthGate(s.public, s.tokens, s.users, s.log))
	engine.Use(middleware.ActivityRecorder(s.activity, s.log))

	base := controller.NewBaseController(s.log, s.public)

	controller.NewDocsController(&engine.RouterGroup)

	auth := engine.Group("/auth")
	controller.NewAuthController(auth, base, s.auth, s.users, s.ledger)
	controller.NewUserAdminController(auth, base, s.users)

	controller.NewMovieController(engine.Group("/movies"), base, s.movies)
	controller.NewReviewController(engine.Group("/user"), base, s.reviews)
	controller.NewAdminController(engine.Group("/admin"), base, s.activity)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, entity.Msg{Msg: "Not Found"})
	})

	return engine, nil
}

// bootstrapAdmin creates the configured admin account on an empty install.
func (s *Server) bootstrapAdmin() error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return nil
	}
	created, err := s.users.BootstrapAdmin(s.ctx, s.cfg.AdminUsername, s.cfg.AdminEmail, s.cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		s.log.Noticef("created admin account %s", s.cfg.AdminEmail)
	}
	return nil
}

// startTask schedules background jobs.
func (s *Server) startTask() error {
	cleanup := job.NewActivityCleanupJob(s.activity, s.log, s.cfg.ActivityRetentionDays)
	if _, err := s.cron.AddJob(s.cfg.ActivityCleanupCron, cleanup); err != nil {
		return err
	}
	s.log.Infof("activity cleanup scheduled at %s, retention %d days", s.cfg.ActivityCleanupCron, s.cfg.ActivityRetentionDays)
	return nil
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	if err = s.bootstrapAdmin(); err != nil {
		return err
	}

	s.cron = cron.New(cron.WithLocation(time.Local))
	if err = s.startTask(); err != nil {
		return err
	}
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(s.cfg.Listen, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if s.cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(s.cfg.CertFile, s.cfg.KeyFile)
		if err != nil {
			_ = listener.Close()
			return err
		}
		tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
		listener = tls.NewListener(network.NewRedirectListener(listener), tlsCfg)
		s.log.Info("Web server running HTTPS on", listener.Addr())
	} else {
		s.log.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server stopped:", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the web server and the cron scheduler.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			err2 = err
		}
	}
	return common.Combine(err1, err2)
}
