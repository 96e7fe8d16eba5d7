package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/contracts"
	auditloghandler "github.com/zenGate-Global/palmyra-gym/domains/auditlog/be/handler"
	auditlogservice "github.com/zenGate-Global/palmyra-gym/domains/auditlog/be/service"
	billinghandler "github.com/zenGate-Global/palmyra-gym/domains/billing/be/handler"
	billingservice "github.com/zenGate-Global/palmyra-gym/domains/billing/be/service"
	emailtemplateshandler "github.com/zenGate-Global/palmyra-gym/domains/emailtemplates/be/handler"
	emailtemplatesservice "github.com/zenGate-Global/palmyra-gym/domains/emailtemplates/be/service"
	enrollmentshandler "github.com/zenGate-Global/palmyra-gym/domains/enrollments/be/handler"
	enrollmentsservice "github.com/zenGate-Global/palmyra-gym/domains/enrollments/be/service"
	giftcertificateshandler "github.com/zenGate-Global/palmyra-gym/domains/giftcertificates/be/handler"
	giftcertificatesservice "github.com/zenGate-Global/palmyra-gym/domains/giftcertificates/be/service"
	portalhandler "github.com/zenGate-Global/palmyra-gym/domains/portal/be/handler"
	portalservice "github.com/zenGate-Global/palmyra-gym/domains/portal/be/service"
	programshandler "github.com/zenGate-Global/palmyra-gym/domains/programs/be/handler"
	programsservice "github.com/zenGate-Global/palmyra-gym/domains/programs/be/service"
	staffhandler "github.com/zenGate-Global/palmyra-gym/domains/staff/be/handler"
	staffservice "github.com/zenGate-Global/palmyra-gym/domains/staff/be/service"
	waivershandler "github.com/zenGate-Global/palmyra-gym/domains/waivers/be/handler"
	waiversservice "github.com/zenGate-Global/palmyra-gym/domains/waivers/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
	"github.com/zenGate-Global/palmyra-gym/platform/go/gcp"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	platformlogging "github.com/zenGate-Global/palmyra-gym/platform/go/logging"
	platformmiddleware "github.com/zenGate-Global/palmyra-gym/platform/go/middleware"
	"github.com/zenGate-Global/palmyra-gym/platform/go/payments"
	"github.com/zenGate-Global/palmyra-gym/platform/go/persistence"
	"github.com/zenGate-Global/palmyra-gym/platform/go/storage"
	tenantmiddleware "github.com/zenGate-Global/palmyra-gym/platform/go/tenant/middleware"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	TrustedProxies  []string      `env:"TRUSTED_PROXIES" envSeparator:","` // CIDRs allowed to set X-Forwarded-For

	AuthProvider   string `env:"AUTH_PROVIDER" envDefault:"firebase"` // firebase | dev
	FirebaseConfig string `env:"FIREBASE_CONFIG"`                     // service account file; empty uses ADC

	PortalSessionSecret string        `env:"PORTAL_SESSION_SECRET,required"`
	PortalSessionTTL    time.Duration `env:"PORTAL_SESSION_TTL" envDefault:"12h"`
	RedisURL            string        `env:"REDIS_URL"`
	LoginRateLimit      int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow     time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"15m"`

	TenantBaseDomain string `env:"TENANT_BASE_DOMAIN"`

	DocumentBackend  string `env:"DOCUMENT_BACKEND" envDefault:"gcs"` // gcs | local
	DocumentBucket   string `env:"DOCUMENT_BUCKET"`                   // required when DOCUMENT_BACKEND=gcs
	DocumentPrefix   string `env:"DOCUMENT_PREFIX" envDefault:"waivers"`
	DocumentLocalDir string `env:"DOCUMENT_LOCAL_DIR" envDefault:"./.data/documents"`

	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
}

func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, err
	}
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func main() {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "gym-api",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
	if err != nil {
		logger.Fatal("init postgres pool", zap.Error(err))
	}
	defer persistence.ClosePool(pool)

	db := persistence.NewClientDB(pool)
	stores := mustStores(logger, db)

	documents, closeDocuments, err := buildDocumentStore(ctx, cfg)
	if err != nil {
		logger.Fatal("init document store", zap.Error(err))
	}
	defer closeDocuments()

	staffAuth, err := buildStaffAuth(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init staff auth", zap.Error(err))
	}

	issuer, err := portal.NewIssuer(cfg.PortalSessionSecret, cfg.PortalSessionTTL)
	if err != nil {
		logger.Fatal("init portal sessions", zap.Error(err))
	}
	limiter, err := portal.NewLoginLimiter(ctx, portal.LimiterConfig{
		RedisURL: cfg.RedisURL,
		Attempts: cfg.LoginRateLimit,
		Window:   cfg.LoginRateWindow,
	}, logger)
	if err != nil {
		logger.Fatal("init login rate limiter", zap.Error(err))
	}

	paymentFactory, err := payments.NewFactory(stores.settings, cfg.StripeSecretKey)
	if err != nil {
		logger.Fatal("init payment factory", zap.Error(err))
	}

	spec, err := contracts.LoadAPI(ctx)
	if err != nil {
		logger.Fatal("load api contract", zap.Error(err))
	}

	metrics, err := platformmiddleware.NewHTTPMetrics("gym-api", prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("register http metrics", zap.Error(err))
	}

	trustedProxies, err := httpapi.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal("parse trusted proxies", zap.Error(err))
	}

	staffSvc := staffservice.New(stores.staff)
	router := newRouter(routerDeps{
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: trustedProxies,
		Metrics:        metrics,
		Gatherer:       prometheus.DefaultGatherer,
		Ready:          pool.Ping,
		Spec:           spec,
		StaffAuth:      staffAuth,
		PortalIssuer:   issuer,
		Tenants: tenantmiddleware.NewResolver(stores.tenants, tenantmiddleware.Config{
			BaseDomain: strings.TrimSpace(cfg.TenantBaseDomain),
		}),
		Authorizer: staffSvc,
		Handlers: handlers{
			Staff:            staffhandler.New(staffSvc, logger),
			AuditLog:         auditloghandler.New(auditlogservice.New(stores.auditLog), logger),
			Billing:          billinghandler.New(billingservice.New(paymentFactory), logger),
			EmailTemplates:   emailtemplateshandler.New(emailtemplatesservice.New(stores.emailTemplates), logger),
			Enrollments:      enrollmentshandler.New(enrollmentsservice.New(stores.enrollments, persistence.NewSchemaValidator()), logger),
			GiftCertificates: giftcertificateshandler.New(giftcertificatesservice.New(stores.giftCertificates), logger),
			Programs:         programshandler.New(programsservice.New(stores.programs), logger),
			Waivers:          waivershandler.New(waiversservice.New(stores.waivers, stores.members, documents), logger),
			Portal: portalhandler.New(portalservice.New(portalservice.Deps{
				Members: stores.members,
				Billing: stores.billing,
				Orders:  stores.orders,
				Trials:  stores.trials,
				Hasher:  portal.NewHasher(0),
				Issuer:  issuer,
				Limiter: limiter,
			}), logger),
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

type storeSet struct {
	tenants          *persistence.TenantStore
	staff            *persistence.StaffStore
	members          *persistence.MemberStore
	auditLog         *persistence.AuditLogStore
	emailTemplates   *persistence.EmailTemplateStore
	enrollments      *persistence.EnrollmentStore
	giftCertificates *persistence.GiftCertificateStore
	programs         *persistence.ProgramStore
	waivers          *persistence.WaiverStore
	billing          *persistence.BillingStore
	orders           *persistence.StoreOrderStore
	trials           *persistence.TrialPassStore
	settings         *persistence.SettingsStore
}

func mustStores(logger *zap.Logger, db *persistence.ClientDB) storeSet {
	must := func(name string, err error) {
		if err != nil {
			logger.Fatal("init "+name+" store", zap.Error(err))
		}
	}

	var s storeSet
	var err error
	s.tenants, err = persistence.NewTenantStore(db)
	must("tenant", err)
	s.staff, err = persistence.NewStaffStore(db)
	must("staff", err)
	s.members, err = persistence.NewMemberStore(db)
	must("member", err)
	s.auditLog, err = persistence.NewAuditLogStore(db)
	must("audit log", err)
	s.emailTemplates, err = persistence.NewEmailTemplateStore(db)
	must("email template", err)
	s.enrollments, err = persistence.NewEnrollmentStore(db)
	must("enrollment", err)
	s.giftCertificates, err = persistence.NewGiftCertificateStore(db)
	must("gift certificate", err)
	s.programs, err = persistence.NewProgramStore(db)
	must("program", err)
	s.waivers, err = persistence.NewWaiverStore(db)
	must("waiver", err)
	s.billing, err = persistence.NewBillingStore(db)
	must("billing", err)
	s.orders, err = persistence.NewStoreOrderStore(db)
	must("store order", err)
	s.trials, err = persistence.NewTrialPassStore(db)
	must("trial pass", err)
	s.settings, err = persistence.NewSettingsStore(db)
	must("settings", err)
	return s
}

// buildDocumentStore opens the signed-waiver blob store. The returned func releases its client.
func buildDocumentStore(ctx context.Context, cfg config) (storage.DocumentStore, func(), error) {
	switch cfg.DocumentBackend {
	case "gcs":
		if strings.TrimSpace(cfg.DocumentBucket) == "" {
			return nil, nil, errors.New("DOCUMENT_BUCKET is required when DOCUMENT_BACKEND=gcs")
		}
		client, err := gcp.NewStorageClient(ctx, cfg.FirebaseConfig)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewGCSStore(client, cfg.DocumentBucket, cfg.DocumentPrefix)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store, func() { _ = client.Close() }, nil
	case "local":
		store, err := storage.NewLocalStore(cfg.DocumentLocalDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, errors.New("invalid DOCUMENT_BACKEND (use gcs or local)")
	}
}
