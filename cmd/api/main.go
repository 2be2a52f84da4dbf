package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/broker"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	"storefront/internal/infra/mail"
	"storefront/internal/infra/payment"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/security"
	"storefront/internal/infra/telemetry"
	"storefront/internal/notification"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := telemetry.NewLogger(cfg.GoEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.JaegerEndpoint != "" {
		tp, err := telemetry.InitTracer("storefront-api", cfg.JaegerEndpoint)
		if err != nil {
			logger.Warn("tracing disabled", zap.Error(err))
		} else {
			defer func() { _ = tp.Shutdown(context.Background()) }()
		}
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	wishlistRepo := infraRepo.NewWishlistGormRepository(gormDB)
	emailLogRepo := infraRepo.NewEmailLogGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//商品キャッシュ（Redisが無ければ素通し）
	var productCache usecase.ProductCache = cache.NopProductCache{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, logger)
		if err != nil {
			logger.Warn("redis unavailable, product cache disabled", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			productCache = cache.NewProductCache(rdb, cfg.ProductCacheTTL)
		}
	}

	//注文イベント
	var events usecase.EventPublisher = broker.NewNopPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kp := broker.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaPublishTimeout, logger)
		defer func() { _ = kp.Close() }()
		events = kp
	}

	//メール
	var mailer notification.Mailer = mail.NewLogMailer(logger)
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom)
	}
	dispatcher := notification.NewDispatcher(emailLogRepo, mailer, logger)

	stripe := payment.NewStripeProvider(cfg.StripeSecretKey)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	issuer := security.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(txm, userRepo, validator.NewAuthValidator(), hasher, issuer, dispatcher, logger)
	productUC := usecase.NewProductUsecase(productRepo, productCache, logger)
	cartUC := usecase.NewCartUsecase(txm, cartRepo, cartItemRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, orderItemRepo, addressRepo, events, productCache, logger)
	paymentUC := usecase.NewPaymentUsecase(txm, orderRepo, orderItemRepo, userRepo, stripe, dispatcher, events, cfg.PaymentCurrency, logger)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo, productRepo)
	userUC := usecase.NewUserUsecase(userRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	adminUC := usecase.NewAdminUsecase(usecase.AdminDeps{
		Tx:         txm,
		Products:   productRepo,
		Orders:     orderRepo,
		OrderItems: orderItemRepo,
		Users:      userRepo,
		AuditLogs:  auditRepo,
		Cache:      productCache,
		Notifier:   dispatcher,
		Events:     events,
		Logger:     logger,
	})
	contactUC := usecase.NewContactUsecase(validator.NewContactValidator(), dispatcher, cfg.SupportEmail, logger)

	//Handler生成
	e := server.New(cfg, logger, userRepo, server.Handlers{
		Auth:     handler.NewAuthHandler(authUC),
		Product:  handler.NewProductHandler(productUC),
		Cart:     handler.NewCartHandler(cartUC),
		Order:    handler.NewOrderHandler(orderUC),
		Payment:  handler.NewPaymentHandler(paymentUC),
		Wishlist: handler.NewWishlistHandler(wishlistUC),
		User:     handler.NewUserHandler(userUC, handler.NewAddressHandler(addressUC)),
		Admin:    handler.NewAdminHandler(adminUC),
		Contact:  handler.NewContactHandler(contactUC),
	})

	//Server起動
	if err := server.Start(ctx, e, ":"+cfg.Port, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
