package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"shophub/internal/config"
	"shophub/internal/domain/model"
	"shophub/internal/handler"
	"shophub/internal/infra/db"
	infraRepo "shophub/internal/infra/repository"
	"shophub/internal/logger"
	"shophub/internal/seed"
	"shophub/internal/server"
	"shophub/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークンは1時間
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: time.Hour,
	}
}

func (i *jwtIssuer) Issue(adminID int64, email string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(adminID, 10),
		"email": email,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envは無くてもいい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Options{
		Service: "shophub-api",
		Env:     cfg.GoEnv,
		Level:   cfg.LogLevel,
	})

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Error("db connect failed", "error", err.Error())
		os.Exit(1)
	}

	if err := gormDB.AutoMigrate(
		&model.AdminUser{},
		&model.Category{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		log.Error("migration failed", "error", err.Error())
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	adminRepo := infraRepo.NewAdminUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//bcrypt（シード：Hash / ログイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(10)
	verifier := usecase.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := newJWTIssuer(cfg.JWTSecret)

	//初期データ
	seeder := seed.New(adminRepo, categoryRepo, productRepo, hasher, log)
	if err := seeder.Run(context.Background()); err != nil {
		log.Error("seeding failed", "error", err.Error())
		os.Exit(1)
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(adminRepo, verifier, issuer)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, productRepo, auditRepo)
	auditUC := usecase.NewAuditUsecase(auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, cfg.UploadDir),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(orderUC),
		Category:     handler.NewCategoryHandler(categoryUC),
		Audit:        handler.NewAuditHandler(auditUC),
	}

	//Server起動
	e := server.New(cfg, log)
	server.RegisterRoutes(e, cfg, handlers)

	addr := ":" + cfg.Port
	log.Info("server starting", "addr", addr)
	if err := server.Start(e, addr); err != nil {
		log.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}
