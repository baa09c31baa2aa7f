package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/Inventario-ledger/internal/application/access"
	"github.com/jhoicas/Inventario-ledger/internal/application/audit"
	"github.com/jhoicas/Inventario-ledger/internal/application/auth"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/jwt"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// stores repositorios del backend elegido con APP_STORE.
type stores struct {
	tx       inventory.TxRunner
	products repository.ProductRepository
	ledger   repository.StockLedgerRepository
	audits   repository.AuditRepository
	profiles repository.AccessProfileRepository
	users    repository.UserRepository
	health   httpRouter.HealthChecker
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	kinds := make([]entity.EntityKind, 0, len(cfg.Audit.EntityKinds))
	for _, k := range cfg.Audit.EntityKinds {
		kinds = append(kinds, entity.EntityKind(k))
	}
	recorder := audit.NewRecorder(st.audits, audit.Config{AuditedKinds: kinds}, log.Component("audit"))
	accessSvc := access.NewService(st.profiles, st.users, recorder, log.Component("access"))
	engine := inventory.NewMovementEngine(st.tx, st.products, st.ledger, accessSvc, recorder, cfg.Inventory.BulkMax)
	tokens, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.Expiration)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar tokens de sesión")
	}
	authUC := auth.NewAuthUseCase(st.users, recorder, tokens)

	if cfg.App.AdminUsername != "" {
		if err := ensureAdmin(ctx, authUC, st, cfg.App.AdminUsername, cfg.App.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("bootstrap del representante legal")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Ledger API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		ProductUC:     usecase.NewProductUseCase(st.products, recorder),
		Engine:        engine,
		Replenishment: inventory.NewReplenishmentUseCase(st.products),
		Recorder:      recorder,
		Access:        accessSvc,
		Users:         st.users,
		Tokens:        tokens,
		Health:        st.health,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.App.Store == config.StoreMemory {
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &stores{
			tx:       memory.NewTxRunner(s),
			products: memory.NewProductRepository(s),
			ledger:   memory.NewLedgerRepository(s),
			audits:   memory.NewAuditRepository(s),
			profiles: memory.NewAccessProfileRepository(s),
			users:    memory.NewUserRepository(s),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &stores{
		tx:       postgres.NewTxRunner(pool),
		products: postgres.NewProductRepository(pool),
		ledger:   postgres.NewLedgerRepository(pool),
		audits:   postgres.NewAuditRepository(pool),
		profiles: postgres.NewAccessProfileRepository(pool),
		users:    postgres.NewUserRepository(pool),
		health:   pool.Ping,
		close:    pool.Close,
	}, nil
}

// ensureAdmin crea el primer LEGAL_REPRESENTATIVE. Es una acción de sistema: sin actor ni auditoría.
func ensureAdmin(ctx context.Context, authUC *auth.AuthUseCase, st *stores, username, password string) error {
	existing, err := st.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	user, err := authUC.RegisterUser(ctx, nil, auth.RegisterInput{Username: username, Password: password, Name: username}, nil)
	if err != nil {
		return err
	}
	now := time.Now()
	return st.profiles.Upsert(ctx, &entity.AccessProfile{
		UserID:    user.ID,
		Tier:      entity.TierLegalRepresentative,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
