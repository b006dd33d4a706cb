package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"school-ledger/internal/config"
	"school-ledger/internal/handler"
	"school-ledger/internal/middleware"
	"school-ledger/internal/repository"
	"school-ledger/internal/service"
	"school-ledger/internal/utils"
	"school-ledger/internal/worker"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redisClient *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	// Initialize Asynq client (optional - only if Redis is available)
	var tasks service.TaskEnqueuer
	if redisClient != nil {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
		tasks = worker.NewEnqueuer(asynqClient)
	}

	// Initialize services
	logger := utils.GetLogger()
	cache := service.NewReportCache(redisClient, cfg.ReportCacheTTL)
	accountService := service.NewAccountService(accountRepo, logger)
	postingService := service.NewPostingService(accountRepo, ledgerRepo, cache, tasks, logger)
	reportService := service.NewReportService(accountRepo, ledgerRepo, cache, logger)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountService, reportService)
	voucherHandler := handler.NewVoucherHandler(postingService)
	reportHandler := handler.NewReportHandler(reportService, tasks)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.Get("/", accountHandler.GetAccounts)
	accounts.Get("/:id", accountHandler.GetAccount)
	accounts.Post("/", accountHandler.CreateAccount)
	accounts.Put("/:id", accountHandler.UpdateAccount)
	accounts.Delete("/:id", accountHandler.DeleteAccount)
	accounts.Get("/:id/balance", accountHandler.GetBalance)
	accounts.Get("/:id/ledger", accountHandler.GetLedger)

	// Voucher routes
	vouchers := protected.Group("/vouchers")
	vouchers.Get("/", voucherHandler.GetVouchers)
	vouchers.Post("/", voucherHandler.CreateVoucher)
	vouchers.Post("/validate", voucherHandler.ValidateVoucher)
	vouchers.Get("/:id", voucherHandler.GetVoucher)
	vouchers.Post("/:id/reverse", voucherHandler.ReverseVoucher)

	// Report routes
	reports := protected.Group("/reports")
	reports.Get("/profit-loss", reportHandler.ProfitAndLoss)
	reports.Get("/trial-balance", reportHandler.TrialBalance)
	reports.Get("/balance-sheet", reportHandler.BalanceSheet)

	// Admin routes
	admin := protected.Group("/admin", middleware.AdminOnly())
	admin.Post("/verify-balances", reportHandler.VerifyBalances)
}
