package router

import (
	"github.com/mpancino/myassetplace/internal/config"
	"github.com/mpancino/myassetplace/internal/handler"
	"github.com/mpancino/myassetplace/internal/ledger"
	"github.com/mpancino/myassetplace/internal/middleware"
	"github.com/mpancino/myassetplace/internal/session"
	"github.com/mpancino/myassetplace/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// multipliersFromConfig builds the annualization table, applying any
// configured overrides on top of the defaults. Entries that do not parse as
// decimals are logged and skipped.
func multipliersFromConfig(cfg *config.Config, log zerolog.Logger) ledger.Multipliers {
	mult := ledger.DefaultMultipliers()
	for name, raw := range cfg.Sync.Frequencies {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			log.Warn().Str("frequency", name).Str("value", raw).Msg("ignoring bad multiplier override")
			continue
		}
		mult[ledger.NormalizeFrequency(name)] = v
	}
	return mult
}

// SetupRouter configures the Gin engine and all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	store := storage.NewAssetStore(db)
	sessions := session.NewManager(
		session.Config{
			ProtectionWindow: cfg.Sync.ProtectionWindow(),
			Multipliers:      multipliersFromConfig(cfg, log),
		},
		store, store,
		session.LogNotifier{Log: log},
		log,
	)

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.Issuer, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db, cfg.Security.BcryptCost))

	assetHandler := handler.NewAssetHandler(db, sessions)
	protected.POST("/assets", assetHandler.CreateAsset)
	protected.GET("/assets", assetHandler.ListAssets)
	protected.GET("/assets/:id", assetHandler.GetAsset)
	protected.PUT("/assets/:id", assetHandler.UpdateAsset)
	protected.DELETE("/assets/:id", assetHandler.DeleteAsset)

	itemHandler := handler.NewItemHandler(db, sessions)
	protected.POST("/assets/:id/items", itemHandler.CreateItem)
	protected.PUT("/assets/:id/items/:itemID", itemHandler.UpdateItem)
	protected.DELETE("/assets/:id/items/:itemID", itemHandler.DeleteItem)
	protected.POST("/assets/:id/refresh", itemHandler.RefreshItems)
	protected.GET("/assets/:id/summary", itemHandler.GetSummary)

	categoryHandler := handler.NewCategoryHandler(db)
	protected.GET("/categories", categoryHandler.ListCategories)

	exportHandler := handler.NewExportHandler(db, sessions)
	protected.GET("/assets/:id/export/csv", exportHandler.ExportCSV)
	protected.GET("/assets/:id/export/xlsx", exportHandler.ExportXLSX)

	backupHandler := handler.NewBackupHandler(db, cfg.Backup.Dir, sessions)
	protected.POST("/backups", backupHandler.CreateBackup)
	protected.GET("/backups", backupHandler.ListBackups)
	protected.GET("/backups/:id/download", backupHandler.DownloadBackup)
	protected.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", backupHandler.DeleteBackup)

	logHandler := handler.NewLogHandler(db)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
