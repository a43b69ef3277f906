package cli

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/github_reporting/internal/activity/model"
	"github.com/festy23/github_reporting/internal/activity/repository"
	"github.com/festy23/github_reporting/internal/collector"
	"github.com/festy23/github_reporting/internal/config"
	dbconfig "github.com/festy23/github_reporting/internal/database/config"
	"github.com/festy23/github_reporting/internal/database/database"
	"github.com/festy23/github_reporting/internal/database/migrate"
	"github.com/festy23/github_reporting/internal/gateway"
	"github.com/festy23/github_reporting/pkg/logger"
)

// app holds the dependencies shared by the commands.
type app struct {
	cfg    config.Config
	dbCfg  dbconfig.Config
	logger *zap.SugaredLogger
	db     *gorm.DB
}

func newApp() (*app, error) {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	dbCfg := dbconfig.LoadConfigFromEnv()
	db, err := database.NewWithConfig(dbCfg)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	log.Infow("Database connected", "driver", dbCfg.Driver)

	return &app{
		cfg:    cfg,
		dbCfg:  dbCfg,
		logger: log,
		db:     db,
	}, nil
}

func (a *app) migrate() error {
	if err := migrate.Migrate(a.db, a.dbCfg.Driver, &model.Issue{}, &model.PullRequest{}); err != nil {
		return err
	}
	a.logger.Infow("Database schema is up to date", "driver", a.dbCfg.Driver)
	return nil
}

func (a *app) newCollector() (*collector.Collector, error) {
	source, err := gateway.New(a.cfg.GitHub, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return collector.New(
		source,
		repository.NewIssues(a.db, a.logger),
		repository.NewPullRequests(a.db, a.logger),
		a.cfg.GitHub,
		a.cfg.Collector,
		a.logger,
	), nil
}

func (a *app) close() {
	if err := database.Close(a.db); err != nil {
		a.logger.Warnw("Failed to close database", "error", err)
	}
	_ = a.logger.Sync()
}
