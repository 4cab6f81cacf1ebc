package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quillboard/quillboard-backend/internal/domain"
	"github.com/quillboard/quillboard-backend/internal/platform/envutil"
	"github.com/quillboard/quillboard-backend/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New connects to Postgres when POSTGRES_HOST is set and falls back to a
// local sqlite file otherwise, so the dashboard can run without a database
// server in development.
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "Database")

	host := envutil.GetEnv("POSTGRES_HOST", "", log)
	var dialector gorm.Dialector
	if host != "" {
		port := envutil.GetEnv("POSTGRES_PORT", "5432", log)
		user := envutil.GetEnv("POSTGRES_USER", "postgres", log)
		password := envutil.GetEnv("POSTGRES_PASSWORD", "", log)
		name := envutil.GetEnv("POSTGRES_NAME", "quillboard", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		serviceLog.Info("connecting to postgres", "host", host, "db", name)
		dialector = postgres.Open(dsn)
	} else {
		path := envutil.GetEnv("SQLITE_PATH", "quillboard.db", log)
		serviceLog.Info("no POSTGRES_HOST, using sqlite", "path", path)
		dialector = sqlite.Open(path)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("auto migrating tables")
	if err := s.db.AutoMigrate(
		&domain.ContentVersion{},
		&domain.EvaluationRun{},
	); err != nil {
		s.log.Error("auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
