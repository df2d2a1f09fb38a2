package logger

import (
	"github.com/prompttemplates/marketplace/internal/config"
	"go.uber.org/zap"
)

// New builds the process logger: JSON in production, console otherwise.
func New(cfg config.Config) (*zap.Logger, error) {
	var log *zap.Logger
	var err error
	if cfg.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("service", cfg.ServiceName))
	zap.ReplaceGlobals(log)
	return log, nil
}
