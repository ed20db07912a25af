package cli

import (
	"fmt"

	"go.uber.org/zap"

	"insurancecost/config"
	qhttp "insurancecost/http"
	"insurancecost/logging"
	"insurancecost/ml"
)

// service is everything built once at startup and read-only afterwards.
type service struct {
	config    *config.Config
	logger    *zap.Logger
	artifact  *ml.Artifact
	column    string
	predictor ml.ModelProvider
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.modelPath != "" {
		cfg.Model.Path = opts.modelPath
	}
	return cfg, nil
}

// newService loads the model and resolves its prediction column. Any error
// here means the process must not start serving.
func newService(cfg *config.Config, logger *zap.Logger) (*service, error) {
	strategies, err := ml.StrategiesByName(cfg.Model.Strategies)
	if err != nil {
		return nil, err
	}
	artifact, err := ml.NewLoader(logger, strategies...).Load(cfg.Model.Path)
	if err != nil {
		return nil, err
	}

	column, err := ml.ResolvePredictionColumn(artifact.Model, cfg.Model.PredictionColumn, cfg.Model.CandidateColumns)
	if err != nil {
		return nil, err
	}
	logger.Info("prediction column resolved", zap.String("column", column))

	var predictor ml.ModelProvider = ml.NewPredictor(artifact.Model, column)
	if cfg.Model.CacheSize > 0 {
		cached, err := ml.NewCachingPredictor(predictor, cfg.Model.CacheSize)
		if err != nil {
			return nil, err
		}
		predictor = cached
	}

	return &service{
		config:    cfg,
		logger:    logger,
		artifact:  artifact,
		column:    column,
		predictor: predictor,
	}, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func (s *service) rounding() qhttp.RoundingPolicy {
	return qhttp.RoundingPolicy{Enabled: s.config.Response.Round, Decimals: s.config.Response.Decimals}
}

// page picks the index page source. The returned close func is never nil.
func (s *service) page() (qhttp.PageSource, func() error, error) {
	noop := func() error { return nil }
	static := s.config.Static
	switch {
	case static.IndexPath == "":
		return qhttp.EmbeddedPage{}, noop, nil
	case static.Watch:
		page, err := qhttp.NewWatchedFilePage(static.IndexPath, s.logger)
		if err != nil {
			return nil, noop, err
		}
		return page, page.Close, nil
	default:
		return qhttp.FilePage{Path: static.IndexPath}, noop, nil
	}
}
