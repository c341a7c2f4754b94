package cmd

import (
	"github.com/oneconcern/datagit/pkg/config"
	"github.com/oneconcern/datagit/pkg/core"
	"github.com/oneconcern/datagit/pkg/core/status"
	"github.com/oneconcern/datagit/pkg/dlogger"
	"github.com/oneconcern/datagit/pkg/hashfs"
	"github.com/oneconcern/datagit/pkg/index"
	"github.com/oneconcern/datagit/pkg/metadata"
	"github.com/oneconcern/datagit/pkg/model"
	"github.com/oneconcern/datagit/pkg/sample"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// env gathers the components operating on one entity type of the repository
type env struct {
	layout  model.Layout
	config  *config.Config
	fs      afero.Fs
	logger  *zap.Logger
	storeOp []hashfs.Option
}

func loadConfig(root string) (*config.Config, *zap.Logger, error) {
	layout := model.Layout{Root: root}
	cfg, err := config.Load(viper.New(), layout.RepoDir())
	if err != nil {
		return nil, nil, err
	}
	level := cfg.LogLevel
	if datagitFlags.root.logLevel != "" {
		level = datagitFlags.root.logLevel
	}
	logger, err := dlogger.GetConsoleLogger(level)
	if err != nil {
		return nil, nil, status.ErrConfiguration.Detailf("loglevel: %q", level).Wrap(err)
	}
	return cfg, logger, nil
}

func newEnv(entity string) (*env, error) {
	layout, err := model.NewLayout(datagitFlags.root.path, entity)
	if err != nil {
		return nil, status.ErrConfiguration.Wrap(err)
	}
	cfg, logger, err := loadConfig(layout.Root)
	if err != nil {
		return nil, err
	}
	storeOptions, err := cfg.HashFSOptions()
	if err != nil {
		return nil, err
	}
	return &env{
		layout:  layout,
		config:  cfg,
		fs:      afero.NewOsFs(),
		logger:  logger,
		storeOp: storeOptions,
	}, nil
}

func (e *env) repository() (*core.LocalRepository, error) {
	return core.New(e.layout,
		core.Fs(e.fs),
		core.Logger(e.logger),
		core.HashFSOptions(e.storeOp...),
		core.Concurrency(e.config.PushThreads),
		core.Retry(e.config.Retry),
		core.Window(e.config.Window),
		core.RateLimit(e.config.RateLimit),
		core.WithBackends(core.DefaultBackends(e.config.Storage, e.fs, e.logger)),
	)
}

func (e *env) index(spec string) (*index.Index, error) {
	idx, err := index.New(e.layout, spec,
		index.Fs(e.fs),
		index.Logger(e.logger),
		index.HashFSOptions(e.storeOp...),
	)
	if err != nil {
		return nil, status.ErrLocalIO.Wrap(err)
	}
	return idx, nil
}

func (e *env) metadata() *metadata.Metadata {
	return metadata.New(e.layout, metadata.Fs(e.fs), metadata.Logger(e.logger))
}

// sampler parses the sampling flags, if any
func sampler() (sample.Sampler, error) {
	if datagitFlags.sample.kind == "" && datagitFlags.sample.value == "" {
		return nil, nil
	}
	s, err := sample.Parse(datagitFlags.sample.kind, datagitFlags.sample.value, datagitFlags.sample.seed)
	if err != nil {
		return nil, status.ErrConfiguration.Wrap(err)
	}
	return s, nil
}
