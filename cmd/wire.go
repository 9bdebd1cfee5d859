package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/adapters/browser/chromedp"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/catalog"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/confirm"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/events"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/idp"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/metrics"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/progress/client"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/progress/server"
	statusadapter "github.com/bnema/pioneer-tx-cli/internal/adapters/render/status"
	tomlrepo "github.com/bnema/pioneer-tx-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/pioneer-tx-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/pioneer-tx-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/pioneer-tx-cli/internal/adapters/secrets/pass"
	"github.com/bnema/pioneer-tx-cli/internal/application"
	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	cfg            *viper.Viper
	statusRenderer func(statusadapter.Report, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
	clock          ports.Clock
}

func wireApp() *app {
	return &app{
		cfg:            newConfig(),
		statusRenderer: statusadapter.Render,
		now:            time.Now,
		clock:          ports.SystemClock{},
	}
}

func (a *app) initLogger() error {
	return logger.Init(logger.Config{
		Level:       a.cfg.GetString("log.level"),
		Format:      a.cfg.GetString("log.format"),
		OutputPaths: a.cfg.GetStringSlice("log.outputs"),
	})
}

func (a *app) secretStore() (ports.SecretStore, error) {
	dir := a.cfg.GetString("secrets.dir")
	if dir == "" {
		var err error
		if dir, err = defaultSecretsDir(); err != nil {
			return nil, err
		}
	}

	switch strings.ToLower(a.cfg.GetString("secrets.backend")) {
	case "", "auto":
		store, err := chainstore.NewPassFirstWithFileFallback(dir)
		if err != nil {
			return nil, fmt.Errorf("wire secret store chain: %w", err)
		}
		return store, nil
	case "file":
		return filestore.NewStore(dir), nil
	case "pass":
		return passstore.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown secrets backend %q (want auto, file or pass)", a.cfg.GetString("secrets.backend"))
	}
}

func (a *app) service() (*application.Service, error) {
	repo, err := tomlrepo.NewRepository(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("wire account repository: %w", err)
	}
	store, err := a.secretStore()
	if err != nil {
		return nil, err
	}
	return application.NewService(repo, store), nil
}

func (a *app) quota() domain.Quota {
	return domain.Quota{Daily: a.cfg.GetInt("quota.daily"), Reward: a.cfg.GetInt("quota.reward")}
}

func (a *app) transferSpec() (domain.TransferSpec, error) {
	networks, err := catalog.Load(a.cfg.GetString("networks.catalog"))
	if err != nil {
		return domain.TransferSpec{}, err
	}

	network := domain.Network{
		ID:   strings.TrimSpace(a.cfg.GetString("transfer.network_id")),
		Name: strings.TrimSpace(a.cfg.GetString("transfer.network_name")),
	}
	if network.Name == "" {
		resolved, err := networks.Resolve(network.ID)
		if err != nil {
			return domain.TransferSpec{}, fmt.Errorf("transfer network: %w", err)
		}
		network = resolved
	}

	spec := domain.TransferSpec{
		Destination: a.cfg.GetString("transfer.destination"),
		Amount:      a.cfg.GetString("transfer.amount"),
		Network:     network,
		FeeToken:    a.cfg.GetString("transfer.fee_token"),
	}
	if err := spec.Validate(); err != nil {
		return domain.TransferSpec{}, err
	}
	return spec, nil
}

func (a *app) browserOptions() chromedp.Options {
	opts := chromedp.DefaultOptions()
	opts.Headless = a.cfg.GetBool("browser.headless")
	opts.Width = a.cfg.GetInt("browser.width")
	opts.Height = a.cfg.GetInt("browser.height")
	opts.ExecPath = a.cfg.GetString("browser.exec_path")
	opts.UserDataDir = a.cfg.GetString("browser.user_data_dir")
	return opts
}

func (a *app) progressClient() *client.Client {
	return client.New(a.cfg.GetString("progress.url"), nil)
}

func (a *app) progressBackend(ctx context.Context) (ports.ProgressStore, func() error, error) {
	switch strings.ToLower(a.cfg.GetString("progress.store")) {
	case "", "memory":
		return server.NewMemoryStore(), func() error { return nil }, nil
	case "redis":
		store, err := server.NewRedisStore(ctx, server.RedisConfig{
			Addr:     a.cfg.GetString("redis.addr"),
			Password: a.cfg.GetString("redis.password"),
			DB:       a.cfg.GetInt("redis.db"),
			Prefix:   a.cfg.GetString("redis.prefix"),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown progress store %q (want memory or redis)", a.cfg.GetString("progress.store"))
	}
}

func (a *app) workflow(spec domain.TransferSpec) (*application.Workflow, error) {
	cfg := application.DefaultWorkflowConfig()
	cfg.PointURL = a.cfg.GetString("platform.point_url")
	cfg.Transfer = spec
	cfg.MaxAttempts = a.cfg.GetInt("workflow.max_attempts")
	cfg.TypeDelay = a.cfg.GetDuration("workflow.type_delay")
	cfg.LoginTimeout = a.cfg.GetDuration("workflow.login_timeout")
	cfg.StepTimeout = a.cfg.GetDuration("workflow.step_timeout")
	cfg.ReviewTimeout = a.cfg.GetDuration("workflow.review_timeout")
	cfg.SuccessTimeout = a.cfg.GetDuration("workflow.success_timeout")

	surface, err := confirm.New(a.cfg.GetString("confirmation.strategy"), a.clock, a.cfg.GetDuration("workflow.settle"), cfg.ReviewTimeout)
	if err != nil {
		return nil, err
	}

	auth := idp.NewAuthenticator(idp.Config{
		SignupURL:   a.cfg.GetString("platform.signup_url"),
		PlatformURL: a.cfg.GetString("platform.home_url"),
	})

	steps := logger.Named("workflow")
	return application.NewWorkflow(cfg, auth, surface, a.clock).
		WithObserver(func(account domain.AccountID, state application.State, attempt int) {
			steps.Debug("step", slog.String("account", string(account)), slog.String("state", string(state)), slog.Int("attempt", attempt))
		}), nil
}

func (a *app) ledgerQuery() *application.LedgerQuery {
	cfg := application.DefaultLedgerConfig()
	cfg.PointURL = a.cfg.GetString("platform.point_url")
	cfg.FeedURL = a.cfg.GetString("platform.ledger_api")
	cfg.Timeout = a.cfg.GetDuration("ledger.timeout")
	cfg.Reward = a.quota().Reward
	return application.NewLedgerQuery(cfg, a.clock)
}

// pipeline is everything a transfer run needs, plus the teardown of what it
// opened.
type pipeline struct {
	browser  *chromedp.Browser
	workflow *application.Workflow
	ledger   *application.LedgerQuery
	runner   *application.Runner
	metrics  *metrics.Recorder
	closers  []func() error
}

func (r *pipeline) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, r.closers[i]())
	}
	return err
}

func (a *app) buildPipeline(ctx context.Context) (*pipeline, error) {
	spec, err := a.transferSpec()
	if err != nil {
		return nil, err
	}
	workflow, err := a.workflow(spec)
	if err != nil {
		return nil, err
	}

	publisher, err := events.New(a.cfg.GetString("events.nats_url"))
	if err != nil {
		return nil, err
	}

	rt := &pipeline{
		workflow: workflow,
		ledger:   a.ledgerQuery(),
		metrics:  metrics.NewRecorder(),
		closers:  []func() error{publisher.Close},
	}

	browser, err := chromedp.Launch(ctx, a.browserOptions())
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.browser = browser
	rt.closers = append(rt.closers, browser.Close)

	sessionCfg := application.SessionConfig{
		Quota:        a.quota(),
		Pacing:       a.cfg.GetDuration("session.pacing"),
		EventSubject: a.cfg.GetString("events.subject"),
	}
	progress := a.progressClient()
	session := application.NewSession(sessionCfg, rt.workflow, rt.ledger, progress, publisher, rt.metrics, a.clock)
	rt.runner = application.NewRunner(browser, session, progress, rt.metrics, a.cfg.GetDuration("session.budget"))

	return rt, nil
}

// serveMetrics exposes the run's metrics when metrics.addr is set.
func (a *app) serveMetrics(ctx context.Context, recorder *metrics.Recorder) {
	addr := a.cfg.GetString("metrics.addr")
	if addr == "" {
		return
	}
	go func() {
		if err := recorder.Serve(ctx, addr); err != nil {
			logger.Named("metrics").Warn("metrics endpoint stopped", slog.String("error", err.Error()))
		}
	}()
}
