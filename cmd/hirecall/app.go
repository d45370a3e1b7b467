package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/hirecall/internal/ai"
	"github.com/amishk599/hirecall/internal/ats"
	"github.com/amishk599/hirecall/internal/calls"
	"github.com/amishk599/hirecall/internal/config"
	"github.com/amishk599/hirecall/internal/httpapi"
	"github.com/amishk599/hirecall/internal/mail"
	"github.com/amishk599/hirecall/internal/model"
	"github.com/amishk599/hirecall/internal/notifier"
	"github.com/amishk599/hirecall/internal/pdftext"
	"github.com/amishk599/hirecall/internal/ratelimit"
	"github.com/amishk599/hirecall/internal/retry"
	"github.com/amishk599/hirecall/internal/store"
	"github.com/amishk599/hirecall/internal/task"
	"github.com/amishk599/hirecall/internal/voice"
)

// Routes protected by the Redis limiter when one is configured.
var limitedRoutes = []string{"check-ats-score", "apply-for-job"}

// app is the wired set of components every command draws from.
type app struct {
	cfg          *config.Config
	store        *store.Store
	tasks        *task.Runner
	scorer       *ats.Scorer
	intake       *ats.Intake
	shortlister  *ats.Shortlister
	orchestrator *calls.Orchestrator
	notifier     model.Notifier
	limiters     map[string]httpapi.Limiter
	logger       *slog.Logger

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, store.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	client, err := a.setupAI(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	mailer, err := setupMailer(ctx, cfg, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n, err := setupNotifier(cfg, httpClient, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.notifier = n

	a.limiters = a.setupLimiters()

	a.tasks = task.NewRunner(ctx, cfg.Tasks.Timeout, logger)
	pdf := pdftext.NewExtractor(logger)

	a.shortlister = ats.NewShortlister(st, st, mailer, cfg.Mail.From, n, a.tasks, cfg.Server.BaseURL, logger)
	a.scorer = ats.NewScorer(st, st, client, pdf, a.shortlister, cfg.ATS.ShortlistThreshold, logger)
	a.intake = ats.NewIntake(st, st, pdf, a.scorer, a.tasks, logger)
	a.orchestrator = calls.New(st, st, st, setupGateway(cfg, logger), client, n, a.tasks, calls.Options{
		CountryCode: cfg.Voice.DefaultCountryCode,
		BaseURL:     cfg.Server.BaseURL,
	}, logger)

	return a, nil
}

func (a *app) setupAI(ctx context.Context) (ai.Client, error) {
	cfg := a.cfg.AI
	switch cfg.Provider {
	case "vertex":
		p, err := ai.NewVertexProvider(ctx, cfg.Project, cfg.Location, cfg.Model, cfg.JSONMode)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, p.Close)
		a.logger.Info("using vertex ai", "project", cfg.Project, "location", cfg.Location, "model", cfg.Model)
		return p, nil
	default:
		a.logger.Debug("using openai-compatible provider", "base_url", cfg.BaseURL, "model", cfg.Model)
		return ai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.JSONMode, &http.Client{Timeout: cfg.Timeout}), nil
	}
}

// setupGateway decorates the provider client: retrieval retries, then a
// minimum gap between outbound dispatches.
func setupGateway(cfg *config.Config, logger *slog.Logger) model.VoiceGateway {
	var g model.VoiceGateway = voice.NewRetellGateway(cfg.Voice.BaseURL, cfg.Voice.APIKey, &http.Client{Timeout: cfg.Voice.Timeout})
	if cfg.Voice.RetrieveRetries > 0 {
		g = retry.NewRetryingGateway(g, retry.Policy{MaxRetries: cfg.Voice.RetrieveRetries, BaseDelay: 2 * time.Second}, logger)
	}
	if cfg.Voice.DispatchMinGap > 0 {
		g = ratelimit.NewRateLimitedGateway(g, ratelimit.NewGapLimiter(cfg.Voice.DispatchMinGap), "retell")
	}
	return g
}

// setupMailer returns a nil Mailer when mail.type is "none".
func setupMailer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (model.Mailer, error) {
	var m model.Mailer
	switch cfg.Mail.Type {
	case "none":
		return nil, nil
	case "resend":
		baseURL := cfg.Mail.BaseURL
		if baseURL == "" {
			baseURL = mail.DefaultResendURL
		}
		m = mail.NewResendMailer(baseURL, cfg.Mail.APIKey, &http.Client{Timeout: 30 * time.Second})
		logger.Info("using resend mailer")
	case "gmail":
		g, err := mail.NewGmailMailer(ctx, cfg.Mail.CredentialsFile, cfg.Mail.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("setting up gmail: %w", err)
		}
		m = g
		logger.Info("using gmail mailer")
	default:
		m = mail.NewLogMailer(logger)
	}
	if cfg.Mail.Retries > 0 {
		m = retry.NewRetryMailer(m, retry.Policy{MaxRetries: cfg.Mail.Retries, BaseDelay: 2 * time.Second}, logger)
	}
	return m, nil
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Notifier, error) {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger), nil
	case "telegram":
		t, err := notifier.NewTelegramNotifier(cfg.Notification.TelegramToken, cfg.Notification.TelegramChatID, logger)
		if err != nil {
			return nil, fmt.Errorf("setting up telegram: %w", err)
		}
		logger.Info("using telegram notifier")
		return t, nil
	default:
		return notifier.NewLogNotifier(logger), nil
	}
}

func (a *app) setupLimiters() map[string]httpapi.Limiter {
	if !a.cfg.Redis.Enabled() {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	a.closers = append(a.closers, rdb.Close)

	limiters := make(map[string]httpapi.Limiter)
	for _, route := range limitedRoutes {
		l, ok := a.cfg.RateLimit.For(route)
		if !ok {
			continue
		}
		limiters[route] = ratelimit.NewRedisLimiter(rdb, l.Limit, l.Window, "hirecall:ratelimit:", a.logger)
		a.logger.Info("rate limit configured", "route", route, "limit", l.Limit, "window", l.Window.String())
	}
	return limiters
}

func (a *app) router() http.Handler {
	return httpapi.NewRouter(httpapi.Deps{
		Scorer:         a.scorer,
		Intake:         a.intake,
		Shortlister:    a.shortlister,
		Orchestrator:   a.orchestrator,
		Calls:          a.store,
		Jobs:           a.store,
		Limiters:       a.limiters,
		MaxUploadBytes: a.cfg.Server.MaxUploadBytes(),
		Logger:         a.logger,
	})
}

// drain waits for detached tasks, bounded by tasks.shutdown_drain.
func (a *app) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Tasks.ShutdownDrain)
	defer cancel()
	if err := a.tasks.Wait(ctx); err != nil {
		a.logger.Warn("background tasks still running at shutdown", "error", err)
	}
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
