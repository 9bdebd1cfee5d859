// Package idp signs a page into the platform through Twitter or Discord.
package idp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

const (
	DefaultSignupURL   = "https://pioneer.particle.network/en/signup"
	DefaultPlatformURL = "https://pioneer.particle.network/"

	defaultElementTimeout = 5 * time.Second
	defaultURLTimeout     = 30 * time.Second
	slowTimeout           = 20 * time.Second
	keystrokeDelay        = 100 * time.Millisecond
)

type Config struct {
	SignupURL   string
	PlatformURL string
}

func DefaultConfig() Config {
	return Config{SignupURL: DefaultSignupURL, PlatformURL: DefaultPlatformURL}
}

// Flow builds the scripted steps that sign credential in.
type Flow interface {
	Steps(cfg Config, credential domain.Credential) []Step
}

// Authenticator dispatches to the flow of the credential's provider.
type Authenticator struct {
	cfg    Config
	flows  map[domain.ProviderKind]Flow
	logger *slog.Logger
}

var _ ports.Authenticator = (*Authenticator)(nil)

func NewAuthenticator(cfg Config) *Authenticator {
	if cfg.SignupURL == "" {
		cfg.SignupURL = DefaultSignupURL
	}
	if cfg.PlatformURL == "" {
		cfg.PlatformURL = DefaultPlatformURL
	}

	return &Authenticator{
		cfg: cfg,
		flows: map[domain.ProviderKind]Flow{
			domain.ProviderTwitter: Twitter{},
			domain.ProviderDiscord: Discord{},
		},
		logger: logger.Named("idp"),
	}
}

func (a *Authenticator) Login(ctx context.Context, page ports.Page, credential domain.Credential) error {
	provider := credential.Account.Provider
	flow, ok := a.flows[provider]
	if !ok {
		return fmt.Errorf("no sign-in flow for provider %q", provider)
	}

	log := a.logger.With(slog.String("account", string(credential.Account.ID)), slog.String("provider", string(provider)))
	log.Info("signing in")

	started := time.Now()
	if err := run(ctx, page, flow.Steps(a.cfg, credential)); err != nil {
		log.Warn("sign-in failed", slog.String("error", err.Error()))
		return fmt.Errorf("%s sign-in: %w", provider, err)
	}

	log.Info("signed in", slog.Duration("elapsed", time.Since(started)))
	return nil
}
