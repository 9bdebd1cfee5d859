package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/adapters/browser/chromedp"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/confirm"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/idp"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/progress/client"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/progress/server"
	"github.com/bnema/pioneer-tx-cli/internal/application"
	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/spf13/viper"
)

const (
	configDir  = ".config/ptx"
	configName = "config.toml"
	envPrefix  = "PTX"
)

func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("toml")

	v.SetDefault("accounts.path", "")
	v.SetDefault("secrets.dir", "")
	v.SetDefault("secrets.backend", "auto")

	v.SetDefault("platform.point_url", application.DefaultPointURL)
	v.SetDefault("platform.signup_url", application.DefaultSignupURL)
	v.SetDefault("platform.home_url", idp.DefaultPlatformURL)
	v.SetDefault("platform.ledger_api", application.DefaultFeedURL)

	v.SetDefault("quota.daily", domain.DefaultDailyQuota)
	v.SetDefault("quota.reward", domain.DefaultRewardPerTransfer)
	v.SetDefault("session.pacing", domain.DefaultPacing)
	v.SetDefault("session.budget", domain.DefaultAccountBudget)

	wf := application.DefaultWorkflowConfig()
	v.SetDefault("workflow.max_attempts", wf.MaxAttempts)
	v.SetDefault("workflow.type_delay", wf.TypeDelay)
	v.SetDefault("workflow.login_timeout", wf.LoginTimeout)
	v.SetDefault("workflow.step_timeout", wf.StepTimeout)
	v.SetDefault("workflow.review_timeout", wf.ReviewTimeout)
	v.SetDefault("workflow.success_timeout", wf.SuccessTimeout)
	v.SetDefault("workflow.settle", 3*time.Second)
	v.SetDefault("ledger.timeout", application.DefaultLedgerConfig().Timeout)

	transfer := domain.DefaultTransferSpec()
	v.SetDefault("transfer.destination", transfer.Destination)
	v.SetDefault("transfer.amount", transfer.Amount)
	v.SetDefault("transfer.network_id", transfer.Network.ID)
	v.SetDefault("transfer.network_name", "")
	v.SetDefault("transfer.fee_token", transfer.FeeToken)
	v.SetDefault("networks.catalog", "")

	v.SetDefault("confirmation.strategy", confirm.StrategyBlind)

	browser := chromedp.DefaultOptions()
	v.SetDefault("browser.headless", browser.Headless)
	v.SetDefault("browser.width", browser.Width)
	v.SetDefault("browser.height", browser.Height)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.user_data_dir", "")

	v.SetDefault("progress.url", client.DefaultBaseURL)
	v.SetDefault("progress.addr", server.DefaultAddr)
	v.SetDefault("progress.store", "memory")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", server.DefaultRedisPrefix)

	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject", application.DefaultProgressSubject)
	v.SetDefault("metrics.addr", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.outputs", []string{"stderr"})

	return v
}

// loadConfigFile reads path, or ~/.config/ptx/config.toml when path is
// empty. Only an explicitly requested file has to exist.
func loadConfigFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(envPrefix + "_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, configDir, configName)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func defaultSecretsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDir, "secrets"), nil
}
