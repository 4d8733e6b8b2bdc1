// Package bootstrap wires configuration, logging, and the Telegram transport
// into a ready-to-use pagination runtime. It is a convenience for callers
// that do not already own a bot; applications with their own wiring can use
// the telegram package directly.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	coreconfig "github.com/steven-peralta/discord-paginationembed/core/config"
	"github.com/steven-peralta/discord-paginationembed/core/logger"
	"github.com/steven-peralta/discord-paginationembed/core/telegram"

	tele "gopkg.in/telebot.v4"
)

const (
	configPathEnv = "CONFIG_PATH"
	tokenEnv      = "TELEGRAM_TOKEN"
)

// Options control the init pipeline. Zero-value fields fall back to
// environment variables and package defaults.
type Options struct {
	// ConfigPath locates the YAML config file. Falls back to CONFIG_PATH;
	// with neither set, built-in defaults apply.
	ConfigPath string
	// Token is the bot token. Falls back to TELEGRAM_TOKEN.
	Token string

	LoggerInit func(*coreconfig.Config) error
	NewBot     func(token string) (*tele.Bot, error)
}

// Result exposes the infrastructure initialized by Run.
type Result struct {
	Config *coreconfig.Config
	Bot    *tele.Bot
	Router *telegram.Router
}

// Run loads configuration, initializes the logger, and builds the bot with
// its update router.
func Run(opts Options) (*Result, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: config load failed: %w", err)
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	token := opts.Token
	if token == "" {
		token = os.Getenv(tokenEnv)
	}
	if token == "" {
		return nil, fmt.Errorf("bootstrap: bot token not provided via Options.Token or %s", tokenEnv)
	}

	newBot := opts.NewBot
	if newBot == nil {
		newBot = telegram.NewBot
	}
	bot, err := newBot(token)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: bot init failed: %w", err)
	}

	return &Result{
		Config: cfg,
		Bot:    bot,
		Router: telegram.NewRouter(bot),
	}, nil
}

func loadConfig(path string) (*coreconfig.Config, error) {
	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path == "" {
		return coreconfig.Default(), nil
	}
	return coreconfig.Load(path)
}

// Start runs the bot's update loop until ctx is cancelled or the process
// receives SIGINT/SIGTERM, then stops the bot and flushes the logger.
func (r *Result) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go r.Bot.Start()
	<-ctx.Done()
	r.Bot.Stop()
	return logger.Shutdown()
}
