package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/docchat/internal/client"
	"github.com/user/docchat/internal/config"
	"github.com/user/docchat/internal/domain"
	"github.com/user/docchat/internal/repository"
	"github.com/user/docchat/internal/service"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:           "docchat",
	Short:         "Chat with your documents from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles the wired stores and clients for command handlers.
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	db         *repository.DB
	cache      *repository.CacheRepository
	chat       *client.ChatClient
	docs       *client.DocumentClient
	sessions   *service.SessionStore
	highlights *service.HighlightStore
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var logger *zap.Logger
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	db, err := repository.NewDB(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}

	cache := repository.NewCacheRepository(db)
	chat := client.NewChatClient(cfg.Backend.ChatURL, cfg.Timeout(), logger)
	docs := client.NewDocumentClient(cfg.Backend.DocumentURL, cfg.Timeout(), logger)

	// Requests carry the cached user's token when one exists.
	if user, err := cache.LoadUser(); err == nil && user.AccessToken != "" {
		chat.SetToken(user.AccessToken)
		docs.SetToken(user.AccessToken)
	}

	return &app{
		cfg:        cfg,
		log:        logger,
		db:         db,
		cache:      cache,
		chat:       chat,
		docs:       docs,
		sessions:   service.NewSessionStore(cfg, cache, chat, logger),
		highlights: service.NewHighlightStore(docs, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("failed to close cache database", zap.Error(err))
	}
	_ = a.log.Sync()
}

// requireUser returns the cached user or a friendly error telling the caller
// to log in first.
func (a *app) requireUser() (*domain.User, error) {
	user, err := a.cache.LoadUser()
	if err != nil {
		return nil, fmt.Errorf("not logged in (run `docchat login`): %w", err)
	}
	return user, nil
}
