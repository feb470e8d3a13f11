// Command coach answers Canvas LMS questions from Dropbox or local documents.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/coach/internal/adapters/driven/ai"
	"github.com/custodia-labs/coach/internal/adapters/driven/auth"
	"github.com/custodia-labs/coach/internal/adapters/driven/config/file"
	"github.com/custodia-labs/coach/internal/adapters/driven/export/pdf"
	"github.com/custodia-labs/coach/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/coach/internal/adapters/driven/watch"
	"github.com/custodia-labs/coach/internal/adapters/driving/cli"
	"github.com/custodia-labs/coach/internal/connectors/dropbox"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/core/services"
	"github.com/custodia-labs/coach/internal/logger"
	"github.com/custodia-labs/coach/internal/normalisers"
)

// version is set at build time with -ldflags "-X main.version=v1.2.3".
var version = "dev"

// envOverrides maps environment variables onto setting keys. Values
// supplied this way are used for the run but never written to config.toml.
var envOverrides = map[string]string{
	"GEMINI_API_KEY":       "llm.api_key",
	"GEMINI_MODEL":         "llm.model",
	"GOOGLE_CLOUD_PROJECT": "llm.project",
	"DROPBOX_APP_KEY":      "dropbox.app_key",
	"DROPBOX_APP_SECRET":   "dropbox.app_secret",
	"DROPBOX_ROOT":         "dropbox.root",
}

// signalContext is cancelled on Ctrl-C or SIGTERM so deferred cleanup
// such as closing the store still runs.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func main() {
	ctx, stop := signalContext(context.Background())
	defer stop()

	code := 0
	if err := run(ctx); err != nil {
		code = 1
	}
	stop()
	os.Exit(code)
}

func run(ctx context.Context) error {
	loadDotEnv()
	cli.SetVersion(version)

	home, err := file.HomeDir()
	if err != nil {
		logger.Error("resolve coach home: %v", err)
		return err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		logger.Error("load config: %v", err)
		return err
	}
	for env, key := range envOverrides {
		configStore.Override(key, os.Getenv(env))
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		logger.Error("read settings: %v", err)
		return err
	}

	store, err := sqlite.NewStore(filepath.Join(home, "data"))
	if err != nil {
		logger.Error("open database: %v", err)
		return err
	}
	defer store.Close()

	promptStore, err := file.NewPromptStore(filepath.Join(home, "prompts"), services.DefaultPrompts())
	if err != nil {
		logger.Error("load prompts: %v", err)
		return err
	}

	extractors := normalisers.Default()
	dropboxStore := dropbox.NewStore(settings.Dropbox)

	var oauthClient *dropbox.OAuthClient
	var refresher auth.TokenRefresher
	if settings.Dropbox.AppKey != "" {
		oauthClient = dropbox.NewOAuthClient(settings.Dropbox.AppKey, settings.Dropbox.AppSecret)
		refresher = oauthClient
	}
	credentials := auth.NewDropboxProvider(store.CredentialsStore(), refresher, os.Getenv("DROPBOX_ACCESS_TOKEN"))

	var oauth driven.OAuthClient
	if oauthClient != nil {
		oauth = oauthClient
	}
	connectionService := services.NewConnectionService(store.CredentialsStore(), oauth, dropboxStore)

	// A missing or broken LLM leaves heuristic preparation usable.
	llm, err := ai.CreateCompletionService(ctx, &settings.LLM)
	if err != nil {
		logger.Warn("LLM unavailable: %v", err)
		llm = nil
	}
	if llm != nil {
		defer llm.Close()
	}

	documentService := services.NewDocumentService(
		dropboxStore, store.LibraryStore(), credentials, extractors, *settings,
	)
	askService := services.NewAskService(documentService, extractors, llm, promptStore, *settings)
	libraryService := services.NewLibraryService(store.LibraryStore(), extractors, watch.New(0))
	actionService := services.NewAnswerActionService(pdf.NewExporter(), dropbox.WebURL)

	cli.SetServices(cli.Services{
		Ask:        askService,
		Connection: connectionService,
		Documents:  documentService,
		Library:    libraryService,
		Settings:   settingsService,
		Actions:    actionService,
	})

	return cli.Execute(ctx)
}

// loadDotEnv reads .env from the working directory, if present.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("read .env: %v", err)
	}
}
