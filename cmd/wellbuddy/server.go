package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/wellbuddy/internal/alert"
	"github.com/kalambet/wellbuddy/internal/api"
	"github.com/kalambet/wellbuddy/internal/config"
	"github.com/kalambet/wellbuddy/internal/crisis"
	"github.com/kalambet/wellbuddy/internal/genai"
	"github.com/kalambet/wellbuddy/internal/logging"
	"github.com/kalambet/wellbuddy/internal/pipeline"
	"github.com/kalambet/wellbuddy/internal/sealer"
	"github.com/kalambet/wellbuddy/internal/sentiment"
	"github.com/kalambet/wellbuddy/internal/storage"
)

const (
	modelResolveTimeout = 10 * time.Second
	shutdownTimeout     = 5 * time.Second
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the wellbuddy server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running wellbuddy server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show wellbuddy status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "wellbuddy.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// openStore opens the database with the configured at-rest sealer.
func openStore(cfg config.StorageConfig) (*storage.Store, error) {
	seal, err := sealer.New(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("loading ENCRYPTION_KEY: %w", err)
	}
	if cfg.EncryptionKey == "" {
		slog.Warn("ENCRYPTION_KEY not set, chat history is stored unencrypted")
	}
	store, err := storage.Open(cfg.DBPath, storage.WithSealer(seal))
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return store, nil
}

func closeStore(store *storage.Store) {
	if err := store.Close(); err != nil {
		slog.Warn("closing storage", "error", err)
	}
}

// newGenerator builds the Gemini client and fixes its model for the process
// lifetime. Without an API key it skips discovery; every call then fails
// fast and the pipelines answer with their fallback text.
func newGenerator(ctx context.Context, cfg config.AIConfig) *genai.Client {
	client := genai.NewClientWithBaseURL(cfg.APIKey, cfg.Model, cfg.BaseURL)
	if cfg.APIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, chat and plan will use fallback replies")
		return client
	}

	resolveCtx, cancel := context.WithTimeout(ctx, modelResolveTimeout)
	defer cancel()
	model := genai.ResolveModel(resolveCtx, client, cfg.Model)
	slog.Info("using gemini model", "model", model)
	return client.WithModel(model)
}

func alertConfig(cfg config.Config) alert.Config {
	return alert.Config{
		Sender:           cfg.Email.User,
		Password:         cfg.Email.Password,
		DefaultRecipient: cfg.Email.Recipient,
		Hotline:          cfg.Crisis.Hotline,
		Host:             cfg.Email.SMTPHost,
		Port:             cfg.Email.SMTPPort,
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCloser := logging.Setup(cfg.Log, os.Stderr)
	defer logCloser.Close()
	slog.Info("wellbuddy starting", "version", version)

	// Refuse to start twice against the same data dir.
	pidPath := pidFilePath(cfg.Storage.DataDir())
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(serverURL(cfg.Server) + "/health"); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		return fmt.Errorf("server already running on %s", cfg.Server.Addr())
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore(store)

	gen := newGenerator(ctx, cfg.AI)

	acfg := alertConfig(cfg)
	if acfg.Sender == "" || acfg.Password == "" {
		slog.Warn("EMAIL_USER or EMAIL_PASS not set, crisis alerts will not be delivered")
	}
	dispatcher := alert.NewDispatcher(acfg, alert.NewSMTPSender(acfg), store)

	chat := pipeline.NewChat(store, sentiment.NewVader(), gen, crisis.NewScanner(cfg.Crisis.KeywordList()), dispatcher)
	planner := pipeline.NewPlanner(store, gen)

	var pages fs.FS
	if cfg.Server.WebDir != "" {
		pages = os.DirFS(cfg.Server.WebDir)
		slog.Info("serving pages from disk", "dir", cfg.Server.WebDir)
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewHandler(api.Deps{
			Store:   store,
			Chat:    chat,
			Planner: planner,
			Pages:   pages,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("wellbuddy listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	pidPath := pidFilePath(cfg.Storage.DataDir())
	pid, err := readPIDFile(pidPath)
	if err != nil {
		return fmt.Errorf("wellbuddy is not running (no PID file): %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("could not find process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		removePIDFile(pidPath)
		return fmt.Errorf("could not stop wellbuddy (PID %d): %w", pid, err)
	}

	printSuccess("Sent stop signal to wellbuddy (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	base := serverURL(cfg.Server)
	client := &http.Client{Timeout: 2 * time.Second}

	running := false
	resp, err := client.Get(base + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			running = true
			printStatus("Server", "running on %s", cfg.Server.Addr())
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if running {
		if moodsResp, err := client.Get(base + "/moods"); err == nil {
			var moods []storage.MoodEntry
			if decodeJSON(moodsResp, &moods) == nil {
				printStatus("Mood entries", "%d", len(moods))
			}
		}
	}

	model := cfg.AI.Model
	if model == "" {
		model = "auto (" + genai.PreferredModels[0] + " preferred)"
	}
	printStatus("Model", "%s", model)
	printStatus("Database", "%s", cfg.Storage.DBPath)
	printStatus("Data dir", "%s", cfg.Storage.DataDir())
	printStatus("SMTP", "%s:%d", cfg.Email.SMTPHost, cfg.Email.SMTPPort)

	secrets := config.SecretStatus(cfg)
	for _, name := range slices.Sorted(maps.Keys(secrets)) {
		state := colorize(colorYellow, "missing")
		if secrets[name] {
			state = colorize(colorGreen, "set")
		}
		printStatus(name, "%s", state)
	}
	return nil
}
