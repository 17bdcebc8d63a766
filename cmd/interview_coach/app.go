package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonathan/interview-coach/internal/blob"
	"github.com/jonathan/interview-coach/internal/coach"
	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/feedback"
	"github.com/jonathan/interview-coach/internal/fetch"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/questions"
	"github.com/jonathan/interview-coach/internal/store"
	"github.com/jonathan/interview-coach/internal/transcribe"
	"github.com/jonathan/interview-coach/internal/tts"
)

// mockTranscript is what the mock speech-to-text service returns for every clip.
const mockTranscript = "This is a mock transcription of your interview response for local testing."

// setupLogging installs the default slog logger. The server logs JSON; CLI commands log
// text. Both write to stderr so stdout stays free for command output and MCP traffic.
func setupLogging(jsonOutput, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// app holds everything a command needs to serve sessions.
type app struct {
	cfg        *config.Config
	coach      *coach.Coach
	store      store.Store
	jobOptions ingestion.Options
	speech     tts.Synthesizer
	closers    []func() error
}

// Close releases the store and the LLM client.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// loadConfig reads the configuration once for the command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the configured session store and ensures its table exists.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.StoreBackend {
	case config.BackendMemory:
		s = store.NewMemory()
	case config.BackendSQLite:
		s, err = store.OpenSQLite(cfg.SQLitePath, cfg.SessionsTable)
	case config.BackendPostgres:
		s, err = db.ConnectTable(ctx, cfg.DatabaseURL, cfg.SessionsTable)
	default:
		err = fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}

	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}
	return s, nil
}

func jobOptions(cfg *config.Config) ingestion.Options {
	return ingestion.Options{
		UseBrowser: cfg.UseBrowser,
		Fetch:      &fetch.Options{Retries: 2},
		Cache:      fetch.NewTextCache(fetch.DefaultCacheTTL),
	}
}

// newSynthesizer returns the text-to-speech backend. In live mode a client that cannot be
// created leaves speech disabled rather than failing the whole app.
func newSynthesizer(ctx context.Context, cfg *config.Config) tts.Synthesizer {
	if cfg.MockMode {
		return &tts.MockSynthesizer{}
	}
	key := cfg.TTSAPIKey
	if key == "" {
		key = cfg.APIKey
	}
	g, err := tts.NewGoogleSynthesizer(ctx, key, cfg.TTSVoice)
	if err != nil {
		slog.Warn("speech synthesis disabled", "error", err)
		return nil
	}
	return g
}

// newApp wires a Coach from configuration. Mock mode uses canned feedback and
// transcription and never touches the network for AI calls.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, jobOptions: jobOptions(cfg), speech: newSynthesizer(ctx, cfg)}

	s, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = s
	a.closers = append(a.closers, s.Close)

	bank := questions.DefaultBank()
	if cfg.QuestionBankFile != "" {
		bank, err = questions.LoadBankFile(cfg.QuestionBankFile, bank)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	audio, err := blob.NewFS(cfg.AudioDir)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to open audio store: %w", err)
	}

	var (
		fb     coach.FeedbackService
		gen    questions.Generator
		speech transcribe.Service
	)
	if cfg.MockMode {
		slog.Info("mock mode enabled: feedback and transcription are canned")
		fb = feedback.MockCoach{}
		speech = transcribe.NewMockService(mockTranscript)
	} else {
		llmCfg, err := llm.ConfigFromEnv(os.Getenv)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		client, err := llm.NewGeminiClient(ctx, llmCfg, cfg.APIKey)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		llmCoach := feedback.NewLLMCoach(client)
		fb = llmCoach
		gen = llmCoach
		speech = transcribe.NewGeminiService(client)
	}

	c, err := coach.New(coach.Deps{
		Store:     s,
		Questions: questions.NewBuilder(bank, gen),
		Feedback:  fb,
		Transcriber: &transcribe.Runner{
			Service:  speech,
			Interval: cfg.TranscribePollInterval.Std(),
			Timeout:  cfg.TranscribeTimeout.Std(),
		},
		Audio:      audio,
		Jobs:       &ingestion.Fetcher{Options: a.jobOptions},
		SessionTTL: cfg.SessionTTL.Std(),
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.coach = c

	slog.Debug("coach ready",
		"store", cfg.StoreBackend,
		"mock", cfg.MockMode,
		"question_types", c.QuestionTypes(),
	)
	return a, nil
}

// openApp loads configuration and wires the app in one step.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg)
}
