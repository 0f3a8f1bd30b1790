package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/voxnote/voxnote/internal/audio"
	"github.com/voxnote/voxnote/internal/config"
	"github.com/voxnote/voxnote/internal/export"
	"github.com/voxnote/voxnote/internal/keyring"
	"github.com/voxnote/voxnote/internal/logger"
	"github.com/voxnote/voxnote/internal/note"
	"github.com/voxnote/voxnote/internal/pipeline"
	"github.com/voxnote/voxnote/internal/server"
	"github.com/voxnote/voxnote/internal/session"
	"github.com/voxnote/voxnote/internal/store"
	"github.com/voxnote/voxnote/internal/tui"
	"github.com/voxnote/voxnote/pkg/collections"
)

// CLI defines the voxnote command structure.
type CLI struct {
	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"withargs" help:"Launch the terminal UI for recording and browsing notes"`

	// Subcommands
	Serve   ServeCmd   `cmd:"" help:"Serve the notes API and web UI over HTTP"`
	Devices DevicesCmd `cmd:"" help:"List available audio devices"`
	Notes   NotesCmd   `cmd:"" help:"Inspect and manage stored notes"`
	Export  ExportCmd  `cmd:"" help:"Export notes to files"`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration"`
}

// TUICmd is the default command that runs the TUI.
type TUICmd struct {
	DataDir         string `flag:"" optional:"" env:"DATA_DIR" help:"Notes directory (default: ~/.voxnote)"`
	ExportDir       string `flag:"" default:"." help:"Directory exported notes are written to"`
	Provider        string `flag:"" default:"gemini" enum:"gemini,openai" env:"PROVIDER" help:"Pipeline provider: gemini or openai"`
	MaxBytes        int64  `flag:"" default:"67108864" help:"Max recording size (64MB)"`
	GeminiAPIKey    string `flag:"" env:"GEMINI_API_KEY" help:"Gemini API key for transcription and polishing"`
	OpenAIAPIKey    string `flag:"" env:"OPENAI_API_KEY" help:"OpenAI API key for Whisper transcription"`
	AnthropicAPIKey string `flag:"" env:"ANTHROPIC_API_KEY" help:"Anthropic API key for polishing"`
}

// Run executes the TUI command.
func (c *TUICmd) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileStore, err := openStore(c.DataDir)
	if err != nil {
		return err
	}

	repo := note.NewRepository(fileStore)
	repo.Load()

	proc, err := c.buildPipeline(ctx, repo)
	if err != nil {
		return err
	}

	sess := session.New(session.Config{MaxBytes: c.MaxBytes}, nil)

	model := tui.New(ctx, tui.Options{
		Notes:     repo,
		Recorder:  sess,
		Processor: proc,
		Themes:    fileStore,
		Theme:     fileStore.LoadTheme(),
		ExportDir: c.ExportDir,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	// A recording left running when the program exits is discarded.
	sess.Abort(ctx)

	return nil
}

// buildPipeline resolves API keys and wires the provider pair. Environment
// variables and flags take priority; the system keychain is the fallback.
func (c *TUICmd) buildPipeline(ctx context.Context, repo *note.Repository) (*pipeline.Pipeline, error) {
	switch c.Provider {
	case config.ProviderGemini:
		key := resolveKey(c.GeminiAPIKey, keyring.Gemini)
		if key == "" {
			return nil, errors.New(
				"missing Gemini API key: set GEMINI_API_KEY or run 'voxnote config set-key gemini <key>'")
		}

		gemini, err := pipeline.NewGemini(ctx, key)
		if err != nil {
			return nil, err
		}

		return pipeline.New(gemini, gemini, repo), nil

	case config.ProviderOpenAI:
		openaiKey := resolveKey(c.OpenAIAPIKey, keyring.OpenAI)
		anthropicKey := resolveKey(c.AnthropicAPIKey, keyring.Anthropic)

		var missing []string
		if openaiKey == "" {
			missing = append(missing, "openai")
		}

		if anthropicKey == "" {
			missing = append(missing, "anthropic")
		}

		if len(missing) > 0 {
			return nil, fmt.Errorf(
				"missing API keys: %s. Set via environment variables or run 'voxnote config set-key'",
				strings.Join(missing, ", "))
		}

		return pipeline.New(pipeline.NewWhisper(openaiKey), pipeline.NewClaude(anthropicKey), repo), nil
	}

	return nil, fmt.Errorf("unknown provider %q", c.Provider)
}

// resolveKey prefers the flag/env value and falls back to the keychain.
func resolveKey(flagValue string, key keyring.APIKey) string {
	if flagValue != "" {
		return flagValue
	}

	secret, err := keyring.Get(key)
	if err != nil {
		slog.Debug("keychain lookup failed", "key", key.DisplayName(), "error", err)

		return ""
	}

	return secret
}

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	ExportDir string `flag:"" default:"." help:"Directory exported notes are written to"`
}

// Run executes the serve command.
func (c *ServeCmd) Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.SetupLogger(cfg)

	fileStore, err := openStore(cfg.DataDir)
	if err != nil {
		return err
	}

	repo := note.NewRepository(fileStore)
	repo.Load()

	log.Info("Notes loaded", "count", repo.Len(), "dir", fileStore.Dir())

	srv := server.New(cfg, log, repo, c.ExportDir)

	return server.Run(srv)
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (c *DevicesCmd) Run() error {
	devices, err := audio.EnumerateDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"isDefault", dev.IsDefault,
			"formatCount", dev.FormatCount,
			"formats", dev.Formats,
		)
	}

	return nil
}

// NotesCmd groups note management subcommands.
type NotesCmd struct {
	List  ListNotesCmd  `cmd:"" help:"List stored notes"`
	Clear ClearNotesCmd `cmd:"" help:"Delete all stored notes"`
}

// ListNotesCmd prints the stored notes.
type ListNotesCmd struct {
	DataDir string `flag:"" optional:"" env:"DATA_DIR" help:"Notes directory (default: ~/.voxnote)"`
}

// Run executes the notes list command.
func (c *ListNotesCmd) Run() error {
	fileStore, err := openStore(c.DataDir)
	if err != nil {
		return err
	}

	repo := note.NewRepository(fileStore)
	repo.Load()

	currentID := repo.Current().ID
	for _, n := range repo.Notes() {
		marker := " "
		if n.ID == currentID {
			marker = "*"
		}

		fmt.Printf("%s %s  %s  (%s)\n",
			marker,
			time.UnixMilli(n.Timestamp).Format("2006-01-02 15:04"),
			n.Title,
			n.ID,
		)
	}

	return nil
}

// ClearNotesCmd deletes all stored notes.
type ClearNotesCmd struct {
	DataDir string `flag:"" optional:"" env:"DATA_DIR" help:"Notes directory (default: ~/.voxnote)"`
	Yes     bool   `flag:"" help:"Skip confirmation"`
}

// Run executes the notes clear command.
func (c *ClearNotesCmd) Run() error {
	if !c.Yes {
		return errors.New("refusing to delete all notes without --yes")
	}

	fileStore, err := openStore(c.DataDir)
	if err != nil {
		return err
	}

	if err := fileStore.Clear(); err != nil {
		return fmt.Errorf("failed to clear notes: %w", err)
	}

	fmt.Println("All notes deleted.")

	return nil
}

// ExportCmd writes notes to files.
type ExportCmd struct {
	DataDir string `flag:"" optional:"" env:"DATA_DIR" help:"Notes directory (default: ~/.voxnote)"`
	Dir     string `flag:"" default:"." help:"Directory to write into"`
	ID      string `arg:"" optional:"" help:"Note id to export (default: all notes with content)"`
}

// Run executes the export command.
func (c *ExportCmd) Run() error {
	fileStore, err := openStore(c.DataDir)
	if err != nil {
		return err
	}

	repo := note.NewRepository(fileStore)
	repo.Load()

	if c.ID != "" {
		n, ok := repo.Get(c.ID)
		if !ok {
			return fmt.Errorf("no note with id %s", c.ID)
		}

		path, err := export.Write(c.Dir, n)
		if err != nil {
			return err
		}

		fmt.Println("Saved", path)

		return nil
	}

	exportable := collections.Filter(repo.Notes(), func(n note.Note) bool {
		return !n.IsEmpty()
	})
	if len(exportable) == 0 {
		fmt.Println("No notes with content to export.")

		return nil
	}

	for _, n := range exportable {
		path, err := export.Write(c.Dir, n)
		if err != nil {
			return err
		}

		fmt.Println("Saved", path)
	}

	return nil
}

// ConfigCmd groups configuration-related subcommands.
type ConfigCmd struct {
	SetKey   SetKeyCmd   `cmd:"" help:"Store an API key in system keychain"`
	ListKeys ListKeysCmd `cmd:"" name:"list-keys" help:"Show which API keys are configured"`
}

// SetKeyCmd stores an API key in the system keychain.
type SetKeyCmd struct {
	Service string `arg:"" enum:"gemini,openai,anthropic" help:"Service name (gemini, openai, or anthropic)"`
	Secret  string `arg:"" help:"API key value"`
}

// Run executes the set-key command.
func (c *SetKeyCmd) Run() error {
	if strings.TrimSpace(c.Secret) == "" {
		return errors.New("API key cannot be empty")
	}

	apiKey, err := keyring.APIKeyFromServiceName(c.Service)
	if err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}

	if err := keyring.Set(apiKey, c.Secret); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Printf("%s API key stored in keychain\n", c.Service)

	return nil
}

// ListKeysCmd shows which API keys are configured.
type ListKeysCmd struct{}

// Run executes the list-keys command.
//
//nolint:unparam // error return required by Kong interface
func (c *ListKeysCmd) Run() error {
	allSet := true

	for _, apiKey := range keyring.AllAPIKeys() {
		if keyring.IsSet(apiKey) {
			fmt.Printf("%s: configured\n", apiKey.DisplayName())
		} else {
			fmt.Printf("%s: not set\n", apiKey.DisplayName())
			allSet = false
		}
	}

	if !allSet {
		fmt.Println("\nRun 'voxnote config set-key <service> <key>' to configure.")
	}

	return nil
}

// openStore resolves the data directory and opens the file store.
func openStore(dir string) (*store.FileStore, error) {
	if dir == "" {
		var err error
		dir, err = store.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
	}

	fileStore, err := store.NewFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open note store: %w", err)
	}

	return fileStore, nil
}

func main() {
	// Set up text-based logger for CLI output
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
