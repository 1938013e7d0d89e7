package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change settings stored in ~/.ppltr/config.toml.

Every key can also be overridden with an environment variable: corpus.path
is PPLTR_CORPUS_PATH, embedding.primary.provider is
PPLTR_EMBEDDING_PRIMARY_PROVIDER. OPENAI_API_KEY is used when no OpenAI key
is configured.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting",
	Long: `Set a setting in the config file.

API keys (*.api_key) may be given without a value. The key is then read from
stdin, without echo when stdin is a terminal, so it stays out of shell history.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a setting so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the supported setting keys",
	RunE:  runConfigKeys,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := initSettings(); err != nil {
		return err
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("[Corpus]")
	cmd.Printf("  Path: %s\n", settings.Corpus.Path)
	cmd.Printf("  Strip markdown: %t\n", settings.Corpus.StripMarkdown)
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Driver: %s\n", settings.Cache.Driver)
	if settings.Cache.Dir != "" {
		cmd.Printf("  Dir: %s\n", settings.Cache.Dir)
	}
	cmd.Println()

	cmd.Println("[BM25]")
	cmd.Printf("  b: %g\n", settings.BM25.B)
	cmd.Printf("  k1: %g\n", settings.BM25.K1)
	cmd.Println()

	showEmbedding(cmd, "Embedding: primary (general)", settings.Primary)
	showEmbedding(cmd, "Embedding: secondary (technical)", settings.Secondary)

	cmd.Println("[Ranker]")
	cmd.Printf("  Java: %s\n", settings.Ranker.Java)
	cmd.Printf("  Jar: %s\n", settings.Ranker.Jar)
	cmd.Printf("  Model: %s\n", settings.Ranker.Model)
	if settings.Ranker.WorkDir != "" {
		cmd.Printf("  Work dir: %s\n", settings.Ranker.WorkDir)
	}
	cmd.Printf("  Top k: %d\n", settings.Ranker.TopK)
	return nil
}

func showEmbedding(cmd *cobra.Command, title string, e domain.EmbeddingSettings) {
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  Provider: %s\n", e.Provider.Description())
	cmd.Printf("  Model: %s\n", e.Model)
	if e.Repo != "" {
		cmd.Printf("  Repo: %s\n", e.Repo)
	}
	if e.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", e.BaseURL)
	}
	if e.Provider.RequiresAPIKey() {
		if e.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(e.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	if e.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", e.Dimensions)
	}
	status := "configured"
	if !e.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := initSettings(); err != nil {
		return err
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case isSecretKey(key):
		secret, err := readSecret(cmd, key)
		if err != nil {
			return err
		}
		if secret == "" {
			return fmt.Errorf("%w: no value given for %s", domain.ErrInvalidInput, key)
		}
		value = secret
	default:
		return fmt.Errorf("%w: %s needs a value", domain.ErrInvalidInput, key)
	}
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, ".api_key")
}

// readSecret reads one value from the command's input. A terminal gets a
// prompt and no echo; anything else is read as a single line.
func readSecret(cmd *cobra.Command, key string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cmd.Printf("%s: ", key)
		secret, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", key, err)
		}
		return strings.TrimSpace(string(secret)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return strings.TrimSpace(line), nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if err := initSettings(); err != nil {
		return err
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Unset(args[0]); err != nil {
		return fmt.Errorf("failed to unset %s: %w", args[0], err)
	}
	cmd.Printf("Unset %s\n", args[0])
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if err := initSettings(); err != nil {
		return err
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
