package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure providers, thresholds, and other options.

Settings are stored as dotted keys in the config file, e.g.
"embedding.provider" or "retrieval.top_k". Use set-secret for API keys
so they are never echoed to the terminal.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a single setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting",
	Long: `Set a configuration value. Integers and floats are stored as numbers,
"true"/"false" as booleans, everything else as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetSecretCmd = &cobra.Command{
	Use:   "set-secret [key]",
	Short: "Set a secret without echoing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSetSecret,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE:  runSettingsPath,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetSecretCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

// shownSettings are the keys listed by "settings show", grouped by section.
var shownSettings = []struct {
	section string
	keys    []string
	secrets []string
}{
	{
		section: "Embedding",
		keys:    []string{"embedding.provider", "embedding.base_url", "embedding.model", "embedding.dimensions"},
		secrets: []string{"embedding.api_key"},
	},
	{
		section: "Vector Index",
		keys:    []string{"vector.url", "vector.collection"},
		secrets: []string{"vector.api_key"},
	},
	{
		section: "Generation",
		keys:    []string{"generation.provider", "generation.model"},
		secrets: []string{"generation.api_key"},
	},
	{
		section: "Web Search",
		secrets: []string{"websearch.api_key"},
	},
	{
		section: "Retrieval",
		keys: []string{
			"retrieval.top_k",
			"retrieval.high_score_threshold", "retrieval.high_min_results",
			"retrieval.medium_score_threshold", "retrieval.medium_min_results",
		},
	},
	{
		section: "Ingestion",
		keys:    []string{"ingestion.workers", "ingestion.dpi", "ingestion.image_dir"},
	},
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	for _, group := range shownSettings {
		cmd.Printf("[%s]\n", group.section)
		for _, key := range group.keys {
			if value, ok := configStore.Get(key); ok {
				cmd.Printf("  %s: %v\n", key, value)
			} else {
				cmd.Printf("  %s: (default)\n", key)
			}
		}
		for _, key := range group.secrets {
			if value := configStore.GetString(key); value != "" {
				cmd.Printf("  %s: %s\n", key, maskAPIKey(value))
			} else {
				cmd.Printf("  %s: (not set)\n", key)
			}
		}
		cmd.Println()
	}

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	value, ok := configStore.Get(key)
	if !ok {
		return fmt.Errorf("setting %q is not set", key)
	}

	if strings.HasSuffix(key, "api_key") {
		cmd.Println(maskAPIKey(fmt.Sprintf("%v", value)))
		return nil
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseSettingValue(raw)); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runSettingsSetSecret(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Enter value for %s: ", args[0])
	secret := readPassword()
	cmd.Println()
	if secret == "" {
		return errors.New("no value entered")
	}

	if err := configStore.Set(args[0], secret); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(configStore.Path())
	return nil
}

// parseSettingValue converts CLI input to a typed config value.
func parseSettingValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
