package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/pkg/prompt"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the px configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appPaths.ConfigPath

		// Ensure it exists
		if !appPaths.Exists() {
			return fmt.Errorf("config file not found at %s (run 'px init')", path)
		}

		fmt.Println(ui.FormatInfo("Opening config: " + path))

		c := exec.Command(GetPreferredEditor(), path)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration px is running with: the config file merged with
PX_* environment variables and defaults. Secrets are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		masked := *appConfig
		masked.Immich.APIKey = maskSecret(masked.Immich.APIKey)
		masked.S3.AccessKey = maskSecret(masked.S3.AccessKey)
		masked.S3.SecretKey = maskSecret(masked.S3.SecretKey)

		data, err := yaml.Marshal(&masked)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}

		content := string(data)
		if appConfig.SyntaxHighlighting {
			content = highlightYAML(content, appConfig.HighlightStyle)
		}
		fmt.Print(content)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print where px keeps its files",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(ui.RenderKeyValues([][2]string{
			{"Config", appPaths.ConfigPath},
			{"Env", appPaths.EnvPath},
			{"State", appPaths.StatePath},
			{"Log", appPaths.LogPath},
		}))
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget stored preferences",
	Long: `Forget the preferences px stores between runs. After a reset the next
deletion asks for confirmation again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		confirmed, err := prefsRepo.GetBool(ctx, ports.PrefDeleteConfirmed)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(ui.FormatInfo("Nothing to reset."))
			return nil
		}

		ok, err := prompt.Confirm("Ask for confirmation before the next delete again", true)
		if err != nil && !prompt.IsAborted(err) {
			return err
		}
		if !ok {
			fmt.Println(ui.FormatInfo("Operation cancelled."))
			return nil
		}

		if err := prefsRepo.Reset(); err != nil {
			fmt.Println(ui.FormatError("Failed to reset preferences"))
			return err
		}
		fmt.Println(ui.FormatSuccess("Preferences reset"))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configResetCmd)
}

// maskSecret hides all but the last four characters
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
