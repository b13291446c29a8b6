package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/pkg/config"
	"github.com/kamal-hamza/px-cli/pkg/prompt"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var (
	initForce    bool
	initDefaults bool
)

// libraryChoices are offered by the setup wizard, in config order
var libraryChoices = []string{"local", "immich", "s3"}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up px",
	Long: `Create the px configuration interactively.

Asks which library to browse (a local directory, an Immich server or an S3
bucket) and writes the answers to the config file. Everything else keeps
its default; edit the file later with 'px config'.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config")
	initCmd.Flags().BoolVar(&initDefaults, "defaults", false, "Write the default config without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	if appPaths.Exists() && !initForce {
		fmt.Println(ui.FormatWarning("px is already set up"))
		fmt.Println(ui.FormatMuted("Config: " + appPaths.ConfigPath))
		fmt.Println(ui.FormatMuted("Use --force to start over."))
		return nil
	}

	fmt.Println(ui.FormatRocket("Setting up px..."))
	fmt.Println()

	cfg := config.DefaultConfig()
	if !initDefaults {
		if err := askLibrary(cfg); err != nil {
			if prompt.IsAborted(err) {
				fmt.Println(ui.FormatInfo("Operation cancelled."))
				return nil
			}
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Println(ui.FormatError("Invalid answers"))
		return err
	}

	if err := appPaths.Initialize(); err != nil {
		fmt.Println(ui.FormatError("Failed to create directories"))
		return err
	}
	if err := cfg.Save(appPaths.ConfigPath); err != nil {
		fmt.Println(ui.FormatError("Failed to write config"))
		return err
	}

	fmt.Println(ui.FormatSuccess("px is ready!"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Config", appPaths.ConfigPath))
	fmt.Println(ui.RenderKeyValue("Library", describeLibrary(cfg)))
	fmt.Println()
	fmt.Println(ui.FormatInfo("Next steps:"))
	fmt.Println(ui.FormatMuted("  1. Browse your photos: px"))
	fmt.Println(ui.FormatMuted("  2. Find large photos: px list --sort size"))
	fmt.Println(ui.FormatMuted("  3. See the numbers: px stats"))
	return nil
}

// askLibrary fills the library section of cfg from prompts
func askLibrary(cfg *config.Config) error {
	idx, err := prompt.Select("Which library do you want to browse", libraryChoices, 0)
	if err != nil {
		return err
	}
	cfg.Library = libraryChoices[idx]

	switch cfg.Library {
	case "local":
		cfg.Local.Path, err = prompt.InputWithValidation("Photo directory", cfg.Local.Path, validateDirectory)
		return err

	case "immich":
		if cfg.Immich.URL, err = prompt.InputWithValidation("Server URL", "http://localhost:2283", validateURL); err != nil {
			return err
		}
		cfg.Immich.APIKey, err = prompt.Secret("API key")
		return err

	case "s3":
		if cfg.S3.Bucket, err = prompt.InputWithValidation("Bucket", "", prompt.NotEmpty); err != nil {
			return err
		}
		if cfg.S3.Prefix, err = prompt.Input("Key prefix", ""); err != nil {
			return err
		}
		if cfg.S3.Region, err = prompt.Input("Region", "us-east-1"); err != nil {
			return err
		}
		if cfg.S3.Endpoint, err = prompt.InputWithValidation("Custom endpoint (blank for AWS)", "", optional(validateURL)); err != nil {
			return err
		}
		if cfg.S3.Endpoint != "" {
			cfg.S3.PathStyle, err = prompt.Confirm("Use path-style addressing", true)
		}
		return err
	}
	return nil
}

func validateDirectory(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("a directory is required")
	}
	info, err := os.Stat(config.ExpandHome(input))
	if err != nil {
		return fmt.Errorf("cannot read %s", input)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", input)
	}
	return nil
}

func validateURL(input string) error {
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("enter a URL like http://host:port")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https")
	}
	return nil
}

// optional accepts blank input and validates anything else
func optional(validate func(string) error) func(string) error {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return nil
		}
		return validate(input)
	}
}

// describeLibrary summarises where the configured library lives
func describeLibrary(cfg *config.Config) string {
	switch cfg.Library {
	case "immich":
		return "immich at " + cfg.Immich.URL
	case "s3":
		loc := "s3://" + cfg.S3.Bucket
		if cfg.S3.Prefix != "" {
			loc += "/" + strings.Trim(cfg.S3.Prefix, "/")
		}
		return loc
	default:
		return "local " + cfg.Local.Path
	}
}
