package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/checkline/checkline-cli/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the checkline config directory and templates",
	Long: `Initialize ~/.checkline/ with a default checkline.yaml and a dotenv
template for the provider credentials. Existing files are left untouched.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	dir, err := config.ChecklineDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("checkline directory ready: %s", dir))

	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("wrote default config: %s", cfgPath))
	} else {
		printInfo("", fmt.Sprintf("config already exists: %s", cfgPath))
	}

	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	envPath, _ := config.DotEnvPath()
	printOK("", fmt.Sprintf("dotenv template ready: %s", envPath))
	printInfo("", "set CHECKLINE_API_KEY before building an index")
	return nil
}
