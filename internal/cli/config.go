package cli

import (
	"fmt"
	"os"

	"timecard/internal/config"
	"timecard/internal/tracker"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Show the effective configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"store": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.resolvedConfigPath()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			printf(cmd, "# %s\n%s", path, data)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with the current settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"store": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.resolvedConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, a.cfg); err != nil {
				return err
			}
			printf(cmd, "%s %s\n", successColor.Sprint("Wrote"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")

	cmd.AddCommand(initCmd)
	return cmd
}

func (a *app) resolvedConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultConfigPath()
}

// projectCompletion completes project names. Cobra skips the persistent
// hooks while completing, so it opens its own store.
func (a *app) projectCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if err := a.loadConfig(); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	tr, err := tracker.Open(a.cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer tr.Close()

	entries, err := tr.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
