package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mcodersir/axkhan/internal/config"
	"github.com/mcodersir/axkhan/internal/settings"
	"github.com/mcodersir/axkhan/internal/storage"
	"github.com/spf13/cobra"
)

// settingFields maps setting names to their display and update functions
var settingFields = map[string]struct {
	get func(settings.Settings) string
	set func(*settings.Settings, string) error
}{
	storage.KeyAPIKey: {
		get: func(s settings.Settings) string { return s.MaskedKey() },
		set: func(s *settings.Settings, v string) error { s.APIKey = strings.TrimSpace(v); return nil },
	},
	storage.KeyTheme: {
		get: func(s settings.Settings) string { return s.Theme },
		set: func(s *settings.Settings, v string) error { s.Theme = v; return nil },
	},
	storage.KeyLanguage: {
		get: func(s settings.Settings) string { return s.Language },
		set: func(s *settings.Settings, v string) error { s.Language = v; return nil },
	},
	storage.KeyFontSize: {
		get: func(s settings.Settings) string { return strconv.Itoa(s.FontSize) },
		set: func(s *settings.Settings, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("font size must be a number: %w", err)
			}
			s.FontSize = n
			return nil
		},
	},
	storage.KeyEcoMode: {
		get: func(s settings.Settings) string { return strconv.FormatBool(s.EcoMode) },
		set: func(s *settings.Settings, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("eco mode must be true or false: %w", err)
			}
			s.EcoMode = b
			return nil
		},
	},
}

func settingNames() []string {
	names := make([]string, 0, len(settingFields))
	for name := range settingFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change saved settings",
		Long: `Shows or changes the settings saved in the local store.

Settings: ` + strings.Join(settingNames(), ", "),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [NAME]",
		Short: "Print one or all settings (the API key is masked)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(config.Load())
			if err != nil {
				return err
			}
			defer a.Close()

			stored := map[string]bool{}
			if keys, err := a.db.Keys(); err == nil {
				for _, k := range keys {
					stored[k] = true
				}
			}

			s := a.settings.Get()
			names := settingNames()
			if len(args) == 1 {
				if _, ok := settingFields[args[0]]; !ok {
					return fmt.Errorf("unknown setting %q", args[0])
				}
				names = args
			}
			for _, name := range names {
				suffix := ""
				if !stored[name] {
					suffix = " (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s%s\n", name, settingFields[name].get(s), suffix)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set NAME VALUE",
		Short:   "Change a setting",
		Example: "  axkhan settings set eco_mode true\n  axkhan settings set theme dark",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, ok := settingFields[args[0]]
			if !ok {
				return fmt.Errorf("unknown setting %q", args[0])
			}

			a, err := openApp(config.Load())
			if err != nil {
				return err
			}
			defer a.Close()

			var parseErr error
			s, err := a.settings.Update(func(s *settings.Settings) {
				parseErr = field.set(s, args[1])
			})
			if parseErr != nil {
				return parseErr
			}
			if err != nil {
				return fmt.Errorf("failed to save setting: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", args[0], field.get(s))
			return nil
		},
	})

	return cmd
}
