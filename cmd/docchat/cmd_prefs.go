package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsShowCmd, prefsSetCmd)
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "View or change stored preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		prefs, err := app.cache.LoadPreferences()
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		fmt.Printf("theme: %s\nfont_size: %s\nauto_save: %t\n", prefs.Theme, prefs.FontSize, prefs.AutoSave)
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one preference (theme, font_size, auto_save)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		prefs, err := app.cache.LoadPreferences()
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}

		switch args[0] {
		case "theme":
			prefs.Theme = args[1]
		case "font_size":
			prefs.FontSize = args[1]
		case "auto_save":
			prefs.AutoSave = args[1] == "true"
		default:
			return fmt.Errorf("unknown preference: %s", args[0])
		}

		if err := app.cache.SavePreferences(prefs); err != nil {
			return fmt.Errorf("save preferences: %w", err)
		}
		fmt.Println("Saved.")
		return nil
	},
}
