package main

import (
	"fmt"
	"os"

	"gemchat/internal/app"
	"gemchat/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func loadConfig(cmd *cobra.Command) (app.Config, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return cfg, err
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	if backend, _ := cmd.Flags().GetString("storage"); backend != "" {
		cfg.Storage = backend
	}
	return cfg, nil
}

func main() {
	root := &cobra.Command{
		Use:     "gemchat",
		Short:   "Gemchat - persistent chat sessions over the Gemini API",
		Long:    "Gemchat keeps multiple independent chat sessions on disk and relays each message to the Gemini API.\n\nRun without arguments for the TUI.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			mock, _ := cmd.Flags().GetBool("mock")

			application, err := app.New(cfg, app.Options{MockClient: mock})
			if err != nil {
				return err
			}
			defer application.Close()

			p := tea.NewProgram(tui.New(application), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	root.PersistentFlags().String("data-dir", "", "Override the data directory")
	root.PersistentFlags().String("storage", "", "Storage backend: file|sqlite")
	root.Flags().Bool("mock", false, "Use a scripted backend instead of the Gemini API")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored chat sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			application, err := app.New(cfg, app.Options{MockClient: true})
			if err != nil {
				return err
			}
			defer application.Close()

			list := application.Sessions.List()
			if len(list) == 0 {
				fmt.Println("No sessions stored.")
				return nil
			}
			for _, s := range list {
				fmt.Printf("%s  %-42s %3d messages  %s\n",
					s.ID, s.Title, s.Messages, s.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	root.AddCommand(sessionsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
