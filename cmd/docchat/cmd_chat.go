package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatSessionID string

func init() {
	chatCmd.Flags().StringVarP(&chatSessionID, "session", "s", "", "session to chat in (default: current, or a new one)")
	rootCmd.AddCommand(chatCmd, historyCmd)
	historyCmd.AddCommand(historySyncCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat in a session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if _, err := app.requireUser(); err != nil {
			return err
		}

		id := chatSessionID
		if id == "" {
			id = app.sessions.Current()
		}
		if id == "" {
			id = app.sessions.Create()
		}
		app.sessions.SetCurrent(id)

		if session, ok := app.sessions.Get(id); ok && len(session.Messages) > 0 {
			for _, m := range session.Messages {
				fmt.Printf("%s: %s\n", m.Role, m.Content)
			}
		}

		fmt.Printf("Session %s. Type a message, or /quit to exit.\n", id)
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "/quit" || line == "/exit" {
				break
			}

			streamer, err := app.sessions.SendMessage(cmd.Context(), id, line)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				continue
			}

			// Print only the delta of each cumulative tick.
			printed := 0
			for text := range streamer.Out() {
				fmt.Print(text[printed:])
				printed = len(text)
			}
			fmt.Println()

			if session, ok := app.sessions.Get(id); ok {
				last := session.Messages[len(session.Messages)-1]
				for docID, highlightIDs := range last.Documents {
					fmt.Printf("  source: document %s (highlights: %s)\n", docID, strings.Join(highlightIDs, ", "))
				}
			}
		}
		return scanner.Err()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Work with server-side chat history",
}

var historySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace local sessions with the server-side history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		user, err := app.requireUser()
		if err != nil {
			return err
		}

		if err := app.sessions.MergeHistory(cmd.Context(), user.UserID); err != nil {
			return fmt.Errorf("sync history: %w", err)
		}
		fmt.Printf("Synced %d sessions.\n", len(app.sessions.List()))
		return nil
	},
}
