package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/docchat/internal/domain"
	"github.com/user/docchat/internal/service"
)

func init() {
	rootCmd.AddCommand(highlightsCmd)
	highlightsCmd.AddCommand(highlightsLoadCmd, highlightsGotoCmd)
}

var highlightsCmd = &cobra.Command{
	Use:   "highlights",
	Short: "Inspect document highlights",
}

var highlightsLoadCmd = &cobra.Command{
	Use:   "load <document-id> <highlight-id>...",
	Short: "Fetch highlights for a document and print them",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		highlights, err := app.highlights.LoadForDocument(cmd.Context(), args[0], args[1:])
		if err != nil {
			if !errors.Is(err, domain.ErrHighlightsUnavailable) {
				return err
			}
			// The document stays viewable without highlights.
			fmt.Fprintln(os.Stderr, "Warning: unable to load highlights")
		}
		if len(highlights) == 0 {
			fmt.Println("No highlights.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPAGE\tTYPE\tTEXT\tCOMMENT")
		for _, h := range highlights {
			kind := "text"
			if h.IsArea() {
				kind = "area"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s %s\n",
				h.ID, h.Position.PageNumber, kind, truncate(h.Content.Text, 40), h.Comment.Emoji, h.Comment.Text)
		}
		return w.Flush()
	},
}

var highlightsGotoCmd = &cobra.Command{
	Use:   "goto <document-id> <highlight-id> <loaded-highlight-id>...",
	Short: "Resolve a highlight reference the way the viewer does",
	Long: "Loads the given highlights, then drives the scroll coordinator with a\n" +
		"#highlight-<id> fragment and prints where the viewer would scroll.",
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if _, err := app.highlights.LoadForDocument(cmd.Context(), args[0], args[2:]); err != nil &&
			!errors.Is(err, domain.ErrHighlightsUnavailable) {
			return err
		}

		scrolled := false
		coordinator := service.NewScrollCoordinator(app.highlights, func(h domain.Highlight) {
			scrolled = true
			fmt.Printf("Scrolled to highlight %s on page %d\n", h.ID, h.Position.PageNumber)
		}, app.log)

		coordinator.OnViewerReady()
		coordinator.OnFragmentChange(service.FragmentPrefix + args[1])
		if !scrolled {
			fmt.Println("Highlight not found; reference is stale.")
		}
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
