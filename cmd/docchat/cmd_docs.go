package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsUploadCmd, docsListCmd, docsDeleteCmd)
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage uploaded documents",
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a document (.pdf, .doc, .docx, .txt)",
	Args:  cobra.ExactArgs(1),
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

		doc, err := app.docs.Upload(cmd.Context(), args[0], user.UserID)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		fmt.Printf("Uploaded %s (id %s)\n", doc.Filename, doc.ID)
		return nil
	},
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
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

		docs, err := app.docs.List(cmd.Context(), user.UserID)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		if len(docs) == 0 {
			fmt.Println("No documents found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFILENAME\tUPLOADED")
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Filename, d.UploadTimestamp.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an uploaded document",
	Args:  cobra.ExactArgs(1),
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

		if err := app.docs.Delete(cmd.Context(), args[0], user.UserID); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		fmt.Println("Deleted.")
		return nil
	},
}
