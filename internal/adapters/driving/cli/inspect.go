package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	inspectFull          bool
	inspectWholeDocument bool
)

var sectionCmd = &cobra.Command{
	Use:   "section [file]",
	Short: "Show the literature review section of a file",
	Long: `Locates the literature review section and prints its heading, its byte
offsets in the extracted text and the start of the section text.`,
	Args: cobra.ExactArgs(1),
	RunE: runSection,
}

var chunksCmd = &cobra.Command{
	Use:   "chunks [file]",
	Short: "Show the windows the section is split into",
	Long: `Splits the literature review section into overlapping token windows and
prints each window's byte offsets, token count and text.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunks,
}

func init() {
	for _, cmd := range []*cobra.Command{sectionCmd, chunksCmd} {
		cmd.Flags().BoolVar(&inspectFull, "full", false, "print full text instead of a preview")
		cmd.Flags().BoolVar(&inspectWholeDocument, "whole-document", false,
			"use the whole text when no review heading is found")
		rootCmd.AddCommand(cmd)
	}
}

func inspectOptions() RunOptions {
	return RunOptions{NoCache: true, Offline: true, WholeDocument: inspectWholeDocument}
}

func runSection(cmd *cobra.Command, args []string) (err error) {
	rt, err := openRuntime(cmd, inspectOptions())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close runtime: %w", cerr)
		}
	}()

	doc, section, err := rt.Check.Section(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("locate section: %w", err)
	}

	cmd.Println(titleStyle.Render(doc.ID))
	cmd.Printf("  Heading: %s\n", section.Heading)
	cmd.Printf("  Offsets: [%d:%d] of %d bytes\n", section.Start, section.End, len(doc.Content))
	if section.Truncated {
		cmd.Println(warningStyle.Render("  No end heading found, section truncated."))
	}
	cmd.Println()
	cmd.Println(previewText(section.Text, 600))
	return nil
}

func runChunks(cmd *cobra.Command, args []string) (err error) {
	rt, err := openRuntime(cmd, inspectOptions())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close runtime: %w", cerr)
		}
	}()

	windows, err := rt.Check.Chunks(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("chunk section: %w", err)
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("%d windows", len(windows))))
	for _, w := range windows {
		approx := ""
		if w.Approximate {
			approx = warningStyle.Render(" (approximate offsets)")
		}
		cmd.Printf("\n#%d [%d:%d] %d tokens%s\n", w.Sequence, w.Start, w.End, w.TokenCount, approx)
		cmd.Println(mutedStyle.Render(previewText(w.Text, 120)))
	}
	return nil
}

// previewText returns s, shortened to n runes unless --full was given.
func previewText(s string, n int) string {
	if inspectFull {
		return s
	}
	return shorten(s, n)
}
