package cli

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/h24486064/plagiarism-detection/internal/adapters/driving/tui"
	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// Flags shared by check and watch.
var (
	noCache       bool
	reportDir     string
	reportFormats []string
	wholeDocument bool
)

var browseFindings bool

// runBrowser shows the interactive findings browser.
var runBrowser = tui.Run

var checkCmd = &cobra.Command{
	Use:   "check [file...]",
	Short: "Check documents for plagiarism and AI-generated text",
	Long: `Locates the literature review section of each file, splits it into windows
and checks every window against the web and an AI-authorship score.

Supported formats: .txt, .md, .html, .docx, .pdf.
Reports are written to the report directory only when a window is flagged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	addRunFlags(checkCmd)
	checkCmd.Flags().BoolVar(&browseFindings, "browse", false, "browse the findings interactively after the run")
	rootCmd.AddCommand(checkCmd)
}

// addRunFlags registers the flags that shape a check run.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "keep search and page caches in memory for this run")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "directory for report files (default from config)")
	cmd.Flags().StringSliceVar(&reportFormats, "format", []string{"html", "json"}, "report formats to write")
	cmd.Flags().BoolVar(&wholeDocument, "whole-document", false, "analyse the whole text when no review heading is found")
}

func runOptions() RunOptions {
	return RunOptions{
		NoCache:       noCache,
		ReportDir:     reportDir,
		Formats:       reportFormats,
		WholeDocument: wholeDocument,
	}
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
	rt, err := openRuntime(cmd, runOptions())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close runtime: %w", cerr)
		}
	}()

	ctx := commandContext(cmd)
	var failed []string
	var reports []*domain.Report
	for _, path := range args {
		if !rt.Check.Supports(path) {
			cmd.PrintErrf("%s: unsupported file type\n", path)
			failed = append(failed, path)
			continue
		}

		report, err := rt.Check.Check(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cmd.PrintErrf("%s: %v\n", path, err)
			failed = append(failed, path)
			continue
		}
		printReport(cmd, report)
		reports = append(reports, report)
	}

	if browseFindings {
		if items := tui.Items(reports); len(items) > 0 {
			if err := runBrowser(ctx, items, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}
		} else {
			cmd.Println(mutedStyle.Render("No findings to browse."))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed: %s", len(failed), len(args), strings.Join(failed, ", "))
	}
	return nil
}

// printReport writes a human-readable summary of report.
func printReport(cmd *cobra.Command, report *domain.Report) {
	cmd.Println(titleStyle.Render(report.Document.ID))

	switch report.Status {
	case domain.StatusSectionNotFound:
		cmd.Println(warningStyle.Render("  No literature review section found."))
		return
	case domain.StatusNothingToAnalyze:
		cmd.Println(warningStyle.Render("  The literature review section is empty."))
		return
	}

	cmd.Printf("  Section: %s [%d:%d]", report.Section.Heading, report.Section.Start, report.Section.End)
	if report.Section.Truncated {
		cmd.Print(" (truncated)")
	}
	cmd.Println()
	cmd.Printf("  Windows: %d, flagged: %d (plagiarism %d, AI %d) in %s\n",
		report.Windows, len(report.Findings),
		report.Count(domain.FindingPlagiarism), report.Count(domain.FindingAI),
		report.Duration().Round(100*time.Millisecond))

	if len(report.Findings) == 0 {
		cmd.Println(successStyle.Render("  No suspicious windows."))
		return
	}

	cmd.Println()
	for _, f := range report.Findings {
		kind := f.Kind()
		cmd.Printf("  #%-3d %s [%d:%d] AI %.1f, confidence %.0f%%\n",
			f.Window.Sequence, kindStyle(kind).Render(string(kind)),
			f.Window.Start, f.Window.End, f.AIScore, f.Verdict.Confidence)
		if f.Hit != nil {
			cmd.Printf("       source: %s (similarity %.3f)\n", f.Hit.URL, f.Hit.Score)
		}
		if f.Verdict.Justification != "" {
			cmd.Println("       " + mutedStyle.Render(shorten(f.Verdict.Justification, 160)))
		}
	}

	if len(report.Files) > 0 {
		cmd.Println()
		for _, path := range report.Files {
			cmd.Printf("  Report: %s\n", path)
		}
	}
}

// shorten cuts s to n runes on a single line.
func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
