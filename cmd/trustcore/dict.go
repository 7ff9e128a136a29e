package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mealshare/trustcore/pkg/cli"
	"mealshare/trustcore/pkg/safety"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Inspect prohibited-term dictionaries",
}

var dictLintFlags struct {
	strict bool
	output string
}

var dictLintCmd = &cobra.Command{
	Use:   "lint [file...]",
	Short: "Validate dictionary files",
	Long: `Validate dictionary files.

Each file is parsed and every term is checked against the normalization the
filter applies at match time. Lint reports terms that:
  - normalize to the empty string and are ignored
  - are matched in a different form than written (e.g. "F.U.C.K")
  - duplicate an earlier term after normalization
  - are shorter than three letters and match inside innocent words

Parse errors always fail. With --strict, any issue fails.
Without arguments, the built-in dictionary is linted.

Examples:
  trustcore dict lint dictionaries/custom.yaml
  trustcore dict lint --strict --output json a.yaml b.yaml`,
	RunE: runDictLint,
}

var dictShowFlags struct {
	output string
}

var dictShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "List the terms of a dictionary in match order",
	Long: `List the terms of a dictionary in configuration order, which is the
order in which a violation is reported. Without arguments, the built-in
dictionary is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDictShow,
}

func init() {
	rootCmd.AddCommand(dictCmd)
	dictCmd.AddCommand(dictLintCmd, dictShowCmd)

	dictLintCmd.Flags().BoolVar(&dictLintFlags.strict, "strict", false, "treat lint issues as errors")
	dictLintCmd.Flags().StringVarP(&dictLintFlags.output, "output", "o", "text", "output format: text, json, csv")

	dictShowCmd.Flags().StringVarP(&dictShowFlags.output, "output", "o", "text", "output format: text, json, csv")
}

// LintResult is the lint outcome for one dictionary file.
type LintResult struct {
	File   string             `json:"file"`
	Valid  bool               `json:"valid"`
	Terms  int                `json:"terms"`
	Error  string             `json:"error,omitempty"`
	Issues []safety.LintIssue `json:"issues,omitempty"`
}

// LintResults renders as a table of issues.
type LintResults []LintResult

// Header implements cli.Table.
func (r LintResults) Header() []string {
	return []string{"file", "category", "term", "message"}
}

// Rows implements cli.Table.
func (r LintResults) Rows() [][]string {
	var rows [][]string
	for _, res := range r {
		if res.Error != "" {
			rows = append(rows, []string{res.File, "", "", res.Error})
		}
		for _, issue := range res.Issues {
			rows = append(rows, []string{res.File, issue.Category, issue.Term, issue.Message})
		}
	}
	return rows
}

const builtinDictionary = "(built-in)"

func runDictLint(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(dictLintFlags.output)
	if err != nil {
		return err
	}

	files := args
	if len(files) == 0 {
		files = []string{builtinDictionary}
	}

	results := make(LintResults, 0, len(files))
	failed := 0
	for _, file := range files {
		res := lintDictionary(file)
		if !res.Valid || (dictLintFlags.strict && len(res.Issues) > 0) {
			failed++
		}
		results = append(results, res)
	}

	w := stdout(cmd)
	if format != cli.FormatText {
		if err := cli.NewFormatter(format).FormatTo(w, results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			switch {
			case !res.Valid:
				fmt.Fprintf(w, "✗ %s: %s\n", res.File, res.Error)
			case len(res.Issues) == 0:
				fmt.Fprintf(w, "✓ %s: %d terms\n", res.File, res.Terms)
			default:
				fmt.Fprintf(w, "⚠ %s: %d terms, %d issues\n", res.File, res.Terms, len(res.Issues))
				for _, issue := range res.Issues {
					fmt.Fprintf(w, "    %s\n", issue)
				}
			}
		}
	}

	if failed > 0 {
		return cli.NewCommandError("dict lint", fmt.Errorf("%d of %d dictionaries failed", failed, len(results)))
	}
	return nil
}

func lintDictionary(file string) LintResult {
	res := LintResult{File: file}

	dict, err := openDictionary(file)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Valid = true
	res.Terms = len(dict.Terms())
	res.Issues = dict.Lint()
	return res
}

func openDictionary(file string) (*safety.Dictionary, error) {
	if file == "" || file == builtinDictionary {
		return safety.DefaultDictionary(), nil
	}
	return safety.LoadDictionary(file)
}

// TermList renders dictionary terms as a table.
type TermList []safety.Term

// Header implements cli.Table.
func (l TermList) Header() []string {
	return []string{"#", "category", "language", "term"}
}

// Rows implements cli.Table.
func (l TermList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, t := range l {
		rows[i] = []string{fmt.Sprint(i + 1), t.Category, t.Language, t.Text}
	}
	return rows
}

func runDictShow(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(dictShowFlags.output)
	if err != nil {
		return err
	}

	file := builtinDictionary
	if len(args) == 1 {
		file = args[0]
	}
	dict, err := openDictionary(file)
	if err != nil {
		return err
	}

	ts, err := safety.NewTermSet(dict.Terms(), safety.MatcherAhoCorasick)
	if err != nil {
		return err
	}

	if format == cli.FormatText && verbose {
		categories := make([]string, 0, len(dict.Categories))
		for _, c := range dict.Categories {
			categories = append(categories, fmt.Sprintf("%s (%d)", c.Name, len(c.Terms)))
		}
		fmt.Fprintf(stderr(cmd), "%s: %s\n", file, strings.Join(categories, ", "))
	}
	return cli.NewFormatter(format).FormatTo(stdout(cmd), TermList(ts.Terms()))
}
