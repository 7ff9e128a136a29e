package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mealshare/trustcore/pkg/cli"
	"mealshare/trustcore/pkg/safety"
)

// termFlags select the term set for offline commands. Unset flags fall back
// to the configuration's safety section.
type termFlags struct {
	dictionary string
	matcher    string
}

func (f *termFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dictionary, "dictionary", "d", "", "dictionary file (overrides safety.dictionary_path)")
	cmd.Flags().StringVar(&f.matcher, "matcher", "", "matcher: aho-corasick, substring (overrides safety.matcher)")
}

// termSet builds the term set the command checks against.
func (f *termFlags) termSet() (*safety.TermSet, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	src := cfg.Safety.Source()
	if f.dictionary != "" {
		src.DictionaryPath = f.dictionary
	}
	if f.matcher != "" {
		kind, err := safety.ParseMatcherKind(f.matcher)
		if err != nil {
			return nil, cli.NewConfigError("matcher", err.Error())
		}
		src.Matcher = kind
	}

	ts, err := src.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to load terms: %w", err)
	}
	return ts, nil
}

var checkFlags struct {
	terms    termFlags
	file     string
	all      bool
	output   string
	progress bool
}

var checkCmd = &cobra.Command{
	Use:   "check [text...]",
	Short: "Check text for prohibited terms",
	Long: `Check text for prohibited terms.

Arguments are joined with spaces and checked as one text. With --file, every
line of the file is checked separately ("-" reads standard input).

The command exits with status 1 if any text contains a prohibited term.

Examples:
  # Check a single text
  trustcore check "So eine SCHEIßE"

  # Check a file, one listing per line, as CSV
  trustcore check --file listings.txt --output csv

  # Report every matching term instead of the first
  trustcore check --all "fuck this shit"`,
	RunE: runCheck,
}

var validateFlags struct {
	terms       termFlags
	title       string
	description string
	output      string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a listing title and description",
	Long: `Validate a listing's title and description together, the way the
marketplace does before publishing.

The fields are joined with a single space, so a term split across them is
not detected. The command exits with status 1 for an invalid listing.

Examples:
  trustcore validate --title "Pasta Bolognese" --description "Frisch gekocht"
  trustcore validate --title "Shit Burger" --output json`,
	RunE: runValidate,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [text...]",
	Short: "Print the normalized form of text",
	Long: `Print text as the content filter sees it: lowercased, leetspeak
substituted, unsupported characters removed, runs of a letter shortened to
two and whitespace collapsed.

Without arguments, every line of standard input is normalized.

Examples:
  trustcore normalize "F.U.C.K"
  trustcore normalize "5H1T happens"`,
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(checkCmd, validateCmd, normalizeCmd)

	checkFlags.terms.register(checkCmd)
	checkCmd.Flags().StringVarP(&checkFlags.file, "file", "f", "", "file with one text per line (- for stdin)")
	checkCmd.Flags().BoolVar(&checkFlags.all, "all", false, "report every matching term")
	checkCmd.Flags().StringVarP(&checkFlags.output, "output", "o", "text", "output format: text, json, csv")
	checkCmd.Flags().BoolVar(&checkFlags.progress, "progress", false, "show progress on stderr when checking a file")

	validateFlags.terms.register(validateCmd)
	validateCmd.Flags().StringVar(&validateFlags.title, "title", "", "listing title")
	validateCmd.Flags().StringVar(&validateFlags.description, "description", "", "listing description")
	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "text", "output format: text, json")
}

// CheckResult is the outcome of checking one text.
type CheckResult struct {
	Line      int           `json:"line,omitempty"`
	Violation bool          `json:"violation"`
	Term      string        `json:"term,omitempty"`
	Category  string        `json:"category,omitempty"`
	Matches   []safety.Term `json:"matches,omitempty"`
}

// CheckResults renders as a table.
type CheckResults []CheckResult

// Header implements cli.Table.
func (r CheckResults) Header() []string {
	return []string{"line", "result", "category", "term"}
}

// Rows implements cli.Table.
func (r CheckResults) Rows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, res := range r {
		if !res.Violation {
			rows = append(rows, []string{strconv.Itoa(res.Line), "clean", "", ""})
			continue
		}
		if len(res.Matches) == 0 {
			rows = append(rows, []string{strconv.Itoa(res.Line), "violation", res.Category, res.Term})
			continue
		}
		for _, m := range res.Matches {
			rows = append(rows, []string{strconv.Itoa(res.Line), "violation", m.Category, m.Text})
		}
	}
	return rows
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(checkFlags.output)
	if err != nil {
		return err
	}
	if checkFlags.file == "" && len(args) == 0 {
		return fmt.Errorf("either text arguments or --file must be specified")
	}

	ts, err := checkFlags.terms.termSet()
	if err != nil {
		return err
	}
	filter := safety.NewFilter(ts)

	var texts []string
	if checkFlags.file != "" {
		texts, err = readLines(cmd, checkFlags.file)
		if err != nil {
			return err
		}
	} else {
		texts = []string{strings.Join(args, " ")}
	}

	var progress cli.ProgressReporter = cli.NoProgress{}
	if checkFlags.progress && checkFlags.file != "" {
		progress = cli.NewProgressReporter(stderr(cmd), "lines")
	}

	results := make(CheckResults, 0, len(texts))
	violations := 0
	progress.Start(int64(len(texts)))
	for i, text := range texts {
		res := checkText(filter, text, checkFlags.all)
		if checkFlags.file != "" {
			res.Line = i + 1
		}
		if res.Violation {
			violations++
		}
		results = append(results, res)
		progress.Update(int64(i + 1))
	}
	progress.Finish()

	if checkFlags.file == "" && format == cli.FormatText {
		printCheckResult(stdout(cmd), results[0])
	} else if err := cli.NewFormatter(format).FormatTo(stdout(cmd), results); err != nil {
		return err
	}

	if violations > 0 {
		return cli.ErrViolation
	}
	return nil
}

func checkText(filter *safety.Filter, text string, all bool) CheckResult {
	if all {
		matches := filter.CheckAll(text)
		if len(matches) == 0 {
			return CheckResult{}
		}
		return CheckResult{Violation: true, Term: matches[0].Text, Category: matches[0].Category, Matches: matches}
	}
	res := filter.Check(text)
	return CheckResult{Violation: res.Violation, Term: res.Term, Category: res.Category}
}

func printCheckResult(w io.Writer, res CheckResult) {
	if !res.Violation {
		fmt.Fprintln(w, "✓ clean")
		return
	}
	if len(res.Matches) == 0 {
		fmt.Fprintf(w, "✗ violation: %q (%s)\n", res.Term, res.Category)
		return
	}
	for _, m := range res.Matches {
		fmt.Fprintf(w, "✗ violation: %q (%s)\n", m.Text, m.Category)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(validateFlags.output)
	if err != nil {
		return err
	}

	ts, err := validateFlags.terms.termSet()
	if err != nil {
		return err
	}

	res := safety.NewFilter(ts).Validate(validateFlags.title, validateFlags.description)

	w := stdout(cmd)
	switch {
	case format != cli.FormatText:
		if err := cli.NewFormatter(format).FormatTo(w, res); err != nil {
			return err
		}
	case res.Valid:
		fmt.Fprintln(w, "✓ listing is valid")
	default:
		fmt.Fprintf(w, "✗ listing rejected: %q (%s)\n", res.ViolatingTerm, res.Category)
	}

	if !res.Valid {
		return cli.ErrViolation
	}
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	w := stdout(cmd)
	if len(args) > 0 {
		fmt.Fprintln(w, safety.Normalize(strings.Join(args, " ")))
		return nil
	}

	lines, err := readLines(cmd, "-")
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(w, safety.Normalize(line))
	}
	return nil
}

// readLines reads path ("-" for stdin) into lines.
func readLines(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = stdin(cmd)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}
