/*
Package cli provides command-line interface utilities for the trustcore
command.

Output Formatting:

Results are printed as text, JSON, or CSV. Tabular results implement Table:

	formatter := cli.NewFormatter(cli.FormatCSV)
	if err := formatter.FormatTo(os.Stdout, results); err != nil {
		return err
	}

Progress Reporting:

Batch checks report progress on stderr so stdout stays machine-readable:

	progress := cli.NewProgressReporter(os.Stderr, "lines")
	progress.Start(int64(len(lines)))
	for i, line := range lines {
		check(line)
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Exit Codes:

ExitCode maps command errors to process exit codes: 0 on success, 1 when
prohibited content was found (ErrViolation), 2 for configuration errors,
and 3 for any other failure.

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
