/*
Package cli provides command-line interface utilities for Tessera Meridian.

The cli package includes output formatters, progress reporting, and common
CLI helpers used by the meridian command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

CSV output requires the data to implement the Tabular interface so rows and
headers can be derived without reflection.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
