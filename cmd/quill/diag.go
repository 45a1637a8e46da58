package main

import (
	"github.com/spf13/cobra"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] [file.quill|file.qcomp|directory]...",
	Short: "Report diagnostics without writing generated code",
	Long:  `Run the full pipeline over templates and print only their diagnostics`,
	RunE:  runDiagnose,
}

func init() {
	addReportFlags(diagCmd)
}

// runDiagnose compiles args and prints the diagnostics on stdout. It fails
// with errDiagnostics when any of them is an error.
func runDiagnose(cmd *cobra.Command, args []string) error {
	// Ensure trace is dumped on panic
	defer dumpTraceOnPanic()

	report, err := readReportOptions(cmd)
	if err != nil {
		return err
	}
	c, err := runCompilation(cmd, args, string(uiModeOff))
	if err != nil {
		dumpTrace("error")
		return err
	}
	return finishReport(cmd, cmd.OutOrStdout(), c, report)
}
