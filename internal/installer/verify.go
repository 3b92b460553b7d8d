package installer

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/report"
)

// runDiagnostic runs bin with no arguments and returns its exit code. A
// nonzero code records exactly one fatal failure and is still returned.
func (i *Installer) runDiagnostic(ctx context.Context, bin, name string, out *report.Outcome) int {
	code, err := i.runner.Run(ctx, bin)
	if err != nil {
		i.logger.Error("diagnostics binary did not start", "path", bin, "error", err)
		out.Fatal(report.StepVerifySDK, fmt.Sprintf("Failed to run %s.", name), err)
		return code
	}

	i.logger.Info(fmt.Sprintf("%s exitCode: %d", name, code), "path", bin)
	if code != 0 {
		out.Fatal(report.StepVerifySDK, fmt.Sprintf("Failed to run %s.", name), &ExitError{Program: bin, Code: code})
	}
	return code
}
