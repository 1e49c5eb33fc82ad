package plan

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	reportEncodingErrorTemplateConstant = "unable to encode migration report: %w"
	reportWriteErrorTemplateConstant    = "unable to write migration report: %w"
	reportFilePermissionsConstant       = 0o644
	reportIndentConstant                = "  "
)

// WriteReport persists the plans as an indented JSON array at reportPath.
func WriteReport(reportPath string, migrationPlans []MigrationPlan) error {
	encodedReport, encodingError := json.MarshalIndent(migrationPlans, "", reportIndentConstant)
	if encodingError != nil {
		return fmt.Errorf(reportEncodingErrorTemplateConstant, encodingError)
	}

	if writeError := os.WriteFile(reportPath, encodedReport, reportFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, writeError)
	}

	return nil
}
