package render

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"geodigest/internal/core"
)

// ArtifactName returns the file name of a rendered digest, for example
// daily_digest_2025-10-13.html
func ArtifactName(v core.Variant, date time.Time) string {
	return fmt.Sprintf("%s_digest_%s.html", v, date.Format("2006-01-02"))
}

// WriteDigestToFile writes the provided content to a file in the specified directory
func WriteDigestToFile(content, outputDir, filename string) (string, error) {
	if outputDir == "" {
		outputDir = "digests" // Default output directory
	}

	err := os.MkdirAll(outputDir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, filename)

	err = os.WriteFile(filePath, []byte(content), 0644)
	if err != nil {
		return "", fmt.Errorf("failed to write digest file %s: %w", filePath, err)
	}

	return filePath, nil
}
