package parser

import (
	"fmt"
	"strings"

	"github.com/angelsen/ry-tool/pkg/logger"
)

var yamlErrorLog = logger.New("parser:yaml_error")

// ExtractYAMLError extracts line and column information from YAML parsing errors.
// contentLineOffset is the line number where the YAML content begins in the
// surrounding file (1-based), for callers that embed YAML in a larger document.
func ExtractYAMLError(err error, contentLineOffset int) (line int, column int, message string) {
	yamlErrorLog.Printf("Extracting YAML error information: offset=%d", contentLineOffset)
	errStr := err.Error()

	// goccy/go-yaml reports positions as "[line:column] message"
	line, column, message = extractFromGoccyFormat(errStr, contentLineOffset)
	if line > 0 || column > 0 {
		yamlErrorLog.Printf("Extracted error location: line=%d, column=%d", line, column)
		return line, column, message
	}

	yamlErrorLog.Print("No location found in YAML error")
	return 0, 0, firstErrorLine(errStr)
}

// extractFromGoccyFormat extracts line/column from goccy/go-yaml's [line:column] message format
func extractFromGoccyFormat(errStr string, contentLineOffset int) (line int, column int, message string) {
	start := strings.Index(errStr, "[")
	end := strings.Index(errStr, "]")
	if start < 0 || end <= start {
		return 0, 0, ""
	}

	locationPart := errStr[start+1 : end]
	messagePart := strings.TrimSpace(errStr[end+1:])

	lineStr, columnStr, found := strings.Cut(locationPart, ":")
	if !found {
		return 0, 0, ""
	}
	if _, parseErr := fmt.Sscanf(strings.TrimSpace(lineStr), "%d", &line); parseErr != nil {
		return 0, 0, ""
	}
	if _, parseErr := fmt.Sscanf(strings.TrimSpace(columnStr), "%d", &column); parseErr != nil {
		return 0, 0, ""
	}

	// Line numbers in YAML errors are 1-based relative to the YAML content.
	if line > 0 {
		line += contentLineOffset - 1
	}
	if message = firstErrorLine(messagePart); message == "" {
		message = messagePart
	}
	return line, column, message
}

// firstErrorLine trims goccy's source-excerpt block from a message,
// keeping only the diagnostic itself.
func firstErrorLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return strings.TrimSpace(message[:idx])
	}
	return strings.TrimSpace(message)
}
