package typegen

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/teranos/pxdgen/errors"
)

// Expected is a file as generation would write it.
type Expected struct {
	Path    string
	Content []byte
}

// CheckResult holds the result of a check run
type CheckResult struct {
	UpToDate    bool     `json:"up_to_date"`
	Differences []string `json:"differences,omitempty"` // paths that differ, annotated when missing or unreadable
}

// Err returns nil when everything is up to date, or an ErrOutOfDate error
// listing the differing files.
func (r *CheckResult) Err() error {
	if r.UpToDate {
		return nil
	}
	err := errors.Wrapf(errors.ErrOutOfDate, "%d file(s) differ: %s",
		len(r.Differences), strings.Join(r.Differences, ", "))
	return errors.WithHint(err, "run 'pxdgen generate' to regenerate")
}

// CompareOutputs compares freshly generated content with the files on
// disk. Banner lines are ignored so a version bump alone is not a change.
func CompareOutputs(expected []Expected) *CheckResult {
	var diffs []string
	for _, e := range expected {
		existing, err := os.ReadFile(e.Path)
		switch {
		case os.IsNotExist(err):
			diffs = append(diffs, e.Path+" (missing)")
		case err != nil:
			diffs = append(diffs, e.Path+" (error: "+err.Error()+")")
		case filterMetadataLines(existing) != filterMetadataLines(e.Content):
			diffs = append(diffs, e.Path)
		}
	}
	return &CheckResult{
		UpToDate:    len(diffs) == 0,
		Differences: diffs,
	}
}

// filterMetadataLines removes banner lines from content.
// Returns empty string if scanner encounters an error.
func filterMetadataLines(content []byte) string {
	var result strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), MetadataPrefix) {
			continue
		}
		result.WriteString(line)
		result.WriteString("\n")
	}

	// A scan failure yields "", which never equals real content
	if err := scanner.Err(); err != nil {
		return ""
	}

	return result.String()
}
