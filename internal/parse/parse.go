// Package parse extracts structured payloads from free-form generated text:
// YAML documents, diff regions, and delimited test/guide blocks.
//
// Precedence is fixed: an explicitly delimited sentinel region wins over a
// language-tagged code fence, which wins over a bare fence, which wins over
// the raw text. Parse failures never propagate; callers always receive a
// usable (possibly empty) value.
package parse

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/conduct/internal/flow"
)

const (
	diffBegin  = "-----BEGIN DIFF-----"
	diffEnd    = "-----END DIFF-----"
	guideBegin = "-----BEGIN TEST_GUIDE-----"
	guideEnd   = "-----END TEST_GUIDE-----"
	testsBegin = "-----BEGIN TESTS-----"
	testsEnd   = "-----END TESTS-----"
)

// Document extracts a YAML document from a ```yaml fence in text. A missing
// fence or malformed YAML yields an empty document, never an error.
func Document(text string) flow.Document {
	body, ok := fencedRegion(text, "```yaml")
	if !ok {
		return flow.Document{}
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		fmt.Fprintf(os.Stderr, "warning: malformed yaml document in response: %v\n", err)
		return flow.Document{}
	}
	if doc == nil {
		return flow.Document{}
	}
	// Responses often wrap the payload in a single top-level key matching
	// the role (plan:, spec:, review:). Unwrap one level when that is the
	// whole document.
	if len(doc) == 1 {
		for _, v := range doc {
			if inner, ok := v.(map[string]any); ok {
				return flow.Document(inner)
			}
		}
	}
	return flow.Document(doc)
}

// Diff extracts a diff payload from text. Sentinel region first, then any
// code fence, then the raw text verbatim as a best-effort diff. Downstream
// application treats unparseable content as a no-op, so garbage in the
// fallback tier is safe.
func Diff(text string) string {
	if body, ok := sentinelRegion(text, diffBegin, diffEnd); ok {
		return body
	}
	if body, ok := fencedRegion(text, "```python"); ok {
		return body
	}
	if body, ok := fencedRegion(text, "```"); ok {
		return body
	}
	return text
}

// TestGuide extracts the tester's guide block, or falls back to a minimal
// default naming the built-in runner.
func TestGuide(text string) string {
	if body, ok := sentinelRegion(text, guideBegin, guideEnd); ok {
		return body
	}
	return "how_to_run: python_test_runner\nnotes:\n  - Basic test execution"
}

// Tests extracts the tester's test bundle: sentinel block first, then the
// same fence fallback chain as Diff.
func Tests(text string) string {
	if body, ok := sentinelRegion(text, testsBegin, testsEnd); ok {
		return body
	}
	return Diff(text)
}

// HowToRun parses the "how_to_run:" line from a test guide. Returns the
// built-in runner name when the guide does not name a command.
func HowToRun(guide string) string {
	for _, line := range strings.Split(guide, "\n") {
		if !strings.Contains(line, "how_to_run:") {
			continue
		}
		_, after, _ := strings.Cut(line, "how_to_run:")
		cmd := strings.TrimSpace(after)
		cmd = strings.Trim(cmd, `"'`)
		if cmd != "" {
			return cmd
		}
	}
	return "python_test_runner"
}

// sentinelRegion returns the trimmed text between begin and end markers.
// Both markers must be present, in order.
func sentinelRegion(text, begin, end string) (string, bool) {
	_, after, found := strings.Cut(text, begin)
	if !found {
		return "", false
	}
	body, _, found := strings.Cut(after, end)
	if !found {
		return "", false
	}
	return strings.TrimSpace(body), true
}

// fencedRegion returns the trimmed text inside the first code fence opened
// by open ("```yaml", "```python", or bare "```").
func fencedRegion(text, open string) (string, bool) {
	idx := strings.Index(text, open)
	if idx < 0 {
		return "", false
	}
	rest := text[idx+len(open):]
	// Skip the remainder of the opening fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && open == "```" {
		// A bare fence may actually carry a language tag; the first line
		// up to the newline belongs to the fence, not the body, when it
		// looks like a tag rather than content.
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine != "" && !strings.ContainsAny(firstLine, " \t") && len(firstLine) <= 16 {
			rest = rest[nl+1:]
		}
	}
	body, _, found := strings.Cut(rest, "```")
	if !found {
		return "", false
	}
	return strings.TrimSpace(body), true
}
