package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jorge-barreto/conduct/internal/flow"
	"github.com/jorge-barreto/conduct/internal/parse"
	"github.com/jorge-barreto/conduct/internal/prompts"
	"github.com/jorge-barreto/conduct/internal/ux"
)

// Review judges the current code against the design and test output. A
// full-stack project whose build never produced code cannot be approved,
// whatever the reviewer says.
func (s *Stages) Review(ctx context.Context, st *flow.State) error {
	text, err := s.rt.Gen.Generate(ctx, map[string]string{
		"system":       prompts.Global,
		"role":         prompts.Reviewer,
		"design":       docYAML(st.Design),
		"code_summary": st.LastChangeSummary,
		"test_output":  testOutputYAML(st.TestOutput),
	})
	if err != nil {
		st.Review = flow.Document{
			"status": string(flow.ReviewChangesRequired),
			"notes":  []any{"Review failed: " + err.Error()},
			"issues": []any{},
		}
		st.ReviewDone = true
		return fmt.Errorf("review: %w", err)
	}

	review := parse.Document(text)
	if review.GetString("status") == "" {
		if strings.Contains(strings.ToLower(text), "approved") {
			review["status"] = string(flow.ReviewApproved)
		} else {
			review["status"] = string(flow.ReviewChangesRequired)
		}
	}
	if _, ok := review["notes"]; !ok {
		review["notes"] = []any{"Review completed"}
	}
	if _, ok := review["issues"]; !ok {
		review["issues"] = []any{}
	}

	if st.ProjectKind == flow.KindFullStack &&
		!st.BuildStatus.CodeGenerated &&
		review.GetString("status") == string(flow.ReviewApproved) {
		review["status"] = string(flow.ReviewChangesRequired)
		issues, _ := review["issues"].([]any)
		review["issues"] = append(issues, map[string]any{
			"id":       "FS1",
			"severity": "blocker",
			"summary":  "Full-stack build incomplete",
			"fix_hint": "Ensure both frontend and backend code are generated",
		})
	}

	st.Review = review
	st.ReviewDone = true
	ux.StageResult("review", review.GetString("status"))
	return nil
}
