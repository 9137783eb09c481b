package ux

import (
	"fmt"
	"sort"

	"github.com/jorge-barreto/conduct/internal/project"
)

// RenderStatus prints the last run summary for a project directory.
func RenderStatus(dir string, s *project.Summary) {
	fmt.Printf("%sProject:%s %s\n", Bold, Reset, dir)
	fmt.Printf("%sRun:%s     %s\n", Bold, Reset, s.RunID)
	fmt.Printf("%sGoal:%s    %s\n", Bold, Reset, s.Goal)

	if s.Aborted {
		fmt.Printf("%sState:%s   %s%saborted%s — %s\n", Bold, Reset, Red, Bold, Reset, s.AbortReason)
	} else {
		fmt.Printf("%sState:%s   %s%scompleted%s after %d iterations\n",
			Bold, Reset, Green, Bold, Reset, s.Iterations)
	}

	fmt.Printf("\n%sOutcome:%s\n", Bold, Reset)
	fmt.Printf("  kind     %s\n", s.ProjectKind)
	if s.ReviewStatus != "" {
		color := Green
		if s.ReviewStatus != "APPROVED" {
			color = Yellow
		}
		fmt.Printf("  review   %s%s%s\n", color, s.ReviewStatus, Reset)
	}
	if s.TestsRan {
		color, verdict := Green, "passing"
		if s.TestExitCode != 0 {
			color, verdict = Red, fmt.Sprintf("exit %d", s.TestExitCode)
		}
		fmt.Printf("  tests    %s%s%s\n", color, verdict, Reset)
	} else {
		fmt.Printf("  tests    %snot run%s\n", Dim, Reset)
	}
	if s.ProjectKind == "full_stack" {
		color, verdict := Red, "unhealthy"
		if s.ServicesHealthy {
			color, verdict = Green, "healthy"
		}
		fmt.Printf("  services %s%s%s\n", color, verdict, Reset)
	}

	if len(s.PreviewURLs) > 0 {
		fmt.Printf("\n%sPreview:%s\n", Bold, Reset)
		names := make([]string, 0, len(s.PreviewURLs))
		for name := range s.PreviewURLs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-12s %s\n", name, s.PreviewURLs[name])
		}
	}

	if len(s.FilesCreated) > 0 {
		fmt.Printf("\n%sFiles:%s\n", Bold, Reset)
		for _, f := range s.FilesCreated {
			fmt.Printf("  %s\n", f)
		}
	}
	fmt.Println()
}
