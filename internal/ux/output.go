package ux

import (
	"fmt"
	"time"
)

// ANSI color helpers
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// RunHeader prints the banner for a new pipeline run.
func RunHeader(runID, goal string) {
	fmt.Printf("\n%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
	fmt.Printf("%s[%s]%s  %sRun %s%s\n", Dim, timestamp(), Reset, Bold, runID, Reset)
	fmt.Printf("%s[%s]%s  %sGoal: %s%s\n", Dim, timestamp(), Reset, Bold, goal, Reset)
	fmt.Printf("%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
}

// StageHeader prints a timestamped stage header with the iteration count.
func StageHeader(name string, iteration int) {
	fmt.Printf("\n%s[%s]%s %s▸ %s%s %s(iteration %d)%s\n",
		Dim, timestamp(), Reset, Bold, name, Reset, Dim, iteration, Reset)
}

// StageResult prints a one-line stage outcome.
func StageResult(name, detail string) {
	fmt.Printf("%s[%s]%s  %s✓ %s%s %s\n",
		Dim, timestamp(), Reset, Green, name, Reset, detail)
}

// StageFail prints a stage failure; the pipeline keeps going with defaults.
func StageFail(name, errMsg string) {
	fmt.Printf("%s[%s]%s  %s✗ %s: %s%s\n",
		Dim, timestamp(), Reset, Red, name, errMsg, Reset)
}

// Decision prints the conductor's routing choice and its rationale.
func Decision(action, rationale string) {
	fmt.Printf("%s[%s]%s  %s⇒ %s%s %s— %s%s\n",
		Dim, timestamp(), Reset, Yellow, action, Reset, Dim, rationale, Reset)
}

// Checkpoint prints a periodic checkpoint notice.
func Checkpoint(reason string) {
	fmt.Printf("%s[%s]%s  %s⚑ checkpoint: %s%s\n",
		Dim, timestamp(), Reset, Cyan, reason, Reset)
}

// FixAttempt prints one auto-fix loop attempt.
func FixAttempt(attempt, max int, summary string) {
	fmt.Printf("%s[%s]%s  %s↺ fix attempt %d/%d%s %s\n",
		Dim, timestamp(), Reset, Yellow, attempt, max, Reset, summary)
}

// ServiceCheck prints a single service probe result.
func ServiceCheck(name, url string, ok bool) {
	mark, color := "✓", Green
	if !ok {
		mark, color = "✗", Red
	}
	fmt.Printf("%s[%s]%s  %s%s %s%s %s%s%s\n",
		Dim, timestamp(), Reset, color, mark, name, Reset, Dim, url, Reset)
}

// Abort prints a fatal pipeline abort.
func Abort(reason string) {
	fmt.Printf("\n%s[%s]%s  %s✗ aborted: %s%s\n",
		Dim, timestamp(), Reset, Red, reason, Reset)
}

// Done prints the terminal banner after the preview stage.
func Done(iterations int, duration time.Duration) {
	m := int(duration.Minutes())
	s := int(duration.Seconds()) % 60
	fmt.Printf("\n%s[%s]%s  %s%s══ Run complete: %d iterations (%dm %02ds) ══%s\n\n",
		Dim, timestamp(), Reset, Bold, Green, iterations, m, s, Reset)
}
