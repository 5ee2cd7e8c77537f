// Package validate runs external project checks (lint, typecheck, build)
// with enforced timeouts. Findings are advisory: a crashed or timed-out
// check degrades to "no errors found" rather than ever blocking the caller.
package validate

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dmelton/plangate/internal/config"
	"github.com/dmelton/plangate/internal/logs"
	"github.com/dmelton/plangate/internal/types"
)

const defaultTimeout = 60 * time.Second

// Result is the outcome of one validation command.
type Result struct {
	Name     string
	OK       bool
	Required bool
	TimedOut bool
	Errors   []string
}

// Runner executes validation commands in the project directory.
type Runner struct {
	dir string
	log *logs.Logger
}

// NewRunner returns a runner rooted at the project directory.
func NewRunner(dir string, log *logs.Logger) *Runner {
	return &Runner{dir: dir, log: log}
}

// Run executes each command in order. Timeouts and spawn failures count as
// OK with no findings.
func (r *Runner) Run(ctx context.Context, cmds []config.ValidationCommand) []Result {
	results := make([]Result, 0, len(cmds))
	for _, vc := range cmds {
		results = append(results, r.runOne(ctx, vc))
	}
	return results
}

func (r *Runner) runOne(ctx context.Context, vc config.ValidationCommand) Result {
	res := Result{Name: vc.Name, Required: vc.Required}

	timeout := defaultTimeout
	if vc.Timeout > 0 {
		timeout = time.Duration(vc.Timeout) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", vc.Command)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()

	if ctx.Err() == context.DeadlineExceeded {
		r.log.Printf("validation %q timed out after %s", vc.Name, timeout)
		res.OK = true
		res.TimedOut = true
		return res
	}
	if err == nil {
		res.OK = true
		return res
	}
	if _, ok := err.(*exec.ExitError); !ok {
		// Could not run the command at all. Degrade to no findings.
		r.log.Printf("validation %q could not run: %v", vc.Name, err)
		res.OK = true
		return res
	}

	res.Errors = ExtractErrors(string(out))
	r.log.Printf("validation %q failed with %d extracted errors", vc.Name, len(res.Errors))
	return res
}

// ChangedFiles returns the files git reports as modified, or nil when git is
// unavailable or slow. Informational only.
func (r *Runner) ChangedFiles(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "diff", "--name-only", "HEAD")
	cmd.Dir = r.dir
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files
}

// ExtractErrors pulls likely error lines out of command output,
// deduplicated and capped at 10.
func ExtractErrors(output string) []string {
	seen := make(map[string]bool)
	var errs []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !looksLikeError(line) {
			continue
		}
		if len(line) > 200 {
			line = line[:200]
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		errs = append(errs, line)
		if len(errs) >= 10 {
			break
		}
	}
	return errs
}

func looksLikeError(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "error:") ||
		strings.Contains(line, "error TS") ||
		(strings.Contains(lower, "error") && strings.Contains(line, ":"))
}

// AppendFixTasks appends one remediation task per failed required check and
// latches validation_failed so the gate does not re-run validation.
// Returns the number of tasks added.
func AppendFixTasks(plan *types.PlanState, results []Result) int {
	added := 0
	for _, res := range results {
		if res.OK || !res.Required || len(res.Errors) == 0 {
			continue
		}
		item := types.TaskItem{
			ID:       plan.NextID(),
			Task:     fmt.Sprintf("Fix %s errors (%d issues)", res.Name, len(res.Errors)),
			Status:   types.StatusPending,
			AddedBy:  "validator",
			Severity: "high",
			Errors:   capStrings(res.Errors, 5),
		}
		plan.Items = append(plan.Items, item)
		added++
	}
	if added > 0 {
		plan.ValidationFailed = true
	}
	return added
}

func capStrings(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}
