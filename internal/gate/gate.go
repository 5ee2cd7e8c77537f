// Package gate is the single authority over termination attempts. It is
// evaluated fresh on every attempt; the per-session stop-attempt counter is
// the only state it persists. The gate fails open: any internal problem
// allows the stop, because this system must never make a session unkillable.
package gate

import (
	"fmt"
	"os"
	"strings"

	"github.com/dmelton/plangate/internal/config"
	"github.com/dmelton/plangate/internal/logs"
	"github.com/dmelton/plangate/internal/session"
	"github.com/dmelton/plangate/internal/store"
	"github.com/dmelton/plangate/internal/types"
)

// transcriptTailBytes bounds how much recent conversation is scanned for
// override phrases.
const transcriptTailBytes = 5000

// overridePhrases allow the user to stop regardless of incomplete items.
// Matched case-insensitively as substrings of the transcript tail.
var overridePhrases = []string{
	"/force-stop",
	"/force stop",
	"force stop",
	"stop anyway",
	"ignore incomplete",
	"skip verification",
	"let me stop",
}

// Reason classifies why the gate decided the way it did.
type Reason string

const (
	ReasonDisabled       Reason = "disabled"
	ReasonOverride       Reason = "override"
	ReasonLoopPrevention Reason = "loop_prevention"
	ReasonNoPlan         Reason = "no_plan"
	ReasonComplete       Reason = "complete"
	ReasonIncomplete     Reason = "incomplete"
)

// Decision is the gate's verdict on one stop attempt.
type Decision struct {
	Allow           bool
	Reason          Reason
	Message         string
	Plan            *types.PlanState
	TotalActionable int
	Incomplete      []types.TaskItem
	NextTask        string
	Attempts        int
}

// Gate evaluates stop attempts against the resolved plan.
type Gate struct {
	store    store.Store
	resolver *session.Resolver
	cfg      *config.Config
	log      *logs.Logger
}

// New builds a gate.
func New(s store.Store, resolver *session.Resolver, cfg *config.Config, log *logs.Logger) *Gate {
	return &Gate{store: s, resolver: resolver, cfg: cfg, log: log}
}

// Evaluate decides whether the session may stop. It never returns an error;
// every failure path resolves to an allowing decision.
func (g *Gate) Evaluate(sessionID, transcriptPath string) Decision {
	if !g.cfg.Enabled {
		return Decision{Allow: true, Reason: ReasonDisabled}
	}

	if phrase := g.findOverride(transcriptPath); phrase != "" {
		g.log.Printf("session %s: override %q detected, allowing stop", sessionID, phrase)
		g.store.ClearStopAttempts(sessionID)
		return Decision{
			Allow:   true,
			Reason:  ReasonOverride,
			Message: "Force stop acknowledged. Stopping with incomplete items.",
		}
	}

	attempts := g.store.IncrementStopAttempts(sessionID)
	if attempts >= g.cfg.MaxStopAttempts {
		g.log.Printf("session %s: allowed after %d blocked attempts (loop prevention)", sessionID, attempts)
		g.store.ClearStopAttempts(sessionID)
		return Decision{
			Allow:    true,
			Reason:   ReasonLoopPrevention,
			Attempts: attempts,
			Message:  fmt.Sprintf("Allowed stop after %d blocked attempts to prevent an infinite loop.", attempts),
		}
	}

	plan, isFallback := g.resolver.Resolve(sessionID)
	if plan == nil || len(plan.Items) == 0 {
		g.store.ClearStopAttempts(sessionID)
		return Decision{Allow: true, Reason: ReasonNoPlan}
	}
	if isFallback {
		g.log.Printf("session %s: gating against fallback plan from %s", sessionID, plan.SessionID)
	}

	incomplete := plan.IncompleteItems()
	_, total := plan.Progress()

	if len(incomplete) == 0 {
		g.log.Printf("session %s: all %d plan items complete, allowing stop", sessionID, total)
		g.store.ClearStopAttempts(sessionID)
		return Decision{
			Allow:           true,
			Reason:          ReasonComplete,
			Plan:            plan,
			TotalActionable: total,
			Message:         g.completionNote(sessionID, total),
		}
	}

	g.log.Printf("session %s: blocking stop, %d/%d items incomplete (attempt %d)", sessionID, len(incomplete), total, attempts)
	return Decision{
		Allow:           false,
		Reason:          ReasonIncomplete,
		Plan:            plan,
		TotalActionable: total,
		Incomplete:      incomplete,
		NextTask:        incomplete[0].Task,
		Attempts:        attempts,
		Message:         denyMessage(incomplete, total),
	}
}

// completionNote surfaces any pending validation warnings from the
// reconciler. Informational only; it never changes the allow decision.
func (g *Gate) completionNote(sessionID string, total int) string {
	base := fmt.Sprintf("All %d plan items completed.", total)

	if w := g.store.TakeWarnings(sessionID); w != nil && len(w.Errors) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n\nNote: validation warnings detected:\n", base)
		for i, e := range w.Errors {
			if i >= 5 {
				break
			}
			if len(e) > 80 {
				e = e[:80]
			}
			fmt.Fprintf(&b, "  - %s\n", e)
		}
		b.WriteString("\nThe stop is allowed, but consider fixing these issues.")
		return b.String()
	}

	return base
}

func denyMessage(incomplete []types.TaskItem, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "STOP BLOCKED: %d of %d plan items incomplete.\n\nRemaining items:\n", len(incomplete), total)
	for i, item := range incomplete {
		if i >= 10 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(incomplete)-10)
			break
		}
		fmt.Fprintf(&b, "  - [ ] %s\n", item.Task)
	}
	fmt.Fprintf(&b, "\nNEXT TASK: %q\n\nContinue working, or say \"force stop\" to stop anyway.", incomplete[0].Task)
	return b.String()
}

// findOverride returns the matched phrase, or "" when none is present in
// the transcript tail. Unreadable transcripts read as no override.
func (g *Gate) findOverride(transcriptPath string) string {
	if transcriptPath == "" {
		return ""
	}
	tail, err := readTail(transcriptPath, transcriptTailBytes)
	if err != nil {
		return ""
	}
	lower := strings.ToLower(tail)
	for _, phrase := range overridePhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}

func readTail(path string, n int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := info.Size()
	offset := int64(0)
	if size > n {
		offset = size - n
	}
	buf := make([]byte, size-offset)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return "", err
	}
	return string(buf), nil
}
