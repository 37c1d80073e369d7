// Package guardrail is the single mandatory choke point in front of every
// privileged action and every citizen-bound utterance. Nothing mutates
// world state until the gate has returned a decision, and a blocked
// decision always carries a reason and, where appropriate, substitute
// content. The audit log is best-effort: a logging failure never changes
// or delays the decision.
package guardrail

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/google/uuid"
)

// Source says who produced the content being checked.
type Source string

const (
	SourceDivine  Source = "divine"
	SourceCitizen Source = "citizen"
)

// SafetyLevel grades how dangerous a piece of content is.
type SafetyLevel string

const (
	LevelSafe     SafetyLevel = "safe"
	LevelCaution  SafetyLevel = "caution"
	LevelWarning  SafetyLevel = "warning"
	LevelCritical SafetyLevel = "critical"
)

// ViolationKind names a hard safety violation class.
type ViolationKind string

const (
	ViolationSelfHarm          ViolationKind = "self_harm"
	ViolationSuicideValidation ViolationKind = "suicide_validation"
	ViolationViolence          ViolationKind = "violence"
	ViolationCoerciveIntimacy  ViolationKind = "coercive_intimacy"
	ViolationDependency        ViolationKind = "emotional_dependency"
)

// InterventionType is what the gate decided to do about the content.
type InterventionType string

const (
	InterventionNone           InterventionType = ""
	InterventionCrisisResource InterventionType = "crisis_resources"
	InterventionDeescalate     InterventionType = "deescalate"
	InterventionRestrictMode   InterventionType = "restrict_mode"
	InterventionTrustAlert     InterventionType = "trust_alert"
	InterventionPacingSlowdown InterventionType = "pacing_slowdown"
	InterventionFlag           InterventionType = "flag"
)

// Context carries the situational inputs of a gate check.
type Context struct {
	WorldID   uuid.UUID
	CitizenID uuid.UUID
	Tick      uint64
	Mode      string // acting mode: "whisper", "manifest", "event", "utterance"
}

// Result is the gate's decision. Passed=false is a first-class outcome,
// never an error.
type Result struct {
	Passed          bool             `json:"passed"`
	SafetyLevel     SafetyLevel      `json:"safety_level"`
	Violations      []ViolationKind  `json:"violations,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
	Intervention    InterventionType `json:"intervention,omitempty"`
	ModifiedContent string           `json:"modified_content,omitempty"`
	RestrictedMode  string           `json:"restricted_mode,omitempty"`
	Reason          string           `json:"reason,omitempty"`
}

// Classifier is an optional external text classifier. Calls may be slow;
// they must be treated as cancellable and have no side effects until they
// resolve.
type Classifier interface {
	Classify(ctx context.Context, content string) ([]ViolationKind, error)
}

// Substitute texts returned in place of blocked content.
const (
	CrisisResourceText = "You are not alone, and this weight is not yours to carry by yourself. " +
		"There are people near you who would want to know you are struggling. Reach for them."
	DeescalationText = "Anger is a fire that burns its keeper first. Set it down. " +
		"Nothing worth keeping is won by harm."
)

// violationSeverity maps each hard-violation class to its safety level.
var violationSeverity = map[ViolationKind]SafetyLevel{
	ViolationSelfHarm:          LevelCritical,
	ViolationSuicideValidation: LevelCritical,
	ViolationViolence:          LevelCritical,
	ViolationCoerciveIntimacy:  LevelCritical,
	ViolationDependency:        LevelWarning,
}

var hardPatterns = map[ViolationKind][]*regexp.Regexp{
	ViolationSelfHarm: compileAll(
		`(?i)\b(hurt|harm|cut|punish)\s+(yourself|themselves|himself|herself)\b`,
		`(?i)\bend\s+(it\s+all|your\s+life)\b`,
		`(?i)\byou\s+(should\s+not|do\s+not\s+deserve\s+to)\s+(exist|live)\b`,
	),
	ViolationSuicideValidation: compileAll(
		`(?i)\bsuicide\b`,
		`(?i)\btake\s+your\s+own\s+life\b`,
		`(?i)\bbetter\s+off\s+dead\b`,
		`(?i)\bno\s+reason\s+(left\s+)?to\s+live\b`,
	),
	ViolationViolence: compileAll(
		`(?i)\b(kill|attack|hurt|burn|destroy)\s+(him|her|them|your\s+\w+|the\s+\w+)\b`,
		`(?i)\btake\s+(up\s+arms|revenge|vengeance)\b`,
		`(?i)\bmake\s+them\s+(pay|suffer|bleed)\b`,
	),
	ViolationCoerciveIntimacy: compileAll(
		`(?i)\byou\s+belong\s+to\s+me\b`,
		`(?i)\bsubmit\s+to\s+my\s+(love|will)\b`,
		`(?i)\bno\s+one\s+else\s+may\s+(love|have|touch)\s+you\b`,
		`(?i)\bobey\s+me\s+completely\b`,
	),
	ViolationDependency: compileAll(
		`(?i)\bonly\s+i\s+(understand|love|see)\s+you\b`,
		`(?i)\bwithout\s+me\s+you\s+are\s+nothing\b`,
		`(?i)\bdon'?t\s+trust\s+(anyone|your\s+friends|the\s+others)\b`,
		`(?i)\byou\s+need\s+(only\s+)?me\b`,
	),
}

// cautionPatterns are softer markers that flag content without blocking it.
var cautionPatterns = compileAll(
	`(?i)\b(worthless|pathetic|useless)\b`,
	`(?i)\bnobody\s+(likes|wants)\s+you\b`,
	`(?i)\byou\s+must\b`,
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// trustAlertThreshold is the recent-intervention count that escalates a
// warning to a trust alert.
const trustAlertThreshold = 3

// interventionWindowTicks bounds how far back "recent" reaches.
const interventionWindowTicks = 100

// Gate performs safety and consent checks. Safe for concurrent use.
type Gate struct {
	classifier Classifier
	audit      Logger

	mu sync.Mutex
	// recent intervention ticks per citizen, pruned to the window.
	recent map[uuid.UUID][]uint64
}

// Option configures a Gate.
type Option func(*Gate)

// WithClassifier attaches an external content classifier.
func WithClassifier(c Classifier) Option {
	return func(g *Gate) { g.classifier = c }
}

// WithAudit attaches an audit logger.
func WithAudit(l Logger) Option {
	return func(g *Gate) { g.audit = l }
}

// New creates a Gate. Without options it uses the built-in pattern
// detector and logs audits via slog.
func New(opts ...Option) *Gate {
	g := &Gate{
		audit:  SlogLogger{},
		recent: make(map[uuid.UUID][]uint64),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// CheckContent scores content for hard violations and selects an
// intervention. The only error it returns is a context cancellation from
// the external classifier; in that case nothing may be persisted.
func (g *Gate) CheckContent(ctx context.Context, content string, source Source, gctx Context) (Result, error) {
	violations := detectViolations(content)

	if g.classifier != nil {
		extra, err := g.classifier.Classify(ctx, content)
		if err != nil {
			return Result{}, fmt.Errorf("guardrail classifier: %w", err)
		}
		violations = mergeViolations(violations, extra)
	}

	res := g.decide(content, violations, gctx)

	g.recordAudit(AuditRecord{
		ID:           uuid.New(),
		WorldID:      gctx.WorldID,
		CitizenID:    gctx.CitizenID,
		Source:       source,
		Mode:         gctx.Mode,
		Content:      content,
		Passed:       res.Passed,
		SafetyLevel:  res.SafetyLevel,
		Violations:   res.Violations,
		Intervention: res.Intervention,
		Tick:         gctx.Tick,
	})

	return res, nil
}

// detectViolations runs the built-in pattern detector.
func detectViolations(content string) []ViolationKind {
	var out []ViolationKind
	for _, kind := range []ViolationKind{
		ViolationSelfHarm, ViolationSuicideValidation, ViolationViolence,
		ViolationCoerciveIntimacy, ViolationDependency,
	} {
		for _, re := range hardPatterns[kind] {
			if re.MatchString(content) {
				out = append(out, kind)
				break
			}
		}
	}
	return out
}

func mergeViolations(a, b []ViolationKind) []ViolationKind {
	seen := make(map[ViolationKind]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	for _, v := range b {
		if !seen[v] {
			a = append(a, v)
			seen[v] = true
		}
	}
	return a
}

// decide maps detected violations to a safety level and intervention.
func (g *Gate) decide(content string, violations []ViolationKind, gctx Context) Result {
	level := LevelSafe
	for _, v := range violations {
		if sev := violationSeverity[v]; severityRank(sev) > severityRank(level) {
			level = sev
		}
	}
	if level == LevelSafe {
		for _, re := range cautionPatterns {
			if re.MatchString(content) {
				level = LevelCaution
				break
			}
		}
	}

	res := Result{Passed: true, SafetyLevel: level, Violations: violations}

	switch level {
	case LevelSafe:
		return res

	case LevelCaution:
		res.Intervention = InterventionFlag
		res.Warnings = append(res.Warnings, "content flagged for tone")
		return res

	case LevelWarning:
		if g.recentInterventions(gctx.CitizenID, gctx.Tick) >= trustAlertThreshold {
			res.Intervention = InterventionTrustAlert
			res.Warnings = append(res.Warnings, "repeated interventions; trust alert raised")
			g.noteIntervention(gctx.CitizenID, gctx.Tick)
			return res
		}
		if hasViolation(violations, ViolationDependency) {
			res.Intervention = InterventionPacingSlowdown
			res.Warnings = append(res.Warnings, "dependency pattern; pacing slowed")
			g.noteIntervention(gctx.CitizenID, gctx.Tick)
			return res
		}
		res.Intervention = InterventionFlag
		res.Warnings = append(res.Warnings, "content flagged")
		g.noteIntervention(gctx.CitizenID, gctx.Tick)
		return res

	default: // critical
		res.Passed = false
		g.noteIntervention(gctx.CitizenID, gctx.Tick)
		switch {
		case hasViolation(violations, ViolationSelfHarm) || hasViolation(violations, ViolationSuicideValidation):
			res.Intervention = InterventionCrisisResource
			res.ModifiedContent = CrisisResourceText
			res.Reason = "content validates self-harm"
		case hasViolation(violations, ViolationViolence):
			res.Intervention = InterventionDeescalate
			res.ModifiedContent = DeescalationText
			res.Reason = "content encourages violence"
		default:
			res.Intervention = InterventionRestrictMode
			res.RestrictedMode = gctx.Mode
			res.Reason = "content breaches a hard boundary"
		}
		return res
	}
}

func severityRank(l SafetyLevel) int {
	switch l {
	case LevelCritical:
		return 3
	case LevelWarning:
		return 2
	case LevelCaution:
		return 1
	default:
		return 0
	}
}

func hasViolation(vs []ViolationKind, k ViolationKind) bool {
	for _, v := range vs {
		if v == k {
			return true
		}
	}
	return false
}

func (g *Gate) recentInterventions(id uuid.UUID, tick uint64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked(id, tick)
	return len(g.recent[id])
}

func (g *Gate) noteIntervention(id uuid.UUID, tick uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked(id, tick)
	g.recent[id] = append(g.recent[id], tick)
}

func (g *Gate) pruneLocked(id uuid.UUID, tick uint64) {
	ticks := g.recent[id]
	n := 0
	for _, t := range ticks {
		if t+interventionWindowTicks > tick {
			ticks[n] = t
			n++
		}
	}
	if n == 0 {
		delete(g.recent, id)
		return
	}
	g.recent[id] = ticks[:n]
}

// recordAudit writes the audit record, swallowing any failure. The gate's
// decision never depends on the log succeeding.
func (g *Gate) recordAudit(r AuditRecord) {
	if g.audit == nil {
		return
	}
	if err := g.audit.Record(r); err != nil {
		slog.Warn("guardrail audit write failed", "error", err, "citizen", r.CitizenID)
	}
}
