// Package observability provides the leveled reporters injected into the
// drivers and the change-application engine.
//
// Two implementations exist: ActionsReporter speaks GitHub Actions workflow
// commands so warnings, errors, and the final summary surface as annotations
// on the run; HumanReporter writes plain leveled lines for local use.
package observability

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ActionsReporter emits GitHub Actions workflow commands.
type ActionsReporter struct {
	out io.Writer
}

// NewActionsReporter creates a reporter writing to the given stream,
// normally the job's stdout.
func NewActionsReporter(out io.Writer) *ActionsReporter {
	return &ActionsReporter{out: out}
}

// LogInfo writes a plain log line; Actions has no info annotation level.
func (r *ActionsReporter) LogInfo(_ context.Context, message string, fields map[string]interface{}) {
	fmt.Fprintln(r.out, formatMessage(message, fields))
}

// LogWarning emits a warning annotation.
func (r *ActionsReporter) LogWarning(_ context.Context, message string, fields map[string]interface{}) {
	fmt.Fprintf(r.out, "::warning::%s\n", escapeData(formatMessage(message, fields)))
}

// LogError emits an error annotation.
func (r *ActionsReporter) LogError(_ context.Context, message string, fields map[string]interface{}) {
	fmt.Fprintf(r.out, "::error::%s\n", escapeData(formatMessage(message, fields)))
}

// LogNotice emits a notice annotation, used for run summaries.
func (r *ActionsReporter) LogNotice(_ context.Context, message string, fields map[string]interface{}) {
	fmt.Fprintf(r.out, "::notice::%s\n", escapeData(formatMessage(message, fields)))
}

// HumanReporter writes leveled lines for terminal use.
type HumanReporter struct {
	out io.Writer
}

// NewHumanReporter creates a reporter writing to the given stream,
// normally stderr.
func NewHumanReporter(out io.Writer) *HumanReporter {
	return &HumanReporter{out: out}
}

func (r *HumanReporter) LogInfo(_ context.Context, message string, fields map[string]interface{}) {
	fmt.Fprintf(r.out, "[INFO] %s\n", formatMessage(message, fields))
}

func (r *HumanReporter) LogWarning(_ context.Context, message string, fields map[string]interface{}) {
	fmt.Fprintf(r.out, "[WARN] %s\n", formatMessage(message, fields))
}

func (r *HumanReporter) LogError(_ context.Context, message string, fields map[string]interface{}) {
	fmt.Fprintf(r.out, "[ERROR] %s\n", formatMessage(message, fields))
}

func (r *HumanReporter) LogNotice(_ context.Context, message string, fields map[string]interface{}) {
	fmt.Fprintf(r.out, "[NOTICE] %s\n", formatMessage(message, fields))
}

// formatMessage appends fields as sorted key=value pairs so output is
// stable across runs.
func formatMessage(message string, fields map[string]interface{}) string {
	if len(fields) == 0 {
		return message
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, fields[k]))
	}

	return message + " (" + strings.Join(pairs, " ") + ")"
}

// escapeData escapes annotation payloads per the workflow command format.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
