package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/apiconsole/internal/executor"
	"github.com/studiowebux/apiconsole/internal/filter"
	"github.com/studiowebux/apiconsole/internal/telemetry"
	"github.com/studiowebux/apiconsole/internal/types"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorBold   = "\x1b[1m"
)

func getStatusColor(status types.Status) string {
	switch executor.StatusClass(status) {
	case "failed":
		return colorRed
	case "warning":
		return colorYellow
	default:
		return colorGreen
	}
}

// Printer writes command results in the selected format. A non-empty Query
// is a JMESPath expression applied to the structured value first; a query
// always produces structured output.
type Printer struct {
	Out    io.Writer
	Format string
	Query  string
	Color  bool
}

// structured reports whether v should be marshalled rather than drawn as text
func (p Printer) structured() bool {
	return p.Format == FormatJSON || p.Format == FormatYAML || p.Query != ""
}

// Print marshals v, or calls text for the text format
func (p Printer) Print(v any, text func(w io.Writer)) error {
	if !p.structured() {
		text(p.Out)
		return nil
	}

	var out any = v
	if p.Query != "" {
		res, err := filter.Value(v, p.Query)
		if err != nil {
			return err
		}
		out = res
	}

	if p.Format == FormatYAML {
		// Round-trip through JSON so YAML keys follow the JSON tags
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Out, string(data))
	return err
}

func (p Printer) paint(color, s string) string {
	if !p.Color {
		return s
	}
	return color + s + colorReset
}

// Outcome prints one dispatch result. showFull adds the response headers.
func (p Printer) Outcome(o types.TestOutcome, showFull bool) error {
	return p.Print(o, func(w io.Writer) {
		var sb strings.Builder

		sb.WriteString(p.paint(getStatusColor(o.Status), fmt.Sprintf("%s %s -> %s", o.Method, o.URL, o.Status)))
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "Duration: %s | Size: %s\n",
			executor.FormatDuration(o.ResponseTime),
			executor.FormatSize(int64(o.ResponseSize)))

		if o.Failed() {
			fmt.Fprintf(&sb, "\n%s\n", p.paint(colorRed, "Error: "+o.ErrorDetail))
			io.WriteString(w, sb.String())
			return
		}

		if showFull && len(o.Headers) > 0 {
			sb.WriteString("\nHeaders:\n")
			for _, k := range sortedKeys(o.Headers) {
				fmt.Fprintf(&sb, "  %s: %s\n", k, o.Headers[k])
			}
		}

		if o.Body != "" {
			if showFull {
				sb.WriteString("\nBody:\n")
			} else {
				sb.WriteString("\n")
			}
			sb.WriteString(o.Body)
			sb.WriteString("\n")
		}
		io.WriteString(w, sb.String())
	})
}

// Endpoints prints descriptors grouped by owner in first-seen order
func (p Printer) Endpoints(eps []types.EndpointDescriptor) error {
	return p.Print(eps, func(w io.Writer) {
		owner := ""
		for _, e := range eps {
			if e.Owner != owner {
				if owner != "" {
					fmt.Fprintln(w)
				}
				owner = e.Owner
				fmt.Fprintln(w, p.paint(colorBold, owner))
			}
			line := fmt.Sprintf("  %-7s %-40s %s", e.Method, e.PrimaryPath(), e.OperationName)
			if e.Deprecated {
				line += p.paint(colorYellow, " (deprecated)")
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintf(w, "\n%d endpoints\n", len(eps))
	})
}

// Environments prints the backend environment registry
func (p Printer) Environments(cfg types.EnvironmentConfig) error {
	return p.Print(cfg, func(w io.Writer) {
		names := make([]string, 0, len(cfg.Environments))
		for name := range cfg.Environments {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			env := cfg.Environments[name]
			fmt.Fprintf(w, "%-10s %-40s %s\n", name, env.BaseURL, env.Description)
		}
		if len(cfg.DefaultHeaders) > 0 {
			fmt.Fprintln(w, "\nDefault headers:")
			for _, k := range sortedKeys(cfg.DefaultHeaders) {
				fmt.Fprintf(w, "  %s: %s\n", k, cfg.DefaultHeaders[k])
			}
		}
		if cfg.ReadTimeout > 0 {
			fmt.Fprintf(w, "\nRead timeout: %s\n", cfg.ReadTimeout)
		}
	})
}

// TelemetryReport is the marshalled form of a telemetry snapshot
type TelemetryReport struct {
	Performance telemetry.PerformanceView `json:"performance"`
	Cache       telemetry.CacheView       `json:"cache"`
	Health      telemetry.HealthView      `json:"health"`
	Alerts      telemetry.AlertView       `json:"alerts"`
	Errors      map[string]string         `json:"errors,omitempty"`
}

// NewTelemetryReport flattens section errors into strings
func NewTelemetryReport(s telemetry.Snapshot) TelemetryReport {
	r := TelemetryReport{
		Performance: s.Performance,
		Cache:       s.Cache,
		Health:      s.Health,
		Alerts:      s.Alerts,
	}
	if len(s.Errors) > 0 {
		r.Errors = make(map[string]string, len(s.Errors))
		for k, err := range s.Errors {
			r.Errors[k] = err.Error()
		}
	}
	return r
}

// Telemetry prints the four telemetry sections
func (p Printer) Telemetry(s telemetry.Snapshot) error {
	report := NewTelemetryReport(s)
	return p.Print(report, func(w io.Writer) {
		section := func(name, key string, available bool, body func()) {
			fmt.Fprintln(w, p.paint(colorBold, name))
			switch {
			case report.Errors[key] != "":
				fmt.Fprintln(w, p.paint(colorRed, "  unavailable: "+report.Errors[key]))
			case !available:
				fmt.Fprintln(w, "  no data")
			default:
				body()
			}
			fmt.Fprintln(w)
		}

		section("Health", telemetry.SectionHealth, report.Health.Available, func() {
			fmt.Fprintf(w, "  Status: %s (score %.0f)\n", report.Health.Status, report.Health.Score)
			fmt.Fprintf(w, "  Alerts: %d\n", report.Health.AlertsTotal)
		})
		section("Performance", telemetry.SectionPerformance, report.Performance.Available, func() {
			perf := report.Performance
			fmt.Fprintf(w, "  Requests: %d total, %d ok, %d errors\n", perf.TotalRequests, perf.SuccessfulRequests, perf.ErrorRequests)
			fmt.Fprintf(w, "  Average response: %s\n", perf.AverageResponse)
			fmt.Fprintf(w, "  Active connections: %d\n", perf.ActiveConnections)
			if perf.HasSystem {
				fmt.Fprintf(w, "  Heap: %s (%s)  Load: %s  Threads: %s\n", perf.HeapUsage, perf.HeapDetails, perf.SystemLoad, perf.Threads)
			}
			for _, row := range perf.Endpoints {
				fmt.Fprintf(w, "    %-40s %6d req  %5.1f%% err  %7.1fms avg\n", row.Path, row.Requests, row.ErrorRate, row.AvgTime)
			}
		})
		section("Cache", telemetry.SectionCache, report.Cache.Available, func() {
			fmt.Fprintf(w, "  Usage: %s (%s)\n", report.Cache.Usage, report.Cache.Details)
			fmt.Fprintf(w, "  TTL: %s\n", report.Cache.TTL)
		})
		section("Alerts", telemetry.SectionAlerts, report.Alerts.Available, func() {
			fmt.Fprintf(w, "  Total: %d  Critical: %d  Warning: %d\n", report.Alerts.Total, report.Alerts.Critical, report.Alerts.Warning)
			for _, sc := range report.Alerts.Statuses {
				fmt.Fprintf(w, "    %-12s %d\n", sc.Status, sc.Count)
			}
		})
	})
}

// Templates prints saved request templates
func (p Printer) Templates(list []types.RequestTemplate) error {
	return p.Print(list, func(w io.Writer) {
		if len(list) == 0 {
			fmt.Fprintln(w, "No saved templates")
			return
		}
		for _, t := range list {
			fmt.Fprintf(w, "%s  %s  %s\n", t.ID, t.Timestamp.Local().Format("2006-01-02 15:04"), t.Name)
		}
	})
}

// ServerTest prints the backend's server-side test result
func (p Printer) ServerTest(r types.ServerTestResult) error {
	return p.Print(r, func(w io.Writer) {
		status := types.StatusCode(r.StatusCode)
		verdict := "passed"
		if !r.Success {
			status = types.StatusFailed
			verdict = "failed"
		}
		fmt.Fprintln(w, p.paint(getStatusColor(status), fmt.Sprintf("Server test %s: %d in %s", verdict, r.StatusCode, executor.FormatDuration(r.Duration))))
		if r.ErrorMessage != "" {
			fmt.Fprintln(w, p.paint(colorRed, "Error: "+r.ErrorMessage))
		}
		if r.ResponseBody != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, executor.PrettyBody([]byte(r.ResponseBody)))
		}
	})
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
