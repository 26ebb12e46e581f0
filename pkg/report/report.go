// Package report aggregates per-plugin resolution results into the scan
// report consumed by downstream tooling. The JSON document is the tool's
// output contract; the table format is a convenience for humans.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugscan/pkg/resolver"
)

// PluginReport is the resolution outcome for one scanned plugin. Error is
// set when the plugin's manifest could not be loaded; in that case Results
// is empty.
type PluginReport struct {
	Plugin       string            `json:"plugin"`
	ManifestPath string            `json:"manifestPath,omitempty"`
	Error        string            `json:"error,omitempty"`
	Results      []resolver.Result `json:"results"`
}

// ScanReport is the consolidated output of one scan run. It carries no
// timestamp so that reruns against an unchanged environment are
// byte-identical.
type ScanReport struct {
	SatisfiedCount int            `json:"satisfiedCount"`
	MissingCount   int            `json:"missingCount"`
	MismatchCount  int            `json:"mismatchCount"`
	Plugins        []PluginReport `json:"plugins"`
}

// Build assembles a ScanReport from per-plugin reports, computing the
// summary counts.
func Build(plugins []PluginReport) *ScanReport {
	r := &ScanReport{
		Plugins: plugins,
	}
	if r.Plugins == nil {
		r.Plugins = []PluginReport{}
	}

	for _, p := range plugins {
		for _, result := range p.Results {
			switch result.Status {
			case resolver.StatusSatisfied:
				r.SatisfiedCount++
			case resolver.StatusMissing:
				r.MissingCount++
			case resolver.StatusMismatch:
				r.MismatchCount++
			}
		}
	}
	return r
}

// WriteJSON writes the report as indented JSON.
func (r *ScanReport) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return errors.Wrap(err, "failed to encode scan report")
	}
	return nil
}

// WriteTable writes a human-readable rendering of the report.
func (r *ScanReport) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLUGIN\tDEPENDENCY\tKIND\tREQUIRED\tDECLARED\tINSTALLED\tSTATUS")
	fmt.Fprintln(tw, "------\t----------\t----\t--------\t--------\t---------\t------")

	for _, p := range r.Plugins {
		if p.Error != "" {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\terror: %s\n", p.Plugin, p.Error)
			continue
		}
		for _, result := range p.Results {
			installed := "-"
			if result.InstalledVersion != nil {
				installed = *result.InstalledVersion
			}
			required := "no"
			if result.Required {
				required = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				p.Plugin, result.Name, result.Kind, required,
				result.DeclaredRange, installed, result.Status)
		}
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "failed to render scan report table")
	}

	fmt.Fprintf(w, "\nsatisfied: %d, missing: %d, version-mismatch: %d\n",
		r.SatisfiedCount, r.MissingCount, r.MismatchCount)
	return nil
}
