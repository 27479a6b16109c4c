package main

import (
	"fmt"
	"io"

	"github.com/sibexico/HexFrames/vmem"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// policyReport is the printed outcome of one policy
type policyReport struct {
	Name         string     `json:"name"`
	Stats        vmem.Stats `json:"stats"`
	HitRate      float64    `json:"hit_rate"`
	Steals       uint64     `json:"steals"`
	Halts        uint64     `json:"halts"`
	Deferrals    uint64     `json:"deferrals"`
	PeakResident uint64     `json:"peak_resident"`
	ElapsedMs    int64      `json:"elapsed_ms"`
	Faults       []int      `json:"faults,omitempty"`
}

// runReport is the full output of a run
type runReport struct {
	MemorySize int                  `json:"memory_size"`
	PFF        vmem.PFFConfig       `json:"pff"`
	WSS        vmem.WSSConfig       `json:"wss"`
	Workload   vmem.WorkloadSummary `json:"workload"`
	Results    []policyReport       `json:"results"`
}

func newRunReport(cfg *vmem.Config, summary vmem.WorkloadSummary, results []vmem.Result, withFaults bool) runReport {
	report := runReport{
		MemorySize: cfg.MemorySize,
		PFF:        cfg.PFF,
		WSS:        cfg.WSS,
		Workload:   summary,
		Results:    make([]policyReport, len(results)),
	}
	for i, r := range results {
		pr := policyReport{
			Name:      r.Name,
			Stats:     r.Stats,
			ElapsedMs: r.Elapsed.Milliseconds(),
		}
		if r.Metrics != nil {
			pr.HitRate = r.Metrics.GetHitRate()
			pr.Steals = r.Metrics.GetSteals()
			pr.Halts = r.Metrics.GetHalts()
			pr.Deferrals = r.Metrics.GetDeferrals()
			pr.PeakResident = r.Metrics.GetPeakResident()
		}
		if withFaults {
			pr.Faults = r.Faults
		}
		report.Results[i] = pr
	}
	return report
}

// writeReport prints the report with French digit grouping on counts
func writeReport(w io.Writer, report runReport) {
	p := message.NewPrinter(language.French)

	fmt.Fprintln(w)
	p.Fprintf(w, "Processes count: %d\n", report.Workload.Processes)
	p.Fprintf(w, "Memory size: %d\n", report.MemorySize)
	p.Fprintf(w, "Amount of pages: %d\n", report.Workload.Pages)
	fmt.Fprintln(w)

	for _, r := range report.Results {
		fmt.Fprintf(w, "Name: %s\n", r.Name)
		p.Fprintf(w, "Total: %d\n", r.Stats.Sum)
		fmt.Fprintf(w, "Mean: %.2f\n", r.Stats.Mean)
		p.Fprintf(w, "Median: %d\n", r.Stats.Median)
		fmt.Fprintf(w, "Standard deviation (population): %.2f\n", r.Stats.StdDev)
		fmt.Fprintf(w, "Variance (population): %.2f\n", r.Stats.Variance)
		p.Fprintf(w, "Min: %d\n", r.Stats.Min)
		p.Fprintf(w, "Max: %d\n", r.Stats.Max)
		fmt.Fprintf(w, "95th percentile: %.2f\n", r.Stats.P95)
		if verbose {
			fmt.Fprintf(w, "Hit rate: %.2f%%\n", r.HitRate*100)
			p.Fprintf(w, "Steals: %d\n", r.Steals)
			p.Fprintf(w, "Halts: %d\n", r.Halts)
			p.Fprintf(w, "Deferrals: %d\n", r.Deferrals)
			p.Fprintf(w, "Peak resident: %d\n", r.PeakResident)
			fmt.Fprintf(w, "Elapsed: %dms\n", r.ElapsedMs)
		}
		fmt.Fprintln(w)
	}
}
