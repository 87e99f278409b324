// Package output prints colorized console reports for sampling runs and
// marginal queries.
package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// RunSummary aggregates a sampling run for reporting.
type RunSummary struct {
	Network     string
	Samples     int
	MeanLogProb float64
	MinLogProb  float64
	MaxLogProb  float64
}

// PrintRunReport prints a formatted summary of a sampling run.
func PrintRunReport(summary RunSummary) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	bold.Println("Bayesnet - Sampling Report")
	bold.Println("==========================")
	fmt.Printf("Network:\n%s\n", summary.Network)
	fmt.Printf("Samples: %d\n", summary.Samples)
	cyan.Printf("Mean log probability: %.4f\n", summary.MeanLogProb)
	fmt.Printf("Min log probability:  %.4f\n", summary.MinLogProb)
	fmt.Printf("Max log probability:  %.4f\n", summary.MaxLogProb)
	fmt.Println()
}

// PrintMarginal prints a marginal distribution as a colorized bar table.
func PrintMarginal(query, evidence string, marginal map[float64]float64) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if evidence != "" {
		bold.Printf("P(%s | %s):\n", query, evidence)
	} else {
		bold.Printf("P(%s):\n", query)
	}

	values := make([]float64, 0, len(marginal))
	for value := range marginal {
		values = append(values, value)
	}
	sort.Float64s(values)

	for _, value := range values {
		prob := marginal[value]
		bar := strings.Repeat("#", int(prob*40+0.5))
		line := green
		if prob < 0.5 {
			line = yellow
		}
		line.Printf("  %s = %g: %6.4f %s\n", query, value, prob, bar)
	}
	fmt.Println()
}
