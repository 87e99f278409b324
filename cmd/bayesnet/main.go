// Command bayesnet is a small experiment harness: it builds the classic
// cloudy/sprinkler/rain/grass network, samples worlds from it, and answers a
// marginal query by exact enumeration.
package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/exp/rand"

	"github.com/probkit/bayesnet/pkg/bayes"
	"github.com/probkit/bayesnet/pkg/config"
	"github.com/probkit/bayesnet/pkg/logging"
	"github.com/probkit/bayesnet/pkg/output"
	"github.com/probkit/bayesnet/pkg/world"
)

func main() {
	flags := pflag.NewFlagSet("bayesnet", pflag.ExitOnError)
	flags.Int("samples", 1000, "Number of worlds to sample")
	flags.Uint64("seed", 42, "Generator seed")
	flags.String("query", "rain", "Node whose marginal to compute")
	flags.String("evidence", "grass_wet=1", "Comma-separated name=value evidence, empty for none")
	flags.Bool("json-logs", false, "Emit JSON logs")
	flags.Bool("verbose", false, "Enable debug logging")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	if cfg.JSONLogs {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}

	runID := uuid.NewString()
	logging.Info("starting run", "run", runID, "samples", cfg.Samples, "seed", cfg.Seed)

	if err := run(cfg); err != nil {
		logging.Error("run failed", "run", runID, "error", err.Error())
		os.Exit(1)
	}
	logging.Info("run complete", "run", runID)
}

func run(cfg *config.Config) error {
	net, err := buildSprinklerNetwork(rand.NewSource(cfg.Seed))
	if err != nil {
		return err
	}

	summary, err := sampleWorlds(net, cfg.Samples)
	if err != nil {
		return err
	}
	output.PrintRunReport(summary)

	query, err := net.FindNode(cfg.Query)
	if err != nil {
		return err
	}
	evidence, err := parseEvidence(net, cfg.Evidence)
	if err != nil {
		return err
	}
	marginal, err := bayes.NewEnumerator(net).Marginalize(evidence, query)
	if err != nil {
		return err
	}
	output.PrintMarginal(cfg.Query, cfg.Evidence, marginal)
	return nil
}

// buildSprinklerNetwork assembles the textbook four-variable network:
// cloudy influences both sprinkler use and rain, either of which wets the
// grass.
func buildSprinklerNetwork(src rand.Source) (*bayes.Network, error) {
	cloudy := bayes.NewTableNode(0, "cloudy", 2, []float64{0.5, 0.5})
	sprinkler := bayes.NewTableNode(1, "sprinkler", 2, []float64{
		0.5, 0.5, // cloudy = 0
		0.9, 0.1, // cloudy = 1
	})
	rain := bayes.NewTableNode(2, "rain", 2, []float64{
		0.8, 0.2, // cloudy = 0
		0.2, 0.8, // cloudy = 1
	})
	grass := bayes.NewTableNode(3, "grass_wet", 2, []float64{
		1.00, 0.00, // sprinkler = 0, rain = 0
		0.10, 0.90, // sprinkler = 0, rain = 1
		0.10, 0.90, // sprinkler = 1, rain = 0
		0.01, 0.99, // sprinkler = 1, rain = 1
	})

	net := bayes.New(src)
	for _, node := range []bayes.Node{cloudy, sprinkler, rain, grass} {
		if err := net.AddNode(node); err != nil {
			return nil, err
		}
	}
	edges := [][2]bayes.Node{
		{cloudy, sprinkler},
		{cloudy, rain},
		{sprinkler, grass},
		{rain, grass},
	}
	for _, edge := range edges {
		if err := net.AddEdge(edge[0], edge[1]); err != nil {
			return nil, err
		}
	}
	if err := net.Compile(); err != nil {
		return nil, err
	}
	return net, nil
}

func sampleWorlds(net *bayes.Network, samples int) (output.RunSummary, error) {
	summary := output.RunSummary{
		Network:    net.String(),
		Samples:    samples,
		MinLogProb: math.Inf(1),
		MaxLogProb: math.Inf(-1),
	}
	total := 0.0
	for i := 0; i < samples; i++ {
		w, err := net.Sample(nil)
		if err != nil {
			return summary, err
		}
		lp, err := net.LogProbability(w)
		if err != nil {
			return summary, err
		}
		total += lp
		summary.MinLogProb = math.Min(summary.MinLogProb, lp)
		summary.MaxLogProb = math.Max(summary.MaxLogProb, lp)
	}
	if samples > 0 {
		summary.MeanLogProb = total / float64(samples)
	}
	return summary, nil
}

// parseEvidence parses "name=value,name=value" into a world keyed by the
// named nodes' indices.
func parseEvidence(net *bayes.Network, spec string) (*world.World, error) {
	w := world.New()
	if strings.TrimSpace(spec) == "" {
		return w, nil
	}
	for _, part := range strings.Split(spec, ",") {
		name, rawValue, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("malformed evidence %q, want name=value", part)
		}
		node, err := net.FindNode(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed evidence value in %q: %w", part, err)
		}
		w.Set(node.Index(), value)
	}
	return w, nil
}
