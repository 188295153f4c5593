// Command cakes is the CLI entry point over the pkg/cakes facade: build a
// tree from a vector or string dataset file, run range/k-nearest queries
// against it, and report build/search timings. Structured the way the
// teacher's cmd/aicrawler is: a cobra root command with persistent
// --config/--verbose flags and one subcommand per operation.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/TobiSchelling/cakes/internal/config"
	"github.com/TobiSchelling/cakes/internal/server"
	"github.com/TobiSchelling/cakes/pkg/cakes"
	"github.com/TobiSchelling/cakes/pkg/cluster"
	"github.com/TobiSchelling/cakes/pkg/criteria"
	"github.com/TobiSchelling/cakes/pkg/dataset"
	"github.com/TobiSchelling/cakes/pkg/helpers"
	"github.com/TobiSchelling/cakes/pkg/numeric"
	"github.com/TobiSchelling/cakes/pkg/search/knn"
	"github.com/TobiSchelling/cakes/pkg/search/rnn"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "cakes",
	Short:   "Build a metric-space search tree and query it",
	Long:    "cakes builds a hierarchical divisive clustering tree over a dataset and runs exact range and k-nearest-neighbor search against it.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(rnnCmd)
	rootCmd.AddCommand(knnCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cakes", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/cakes/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the dataset backing, metric, and partition criteria.")
		return nil
	},
}

// --- build command ---

var buildCmd = &cobra.Command{
	Use:   "build <dataset-file>",
	Short: "Build a tree over a dataset file and report its shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch cfg.Dataset.Kind {
		case "string":
			f, _, err := buildStringFacade(args[0])
			if err != nil {
				return err
			}
			reportShape(f.Data().Cardinality(), f.Depth(), f.Radius())
		default:
			f, _, err := buildVectorFacade(args[0])
			if err != nil {
				return err
			}
			reportShape(f.Data().Cardinality(), f.Depth(), f.Radius())
		}
		return nil
	},
}

func reportShape(cardinality, depth int, radius float64) {
	fmt.Printf("Cardinality: %d\n", cardinality)
	fmt.Printf("Depth:       %d\n", depth)
	fmt.Printf("Radius:      %g\n", radius)
}

// --- rnn command ---

var rnnAlgo string

var rnnCmd = &cobra.Command{
	Use:   "rnn <dataset-file> <query> <radius>",
	Short: "Range search: list every instance within radius of query",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		radius, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("parsing radius: %w", err)
		}
		name := rnnAlgo
		if !cmd.Flags().Changed("algo") {
			name = cfg.Search.RnnAlgorithm
		}
		algo := rnnAlgorithm(name)

		switch cfg.Dataset.Kind {
		case "string":
			f, _, err := buildStringFacade(args[0])
			if err != nil {
				return err
			}
			hits, err := f.RnnSearch(args[1], radius, algo)
			if err != nil {
				return err
			}
			printRnnHits(hits)
		default:
			f, _, err := buildVectorFacade(args[0])
			if err != nil {
				return err
			}
			q, err := parseVector(args[1])
			if err != nil {
				return err
			}
			hits, err := f.RnnSearch(q, radius, algo)
			if err != nil {
				return err
			}
			printRnnHits(hits)
		}
		return nil
	},
}

func init() {
	rnnCmd.Flags().StringVar(&rnnAlgo, "algo", "clustered", "Algorithm: linear or clustered")
}

func rnnAlgorithm(name string) rnn.Algorithm {
	if name == "linear" {
		return rnn.Linear
	}
	return rnn.Clustered
}

func printRnnHits(hits []rnn.Hit[float64]) {
	for _, h := range hits {
		fmt.Printf("%d\t%g\n", h.Index, h.Distance)
	}
}

// --- knn command ---

var knnAlgo string

var knnCmd = &cobra.Command{
	Use:   "knn <dataset-file> <query> <k>",
	Short: "k-nearest-neighbor search",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("parsing k: %w", err)
		}
		name := knnAlgo
		if !cmd.Flags().Changed("algo") {
			name = cfg.Search.KnnAlgorithm
		}
		algo := knnAlgorithm(name)

		switch cfg.Dataset.Kind {
		case "string":
			f, _, err := buildStringFacade(args[0])
			if err != nil {
				return err
			}
			hits, err := f.KnnSearch(args[1], k, algo)
			if err != nil {
				return err
			}
			printKnnHits(hits)
		default:
			f, _, err := buildVectorFacade(args[0])
			if err != nil {
				return err
			}
			q, err := parseVector(args[1])
			if err != nil {
				return err
			}
			hits, err := f.KnnSearch(q, k, algo)
			if err != nil {
				return err
			}
			printKnnHits(hits)
		}
		return nil
	},
}

func init() {
	knnCmd.Flags().StringVar(&knnAlgo, "algo", "repeated-rnn", "Algorithm: linear, repeated-rnn, or sieve")
}

func knnAlgorithm(name string) knn.Algorithm {
	switch name {
	case "linear":
		return knn.Linear
	case "sieve":
		return knn.Sieve
	default:
		return knn.RepeatedRnn
	}
}

func printKnnHits(hits []knn.Hit[float64]) {
	for _, h := range hits {
		fmt.Printf("%d\t%g\n", h.Index, h.Distance)
	}
}

// --- bench command ---

var benchCmd = &cobra.Command{
	Use:   "bench <dataset-file>",
	Short: "Build a tree and report timing and LFD statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		var cardinality, depth int
		var radius float64
		var lfds []float64

		switch cfg.Dataset.Kind {
		case "string":
			f, buildElapsed, err := buildStringFacade(args[0])
			if err != nil {
				return err
			}
			cardinality, depth, radius = f.Data().Cardinality(), f.Depth(), f.Radius()
			lfds = collectClusterLFDs(f.Tree().Root())
			fmt.Printf("Build+partition+reorder: %s\n", buildElapsed)
		default:
			f, buildElapsed, err := buildVectorFacade(args[0])
			if err != nil {
				return err
			}
			cardinality, depth, radius = f.Data().Cardinality(), f.Depth(), f.Radius()
			lfds = collectClusterLFDs(f.Tree().Root())
			fmt.Printf("Build+partition+reorder: %s\n", buildElapsed)
		}

		reportShape(cardinality, depth, radius)
		reportLFDStats(lfds)
		fmt.Printf("Total: %s\n", time.Since(start))
		return nil
	},
}

// collectClusterLFDs walks every cluster in the tree (internal nodes and
// leaves alike) and returns its LFD, for the bench command's summary
// statistics.
func collectClusterLFDs[T any, U numeric.Number](c *cluster.Cluster[T, U]) []float64 {
	var out []float64
	var walk func(c *cluster.Cluster[T, U])
	walk = func(c *cluster.Cluster[T, U]) {
		out = append(out, c.LFD())
		if !c.IsLeaf() {
			left, right := c.Children()
			walk(left)
			walk(right)
		}
	}
	walk(c)
	return out
}

func reportLFDStats(lfds []float64) {
	if len(lfds) == 0 {
		return
	}
	mean := helpers.Mean(lfds)
	sd := helpers.SD(lfds, mean)
	fmt.Printf("LFD clusters: %d, mean: %g, sd: %g\n", len(lfds), mean, sd)
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve <dataset-file>",
	Short: "Start the demo HTTP server over a built tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Dataset.Kind == "string" {
			return fmt.Errorf("serve: string datasets are not exposed over HTTP; use a vector dataset")
		}
		f, _, err := buildVectorFacade(args[0])
		if err != nil {
			return err
		}
		port := servePort
		if !cmd.Flags().Changed("port") {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(f, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

// --- shared helpers ---

func parseVector(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing query component %q: %w", field, err)
		}
		out[i] = v
	}
	return out, nil
}

func buildVectorFacade(path string) (*cakes.Facade[[]float64, float64], time.Duration, error) {
	start := time.Now()
	d, err := dataset.LoadVectorsCSVWithMetric(path, cfg.Dataset.Metric, cfg.Dataset.Expensive, cfg.Dataset.Cache)
	if err != nil {
		return nil, 0, fmt.Errorf("loading vectors: %w", err)
	}
	c := criteriaFromConfig[[]float64]()
	f, err := cakes.New[[]float64, float64](d, cfg.Dataset.Seed, c, cfg.Partition.Parallel)
	if err != nil {
		return nil, 0, fmt.Errorf("building tree: %w", err)
	}
	return f, time.Since(start), nil
}

func buildStringFacade(path string) (*cakes.Facade[string, float64], time.Duration, error) {
	start := time.Now()
	d, err := dataset.LoadLinesAsStringsWithMetric(path, cfg.Dataset.Metric, cfg.Dataset.Expensive, cfg.Dataset.Cache)
	if err != nil {
		return nil, 0, fmt.Errorf("loading strings: %w", err)
	}
	c := criteriaFromConfig[string]()
	f, err := cakes.New[string, float64](d, cfg.Dataset.Seed, c, cfg.Partition.Parallel)
	if err != nil {
		return nil, 0, fmt.Errorf("building tree: %w", err)
	}
	return f, time.Since(start), nil
}

func criteriaFromConfig[T any]() criteria.PartitionCriteria[T, float64] {
	c := criteria.New[T, float64](cfg.Partition.Strict)
	if cfg.Partition.MaxDepth > 0 {
		c = c.WithMaxDepth(cfg.Partition.MaxDepth)
	}
	if cfg.Partition.MinCardinality > 1 {
		c = c.WithMinCardinality(cfg.Partition.MinCardinality)
	}
	if cfg.Partition.MinRadius > 0 {
		c = c.WithMinRadius(cfg.Partition.MinRadius)
	}
	return c
}
