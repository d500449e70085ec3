// Command hyve-demo constructs an engine, inserts a handful of
// documents into one namespace, and runs all four query shapes against
// them, to exercise the public engine.Engine surface end to end.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/brevity-labs/hyve/engine"
	"github.com/brevity-labs/hyve/internal/search"
	"github.com/brevity-labs/hyve/model"
	flag "github.com/spf13/pflag"
)

func main() {
	var (
		namespace   = flag.String("namespace", "demo", "namespace to operate on")
		dim         = flag.Int("dim", 4, "vector dimension")
		maxElements = flag.Int("max-elements", 1000, "namespace capacity")
		k           = flag.Int("k", 3, "result count for each query shape")
	)
	flag.Parse()

	eng := engine.New()
	defer eng.Destroy()

	docs := []struct {
		id       string
		vector   []float32
		metadata model.Metadata
	}{
		{"doc-1", []float32{1, 0, 0, 0}, model.Metadata{"title": "red fox jumps"}},
		{"doc-2", []float32{0, 1, 0, 0}, model.Metadata{"title": "lazy dog sleeps"}},
		{"doc-3", []float32{0.7071, 0.7071, 0, 0}, model.Metadata{"title": "fox and dog play"}},
	}

	eng.SetIndexedFields(*namespace, *dim, *maxElements, []string{"title"})
	for _, d := range docs {
		if err := eng.Insert(*namespace, *dim, *maxElements, d.id, d.vector, d.metadata); err != nil {
			log.Fatalf("insert %s: %v", d.id, err)
		}
	}

	ctx := context.Background()
	query := []float32{1, 0, 0, 0}

	vecResults, err := eng.Search(*namespace, query, *k, nil)
	exitOnErr(err)
	printResults("vector", vecResults)

	textResults, err := eng.FullTextSearch(*namespace, "fox", *k, nil)
	exitOnErr(err)
	printResults("full-text", textResults)

	hybrid, err := eng.HybridSearch(ctx, *namespace, query, "fox", search.HybridOptions{
		VectorWeight: 0.5, TextWeight: 0.5, K: *k,
	})
	exitOnErr(err)
	printHybrid("hybrid (weighted)", hybrid)

	rrf, err := eng.HybridSearchRRF(ctx, *namespace, query, "fox", *k, 60, nil)
	exitOnErr(err)
	printHybrid("hybrid (rrf)", rrf)
}

func printResults(label string, results []search.Result) {
	fmt.Printf("== %s ==\n", label)
	for _, r := range results {
		fmt.Printf("  %-8s similarity=%.4f metadata=%v\n", r.PublicID, r.Similarity, r.Metadata)
	}
}

func printHybrid(label string, results []search.HybridResult) {
	fmt.Printf("== %s ==\n", label)
	for _, r := range results {
		fmt.Printf("  %-8s combined=%.4f vector=%.4f text=%.4f\n", r.PublicID, r.CombinedScore, r.VectorScore, r.TextScore)
	}
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
