package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var statsCmd = &cobra.Command{
	Use:   "stats <container>",
	Short: "Show per-chunk compressed size statistics",
	Long: `Walk a container's chunk records and report the distribution of
compressed chunk sizes: mean, standard deviation and quartiles, plus
the overall compression ratio against the raw volume size.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	path := args[0]

	records, err := walkRecords(path, nil)
	if err != nil {
		return err
	}

	geom := records.header.Geometry()
	rawBytes := int64(geom.ChunkCount()) * int64(geom.ChunkSize())
	if records.header.HasLabels {
		rawBytes += int64(records.labelGeom.ChunkCount()) * int64(records.labelGeom.ChunkSize())
	}

	fmt.Printf("Container:          %s\n", path)
	fmt.Printf("Raw chunk bytes:    %d\n", rawBytes)
	fmt.Printf("Compressed payload: %d (%.2fx)\n", records.totalPayload, float64(rawBytes)/float64(records.totalPayload))

	printSizeStats("volume chunks", records.volumeSizes, geom.ChunkSize())
	if records.header.HasLabels {
		printSizeStats("label chunks", records.labelSizes, records.labelGeom.ChunkSize())
	}
	return nil
}

func printSizeStats(name string, sizes []int, chunkSize int) {
	if len(sizes) == 0 {
		return
	}

	// gonum quantiles need a sorted sample.
	xs := make([]float64, len(sizes))
	for i, s := range sizes {
		xs[i] = float64(s)
	}
	sort.Float64s(xs)

	mean, std := stat.MeanStdDev(xs, nil)
	fmt.Printf("\n%s (%d, raw %d bytes each):\n", name, len(sizes), chunkSize)
	fmt.Printf("  mean   %.1f bytes\n", mean)
	if len(xs) > 1 {
		fmt.Printf("  stddev %.1f bytes\n", std)
	}
	fmt.Printf("  min    %.0f bytes\n", xs[0])
	fmt.Printf("  p25    %.0f bytes\n", stat.Quantile(0.25, stat.Empirical, xs, nil))
	fmt.Printf("  median %.0f bytes\n", stat.Quantile(0.5, stat.Empirical, xs, nil))
	fmt.Printf("  p75    %.0f bytes\n", stat.Quantile(0.75, stat.Empirical, xs, nil))
	fmt.Printf("  max    %.0f bytes\n", xs[len(xs)-1])
}
