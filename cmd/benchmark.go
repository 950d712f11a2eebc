package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// benchmarkCmd represents the benchmark command
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Replay a file of search queries against a running server",
	Long: `The benchmark command reads a JSON array of search queries, issues them
sequentially against a running mediasearch server, and reports latency
percentiles.`,
	Run: RunBenchmark,
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)
	benchmarkCmd.Flags().StringP("input", "i", "", "Input JSON file path")
	benchmarkCmd.MarkFlagRequired("input")
	benchmarkCmd.Flags().StringP("target", "t", "http://localhost:8080", "Base URL of the server")
}

type benchmarkQuery struct {
	Q        string  `json:"q"`
	Semantic bool    `json:"semantic"`
	PageSize int     `json:"pageSize,omitempty"`
	MinScore float64 `json:"minScore,omitempty"`
}

func RunBenchmark(cmd *cobra.Command, args []string) {
	inputPath, _ := cmd.Flags().GetString("input")
	target, _ := cmd.Flags().GetString("target")

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Printf("Failed to read input file: %v\n", err)
		return
	}

	var queries []benchmarkQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		fmt.Printf("Failed to parse JSON: %v\n", err)
		return
	}
	if len(queries) == 0 {
		fmt.Println("No queries to run")
		return
	}

	client := &http.Client{Timeout: 30 * time.Second}
	bar := progressbar.Default(int64(len(queries)))

	latencies := make([]time.Duration, 0, len(queries))
	failures := 0
	for _, q := range queries {
		params := url.Values{}
		params.Set("q", q.Q)
		if q.Semantic {
			params.Set("semantic", "true")
		}
		if q.PageSize > 0 {
			params.Set("pageSize", strconv.Itoa(q.PageSize))
		}
		if q.MinScore > 0 {
			params.Set("min_score", strconv.FormatFloat(q.MinScore, 'f', -1, 64))
		}

		started := time.Now()
		resp, err := client.Get(target + "/search?" + params.Encode())
		if err != nil {
			failures++
			bar.Add(1)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			failures++
		} else {
			latencies = append(latencies, time.Since(started))
		}
		bar.Add(1)
	}

	if len(latencies) == 0 {
		fmt.Printf("\nAll %d queries failed\n", len(queries))
		return
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	fmt.Printf("\nqueries: %d  failures: %d\n", len(queries), failures)
	fmt.Printf("p50: %s  p95: %s  max: %s\n",
		percentile(latencies, 50), percentile(latencies, 95), latencies[len(latencies)-1])
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
