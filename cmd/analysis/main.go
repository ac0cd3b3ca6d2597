//go:build analysis

// Timing sweep over domain sizes: proves and verifies random low degree
// codewords for a range of parameters and renders the measurements as a
// go-echarts HTML page plus a JSON report.
//
//	go run -tags analysis ./cmd/analysis -runs 5 -out reports
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/fri"
	"github.com/consensys/fri/transcript"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/consensys/gnark-crypto/hash"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type measurement struct {
	LogDomainSize int     `json:"logDomainSize"`
	FoldingFactor int     `json:"foldingFactor"`
	Rounds        int     `json:"rounds"`
	ProveMs       float64 `json:"proveMs"`
	VerifyMs      float64 `json:"verifyMs"`
	ProofBytes    int     `json:"proofBytes"`
}

func runOnce(logN, foldingFactor, nbQueries int) (measurement, error) {
	var m measurement
	m.LogDomainSize = logN
	m.FoldingFactor = foldingFactor

	// grow the remainder by one bit when the domain does not reduce to
	// 2^3 by whole folding rounds
	const blowup = 8
	remLog := 3
	if foldingFactor == 4 && (logN-remLog)%2 != 0 {
		remLog = 4
	}
	options, err := fri.NewOptions(foldingFactor, blowup, 1<<remLog-1)
	if err != nil {
		return m, err
	}
	n := 1 << logN
	nbRounds, err := options.NumRounds(n)
	if err != nil {
		return m, err
	}
	m.Rounds = nbRounds

	maxDegree := n/blowup - 1
	evals := make([]fr.Element, n)
	for i := 0; i <= maxDegree; i++ {
		evals[i].SetRandom()
	}
	d := fft.NewDomain(uint64(n))
	d.FFT(evals, fft.DIF)

	seed := []byte("analysis")
	coin, err := transcript.NewCoin(hash.MIMC_BN254.New(), seed, nbRounds)
	if err != nil {
		return m, err
	}

	start := time.Now()
	prover := fri.NewProver(options, hash.MIMC_BN254)
	if err := prover.BuildLayers(coin, evals); err != nil {
		return m, err
	}
	commitments, err := prover.LayerCommitments()
	if err != nil {
		return m, err
	}
	positions, err := coin.DrawIndices(nbQueries, uint64(n))
	if err != nil {
		return m, err
	}
	proof, err := prover.BuildProof(positions)
	if err != nil {
		return m, err
	}
	m.ProveMs = float64(time.Since(start).Microseconds()) / 1000

	queried := make([]fr.Element, len(positions))
	for i, pos := range positions {
		queried[i] = evals[pos]
	}

	start = time.Now()
	channel, err := fri.NewVerifierChannel(proof, commitments, n, foldingFactor)
	if err != nil {
		return m, err
	}
	vcoin, err := transcript.NewCoin(hash.MIMC_BN254.New(), seed, nbRounds)
	if err != nil {
		return m, err
	}
	v, err := fri.NewVerifier(channel, vcoin, options, hash.MIMC_BN254, maxDegree)
	if err != nil {
		return m, err
	}
	if err := v.Verify(channel, queried, positions); err != nil {
		return m, err
	}
	m.VerifyMs = float64(time.Since(start).Microseconds()) / 1000

	cw := countingWriter{}
	if _, err := proof.WriteTo(&cw); err != nil {
		return m, err
	}
	m.ProofBytes = cw.n
	return m, nil
}

type countingWriter struct{ n int }

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}

func toLineItems(vals []float64) []opts.LineData {
	out := make([]opts.LineData, len(vals))
	for i, v := range vals {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func newTimingChart(title string, xLabels []string, series map[string][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
	)
	line.SetXAxis(xLabels)
	for name, vals := range series {
		line.AddSeries(name, toLineItems(vals))
	}
	return line
}

func main() {
	runs := flag.Int("runs", 3, "runs per configuration, best time kept")
	minLog := flag.Int("min", 10, "log2 of the smallest domain")
	maxLog := flag.Int("max", 15, "log2 of the largest domain")
	queries := flag.Int("queries", 30, "query positions per proof")
	outDir := flag.String("out", "reports", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	var all []measurement
	xLabels := make([]string, 0, *maxLog-*minLog+1)
	proveSeries := map[string][]float64{}
	verifySeries := map[string][]float64{}

	for logN := *minLog; logN <= *maxLog; logN++ {
		xLabels = append(xLabels, fmt.Sprintf("2^%d", logN))
		for _, f := range []int{2, 4} {
			best := measurement{}
			for r := 0; r < *runs; r++ {
				m, err := runOnce(logN, f, *queries)
				if err != nil {
					log.Fatalf("run logN=%d f=%d: %v", logN, f, err)
				}
				if r == 0 || m.ProveMs < best.ProveMs {
					best = m
				}
			}
			all = append(all, best)
			key := fmt.Sprintf("folding %d", f)
			proveSeries[key] = append(proveSeries[key], best.ProveMs)
			verifySeries[key] = append(verifySeries[key], best.VerifyMs)
			fmt.Printf("2^%-2d f=%d rounds=%-2d prove=%8.2fms verify=%8.2fms proof=%dB\n",
				logN, f, best.Rounds, best.ProveMs, best.VerifyMs, best.ProofBytes)
		}
	}

	ts := time.Now().Format("20060102_150405")

	jsonPath := filepath.Join(*outDir, fmt.Sprintf("fri_timings_%s.json", ts))
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(jsonPath, b, 0o644); err != nil {
		log.Fatalf("save json: %v", err)
	}

	page := components.NewPage()
	page.AddCharts(
		newTimingChart("prove time", xLabels, proveSeries),
		newTimingChart("verify time", xLabels, verifySeries),
	)

	htmlPath := filepath.Join(*outDir, fmt.Sprintf("fri_timings_%s.html", ts))
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("render html: %v", err)
	}
	fmt.Println("Timing page:", htmlPath)
	fmt.Println("Timings JSON:", jsonPath)
}
