// Command hibftree reads a pack file, assembles its build tree and prints
// it. With -build it also builds every IBF, treating each non-empty line of
// a user bin's files as one element.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jcalabro/hibf"
)

func main() {
	var (
		layoutPath = flag.String("layout", "", "pack file to read")
		build      = flag.Bool("build", false, "build the IBFs from the user bin files")
		hashes     = flag.Int("hashes", 2, "number of hash functions")
		fpr        = flag.Float64("fpr", 0.05, "desired false positive rate")
		maxSplit   = flag.Int("max-split", 0, "max split factor (0: derived from the layout)")
		threads    = flag.Int("threads", 0, "worker threads (0: GOMAXPROCS)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := hibf.NewTextLogger(level)

	if *layoutPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(logger, *layoutPath, *build, *hashes, *fpr, *maxSplit, *threads); err != nil {
		logger.Error("hibftree failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *hibf.Logger, path string, build bool, hashes int, fpr float64, maxSplit, threads int) error {
	ctx := context.Background()

	l, err := hibf.ReadPackFile(path)
	if err != nil {
		return err
	}

	cfg := hibf.Config{
		MaxSplitFactor:    maxSplit,
		HashFunctionCount: hashes,
		FalsePositiveRate: fpr,
		Threads:           threads,
	}
	if cfg.MaxSplitFactor == 0 {
		cfg.MaxSplitFactor = l.MaxSplit()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	table, err := hibf.ComputeFPCorrection(cfg.MaxSplitFactor, cfg.HashFunctionCount, cfg.FalsePositiveRate)
	if err != nil {
		return err
	}
	t, err := hibf.AssembleLayout(l)
	if err != nil {
		return err
	}
	data := hibf.NewBuildData(cfg, t)
	data.FPCorrection = table
	if err := hibf.Attach(t, l.UserBins, data); err != nil {
		return err
	}

	printTree(os.Stdout, t)
	printCorrection(os.Stdout, table)

	if !build {
		return nil
	}

	sketches := make([]hibf.Sketch, len(l.UserBins))
	for i, ub := range l.UserBins {
		s := exactSketch{}
		if err := readElements(ub.Files, func(h uint64) { s[h] = struct{}{} }); err != nil {
			return err
		}
		sketches[i] = s
	}

	idx, err := hibf.Build(ctx, cfg, l, hibf.EstimateCounts(sketches), func(ub hibf.UserBin, insert func(uint64)) error {
		return readElements(ub.Files, insert)
	}, hibf.WithLogger(logger))
	if err != nil {
		return err
	}

	for id := range idx.Len() {
		ibf := idx.IBF(uint64(id))
		fmt.Fprintf(os.Stdout, "ibf %d: node %d, %d bins of %d bits\n", id, ibf.Node, ibf.NumBins(), ibf.BinBits)
	}
	return nil
}

func printTree(w io.Writer, t *hibf.Tree) {
	t.Walk(hibf.Root, func(id hibf.NodeID) bool {
		d := t.Data(id)
		indent := strings.Repeat("  ", t.Depth(id))
		fav := "-"
		if d.FavouriteChild != hibf.NoNode {
			fav = fmt.Sprint(int(d.FavouriteChild))
		}
		fmt.Fprintf(w, "%snode %d path=%v max=%d favourite=%s\n", indent, id, t.Path(id), d.MaxSlot, fav)
		for _, ub := range d.Records {
			fmt.Fprintf(w, "%s  user bin %d slot=%d bins=%d %s\n", indent, ub.ID, ub.Slot(), ub.SlotCount, strings.Join(ub.Files, ","))
		}
		return true
	})
}

func printCorrection(w io.Writer, table hibf.FPCorrection) {
	for s := 1; s <= table.MaxSplit(); s++ {
		fmt.Fprintf(w, "fp correction %d: %.6f\n", s, table.Factor(s))
	}
}

// exactSketch counts distinct hashes exactly.
type exactSketch map[uint64]struct{}

func (s exactSketch) Estimate() float64 {
	return float64(len(s))
}

func readElements(files []string, insert func(uint64)) error {
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				insert(hibf.HashString(line))
			}
		}
		err = sc.Err()
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
