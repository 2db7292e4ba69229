package hibf_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/jcalabro/hibf"
)

// This example assembles the build tree of two nested merged bins.
func ExampleAssemble() {
	tree, err := hibf.Assemble([]hibf.MaxBin{
		{Path: []int{2, 1}, MaxSlot: 1},
		{Path: []int{2}, MaxSlot: 1},
	})
	if err != nil {
		panic(err)
	}

	tree.Walk(hibf.Root, func(id hibf.NodeID) bool {
		d := tree.Data(id)
		fmt.Printf("node %d path=%v max=%d favourite=%d\n", id, tree.Path(id), d.MaxSlot, d.FavouriteChild)
		return true
	})

	// Output:
	// node 0 path=[] max=-1 favourite=-1
	// node 1 path=[2] max=1 favourite=2
	// node 2 path=[2 1] max=1 favourite=-1
}

// This example shows the correction applied to user bins split across
// several technical bins.
func ExampleComputeFPCorrection() {
	table, err := hibf.ComputeFPCorrection(3, 2, 0.05)
	if err != nil {
		panic(err)
	}

	for s := 1; s <= table.MaxSplit(); s++ {
		fmt.Printf("split %d: %.4f\n", s, table.Factor(s))
	}

	// Output:
	// split 1: 1.0000
	// split 2: 1.4604
	// split 3: 1.8144
}

// This example builds an index from a pack file, feeding every file name
// as the only element of its user bin.
func ExampleBuild() {
	const pack = "#HIGH_LEVEL_IBF max_bin_id:1\n" +
		"#MERGED_BIN_1 max_bin_id:0\n" +
		"a\t0\t1\n" +
		"b\t1;0\t1\n" +
		"c\t1;1\t1\n"

	layout, err := hibf.ReadPackFileFrom(strings.NewReader(pack))
	if err != nil {
		panic(err)
	}

	counts := make([]uint64, len(layout.UserBins))
	for i := range counts {
		counts[i] = 1
	}
	input := func(ub hibf.UserBin, insert func(uint64)) error {
		for _, f := range ub.Files {
			insert(hibf.HashString(f))
		}
		return nil
	}

	idx, err := hibf.Build(context.Background(), hibf.DefaultConfig(), layout, counts, input)
	if err != nil {
		panic(err)
	}

	root := idx.IBF(idx.IBFOf(hibf.Root))
	fmt.Println("ibfs:", idx.Len())
	fmt.Println("root bins:", root.NumBins())
	fmt.Println("b below root slot 1:", root.Bins[1].TestString("b"))

	// Output:
	// ibfs: 2
	// root bins: 2
	// b below root slot 1: true
}
