// Package hibf turns a flat partition plan into the build tree of a
// Hierarchical Interleaved Bloom Filter (HIBF) and builds its IBFs
// concurrently.
//
// An HIBF stores many user bins (datasets) in a tree of IBFs. Each IBF is a
// row of equally sized technical bins. A technical bin either stores one
// user bin, stores part of a user bin that was split across several bins to
// balance load, or is a merged bin whose content is the union of a whole
// lower-level IBF.
//
// # Pipeline
//
// A build run goes through these stages, all but the last single-threaded:
//
//  1. [ReadPackFile] parses the layout written by the partitioning tool into
//     a [Layout]: merged-bin headers ([MaxBin]) and user bins ([UserBin]).
//  2. [ComputeFPCorrection] precomputes how much larger the bins of a split
//     user bin must be, so that testing all of them still meets the desired
//     false positive rate.
//  3. [AssembleLayout] sorts the headers by depth and grows the [Tree], one
//     node per IBF. A node whose parent slot equals its parent's maximum
//     slot becomes the parent's favourite child.
//  4. [Attach] stores every user bin in its owning node and gives it an
//     identity from the [BuildData] counters.
//  5. [Build] runs one job per node on a bounded worker pool. Each job takes
//     an IBF identity, sizes the bins from the cardinality estimates and
//     fills them through the caller's [InputFunc].
//
// Any malformed record or invalid configuration is reported before the
// first worker starts, so a partially assembled tree is never built.
//
// # Identities
//
// IBF and user bin identities come from two [Counter] values, each padded
// to its own cache line. They are unique and dense in [0, N) but carry no
// relation to tree order: identity 0 is not necessarily the root. Use
// [Index.IBFOf] and [Index.Next] to navigate.
//
// # Pack file
//
//	#HIGH_LEVEL_IBF max_bin_id:2
//	#MERGED_BIN_2 max_bin_id:1
//	#FILES	BIN_INDICES	NUMBER_OF_BINS
//	a.fa	0	1
//	b.fa;c.fa	1	1
//	d.fa	2;0	1
//	e.fa	2;1	3
//
// # Thread Safety
//
// A [Tree] is mutated only during assembly and attachment and may then be
// read concurrently. [BuildData] allocation methods are safe for any number
// of goroutines. An [Index] must not be read before [Build] returns.
package hibf
