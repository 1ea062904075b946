// Package strategy provides grid partitioning strategies.
//
// A strategy decides which rows of the global grid each worker owns. The
// package ships RowBlock, a contiguous row-wise decomposition: each worker
// owns one band of rows and only exchanges halo rows with the workers
// directly above and below it.
//
// Custom strategies can be implemented by satisfying types.PartitionStrategy,
// as long as partitions stay contiguous and ordered by worker index.
package strategy
