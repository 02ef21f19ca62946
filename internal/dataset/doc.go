// Package dataset partitions a labeled image collection into training and
// validation sets and lays the result out in the directory structure the
// detector's trainer expects:
//
//	<root>/images/train  <root>/labels/train
//	<root>/images/val    <root>/labels/val
//
// The split is stratified per category with a single greedy pass over a
// seeded shuffle, so the same inputs and seed always produce the same split.
package dataset
