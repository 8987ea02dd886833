// Package metrics provides snapshot-consuming observables for simulation
// runs. Every metric implements [swarm.Metric] and additionally records one
// value per observed tick, so a finished run yields both a final scalar and
// a plottable time series.
package metrics
