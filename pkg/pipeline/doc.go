// Package pipeline runs a graph of stages connected by channels.
//
// A pipeline starts with one or more root steps producing values, transforms them through one-to-one,
// one-to-one-or-zero and one-to-many steps, fans them out with splitters or in with mergers, and ends in
// sinks. Each step runs in its own goroutines as soon as it is added; Run waits for all of them.
//
// The pipeline stops on the first error: the failing stage reports it, the pipeline context is cancelled so
// every other stage returns, and Run returns the error prefixed with the stage name.
//
// Options implementing model.PipelineOption observe every stage. The measure and drawer sub-packages
// provide duration measurement and a Graphviz rendering of the graph.
package pipeline
