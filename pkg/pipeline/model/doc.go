// Package model provides the data structures shared by the pipeline package and its options.
// It defines the steps flowing through a pipeline, the information describing them,
// and the hooks a pipeline option implements to observe each stage.
package model
