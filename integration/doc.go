// Package integration defines the tool-side plugin contract. An Integration
// is a versioned plugin that exposes one model-callable function and
// executes it against live arguments chosen by a caller model.
package integration
