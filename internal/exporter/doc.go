// Package exporter runs a planned export against a scene adapter: it resets
// the destination, assigns ids, creates the folder tree and writes one GLB
// per component while keeping the scene's visibility and selection intact.
package exporter
