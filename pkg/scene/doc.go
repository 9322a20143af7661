// Package scene defines the hierarchical solid-modeling scene that facecut
// flattens. A scene is a read-only snapshot of faces, edges, groups,
// component instances and text annotations, together with the user's
// ordered selection.
package scene
