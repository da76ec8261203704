// Package tree provides the ordered configuration tree shared by the parsers,
// the file merger and the secret resolver.
//
// A Tree keeps keys in insertion order so every walk over it is deterministic.
// Merge implements the layered precedence used when several configuration
// files are loaded:
//
//	base     := {a: {x: 1, y: 2}, list: [1, 2]}
//	override := {a: {y: 3, z: 4}, list: [9]}
//	Merge(base, override) == {a: {x: 1, y: 3, z: 4}, list: [9]}
package tree
