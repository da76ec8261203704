package tree

// Merge deep-merges override on top of base and returns a new tree.
// Neither input is modified.
//
// For a key present in both trees, nested trees merge recursively. Any other
// combination, arrays included, is resolved in favour of override: arrays are
// replaced wholesale and never concatenated. Keys only present in override are
// appended after the keys of base.
func Merge(base, override *Tree) *Tree {
	out := base.Clone()

	override.Range(func(key string, value any) bool {
		existing, found := out.Get(key)

		existingTree, existingIsTree := existing.(*Tree)
		overrideTree, overrideIsTree := value.(*Tree)

		if found && existingIsTree && overrideIsTree {
			out.Set(key, Merge(existingTree, overrideTree))

			return true
		}

		out.Set(key, cloneValue(value))

		return true
	})

	return out
}

// MergeAll folds trees left to right with Merge. Later trees take precedence.
func MergeAll(trees ...*Tree) *Tree {
	out := New()

	for _, next := range trees {
		out = Merge(out, next)
	}

	return out
}
