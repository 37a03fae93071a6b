package batch

import "sort"

// Sequence returns the execution order for a bundle: high, then normal, then
// low priority, with submission order kept inside each class. items is not
// modified.
func Sequence(items []IndexedCommand) []IndexedCommand {
	out := make([]IndexedCommand, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Command.Priority.Rank(), out[j].Command.Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].Index < out[j].Index
	})
	return out
}
