package search

// Results is an ordered result list with at most one selected entry.
type Results []Result

// SelectedIndex returns the index of the selected result, or -1.
func (rs Results) SelectedIndex() int {
	for i := range rs {
		if rs[i].Selected {
			return i
		}
	}
	return -1
}

// Selected returns the selected result, or nil.
func (rs Results) Selected() *Result {
	if i := rs.SelectedIndex(); i >= 0 {
		return &rs[i]
	}
	return nil
}

// MoveDown selects the result after the selected one, wrapping to the
// first, and returns its index. With nothing selected it changes nothing
// and returns 0.
func (rs Results) MoveDown() int {
	return rs.move(1)
}

// MoveUp selects the result before the selected one, wrapping to the last,
// and returns its index. With nothing selected it changes nothing and
// returns 0.
func (rs Results) MoveUp() int {
	return rs.move(-1)
}

func (rs Results) move(step int) int {
	i := rs.SelectedIndex()
	if i < 0 {
		return 0
	}
	rs[i].Selected = false
	next := (i + step + len(rs)) % len(rs)
	rs[next].Selected = true
	return next
}
