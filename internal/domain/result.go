package domain

// Lines are the winning triples in the order Evaluate checks them.
var Lines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Result is the evaluated state of a board. The zero value is NoResult.
type Result struct {
	Winner Cell
	Line   [3]int
}

// NoResult means no line is complete.
var NoResult = Result{}

// Decided reports whether the result has a winner.
func (r Result) Decided() bool { return r.Winner != Empty }

// Contains reports whether cell i is part of the winning line.
func (r Result) Contains(i int) bool {
	if !r.Decided() {
		return false
	}
	for _, c := range r.Line {
		if c == i {
			return true
		}
	}
	return false
}

// Evaluate returns the first complete line in Lines order, or NoResult.
func Evaluate(b Board) Result {
	for _, ln := range Lines {
		a := b[ln[0]]
		if a != Empty && a == b[ln[1]] && a == b[ln[2]] {
			return Result{Winner: a, Line: ln}
		}
	}
	return NoResult
}
