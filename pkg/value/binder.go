package value

import "strconv"

// Binder accumulates driver-native arguments and hands out positional
// placeholders. Positions are assigned strictly in bind order, 1-based, with
// no gaps and no reuse; the statement text must reference exactly the
// position returned for each value.
type Binder struct {
	args []any
}

// Bind appends the value's driver argument and returns its 1-based position.
// Null values consume a position like any other value.
func (b *Binder) Bind(v Value) int {
	b.args = append(b.args, v.Driver())
	return len(b.args)
}

// Placeholder binds the value and returns its "$n" placeholder token.
func (b *Binder) Placeholder(v Value) string {
	return "$" + strconv.Itoa(b.Bind(v))
}

// Args returns the ordered parameter list for the driver.
func (b *Binder) Args() []any {
	return b.args
}

// Len returns the number of bound values.
func (b *Binder) Len() int {
	return len(b.args)
}
