// Package quote holds observable market values that are owned outside the
// code consuming them.
package quote

// Quote is a read-only view of a single market value whose owner may change
// it at any time.
type Quote interface {
	Value() float64
}

// SimpleQuote is a settable market value.
type SimpleQuote struct {
	value float64
}

// NewSimpleQuote returns a quote holding the given value.
func NewSimpleQuote(value float64) *SimpleQuote {
	return &SimpleQuote{value: value}
}

// Value returns the current value.
func (q *SimpleQuote) Value() float64 {
	return q.value
}

// SetValue changes the quote in place. Consumers reading the quote through a
// Handle observe the new value on their next read.
func (q *SimpleQuote) SetValue(value float64) {
	q.value = value
}

// Handle is a relinkable indirection to a Quote. Copies of a handle share one
// link: relinking any copy retargets all of them. Handles are built with
// NewHandle; the zero value is empty and cannot be relinked.
type Handle struct {
	link *link
}

type link struct {
	quote Quote
}

// NewHandle returns a handle linked to q. A nil q gives an empty handle that
// can be linked later.
func NewHandle(q Quote) Handle {
	return Handle{link: &link{quote: q}}
}

// LinkTo retargets the handle, and every copy of it, to q.
func (h Handle) LinkTo(q Quote) {
	h.link.quote = q
}

// Empty reports whether the handle currently points to no quote.
func (h Handle) Empty() bool {
	return h.link == nil || h.link.quote == nil
}

// Value reads through to the linked quote. The handle must not be empty.
func (h Handle) Value() float64 {
	return h.link.quote.Value()
}
