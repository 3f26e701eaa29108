package grid

import "github.com/cwbudde/algo-simgrid/internal/ndarray"

// channels is a resizable table of property slots. Every slot holds the
// row-major values of one property over all cells, so appending a property
// never moves existing data.
type channels struct {
	cells int
	slots [][]complex128
}

// newChannels returns n zero-filled slots of the given cell count.
func newChannels(cells, n int) *channels {
	c := &channels{cells: cells}
	c.grow(n)
	return c
}

func (c *channels) len() int {
	return len(c.slots)
}

// grow appends n zero-filled slots.
func (c *channels) grow(n int) {
	for i := 0; i < n; i++ {
		c.slots = append(c.slots, make([]complex128, c.cells))
	}
}

// attach appends existing slots without copying.
func (c *channels) attach(slots ...[]complex128) {
	c.slots = append(c.slots, slots...)
}

// subset returns a deep copy of the listed slots in order.
func (c *channels) subset(props []int) *channels {
	out := &channels{cells: c.cells, slots: make([][]complex128, len(props))}
	for i, p := range props {
		out.slots[i] = append([]complex128(nil), c.slots[p]...)
	}
	return out
}

func (c *channels) clone() *channels {
	out := &channels{cells: c.cells, slots: make([][]complex128, len(c.slots))}
	for i, s := range c.slots {
		out.slots[i] = append([]complex128(nil), s...)
	}
	return out
}

// reshape copies the block described by srcStart/dstStart/count of every
// slot into freshly allocated slots of shape dstShape. Cells outside the
// copied block are zero.
func (c *channels) reshape(srcShape, dstShape, srcStart, dstStart, count []int) {
	cells := ndarray.Size(dstShape)
	for i, s := range c.slots {
		dst := make([]complex128, cells)
		ndarray.Resize(dst, dstShape, dstStart, s, srcShape, srcStart, count)
		c.slots[i] = dst
	}
	c.cells = cells
}

// scale multiplies every value by f.
func (c *channels) scale(f float64) {
	if f == 1 {
		return
	}
	m := complex(f, 0)
	for _, s := range c.slots {
		for i := range s {
			s[i] *= m
		}
	}
}
