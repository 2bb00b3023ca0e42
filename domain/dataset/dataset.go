package dataset

// Dataset is the uploaded table. It is replaced wholesale on upload and never
// edited in place.
type Dataset []Row

// Len returns the row count
func (d Dataset) Len() int {
	return len(d)
}

// Columns returns the keys of the first row, in order
func (d Dataset) Columns() []string {
	if len(d) == 0 {
		return nil
	}
	return d[0].Keys()
}

// Shape returns (rows, columns of the first row). An empty dataset is (0, 0).
func (d Dataset) Shape() (int, int) {
	if len(d) == 0 {
		return 0, 0
	}
	return len(d), d[0].Len()
}

// Head returns up to n leading rows
func (d Dataset) Head(n int) Dataset {
	if n > len(d) {
		n = len(d)
	}
	if n < 0 {
		n = 0
	}
	return d[:n:n]
}

// Column returns every row's value for name; missing keys yield absent=false entries
func (d Dataset) Column(name string) []Cell {
	out := make([]Cell, len(d))
	for i, row := range d {
		v, ok := row.Get(name)
		out[i] = Cell{Value: v, Present: ok}
	}
	return out
}

// Cell is a looked-up value together with whether the key existed
type Cell struct {
	Value   Value
	Present bool
}

// String formats the cell for display
func (c Cell) String() string {
	return FormatValue(c.Value, c.Present)
}

// Clone returns a copy whose slice can be held independently of the source
func (d Dataset) Clone() Dataset {
	if d == nil {
		return nil
	}
	out := make(Dataset, len(d))
	copy(out, d)
	return out
}
