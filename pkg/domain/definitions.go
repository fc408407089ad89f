package domain

// Definitions is a batch of definitions produced by a manifest or the DSL.
// Parameters are registered first, then commands, then cycles, each in slice order.
type Definitions struct {
	Parameters []Parameter
	Commands   []Command
	Cycles     []Cycle
}

// Merge appends other's definitions after d's.
func (d *Definitions) Merge(other Definitions) {
	d.Parameters = append(d.Parameters, other.Parameters...)
	d.Commands = append(d.Commands, other.Commands...)
	d.Cycles = append(d.Cycles, other.Cycles...)
}

// Empty reports whether the batch holds nothing.
func (d Definitions) Empty() bool {
	return len(d.Parameters) == 0 && len(d.Commands) == 0 && len(d.Cycles) == 0
}
