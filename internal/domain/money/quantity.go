package money

// Quantity is a non-negative item count. Construct via NewQuantity so the
// non-negativity invariant always holds; fractional inputs are rejected
// upstream by JSON number decoding into an int.
type Quantity int

// NewQuantity constructs a Quantity, rejecting negative values.
func NewQuantity(v int) (Quantity, error) {
	if v < 0 {
		return 0, &ValidationError{Msg: "la quantité ne peut pas être négative"}
	}
	return Quantity(v), nil
}

// Int returns the quantity as a plain int.
func (q Quantity) Int() int {
	return int(q)
}

// IsZero reports whether the quantity is zero.
func (q Quantity) IsZero() bool {
	return q == 0
}

// Add returns the sum of two quantities.
func (q Quantity) Add(other Quantity) Quantity {
	return q + other
}
