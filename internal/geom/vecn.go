package geom

// VecN is a dynamically sized point. Binary operations on vectors of
// different lengths keep the receiver's length and treat missing
// coordinates of the operand as zero.
type VecN []float64

func (v VecN) Dim() int { return len(v) }

func (v VecN) At(i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}

func (v VecN) Add(other VecN) VecN {
	result := make(VecN, len(v))
	for i := range v {
		if i < len(other) {
			result[i] = v[i] + other[i]
		} else {
			result[i] = v[i]
		}
	}
	return result
}

func (v VecN) Sub(other VecN) VecN {
	result := make(VecN, len(v))
	for i := range v {
		if i < len(other) {
			result[i] = v[i] - other[i]
		} else {
			result[i] = v[i]
		}
	}
	return result
}

func (v VecN) Scale(factor float64) VecN {
	result := make(VecN, len(v))
	for i := range v {
		result[i] = v[i] * factor
	}
	return result
}

func (v VecN) Map(fn func(i int, x float64) float64) VecN {
	result := make(VecN, len(v))
	for i, x := range v {
		result[i] = fn(i, x)
	}
	return result
}
