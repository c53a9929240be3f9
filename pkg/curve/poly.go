package curve

// Poly1 is a polynomial in one variable with ascending coefficients: c0 + c1 x + c2 x² + ...
type Poly1 struct {
	coeffs []float64
}

func NewPoly1(coeffs ...float64) Poly1 {
	c := make([]float64, len(coeffs))
	copy(c, coeffs)
	return Poly1{coeffs: c}
}

// Order3FromValueAndDerivative returns the cubic on [0, h] with the given boundary values and slopes.
func Order3FromValueAndDerivative(h, y0, dy0, y1, dy1 float64) Poly1 {
	if h == 0 {
		return NewPoly1(y0, dy0, 0, 0)
	}

	m := (y1 - y0) / h
	c2 := (3*m - 2*dy0 - dy1) / h
	c3 := (dy0 + dy1 - 2*m) / (h * h)
	return NewPoly1(y0, dy0, c2, c3)
}

// Eval evaluates the polynomial with Horner's scheme.
func (p Poly1) Eval(x float64) float64 {
	res := 0.0
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		res = res*x + p.coeffs[i]
	}
	return res
}

func (p Poly1) Der() Poly1 {
	if len(p.coeffs) <= 1 {
		return Poly1{}
	}

	d := make([]float64, len(p.coeffs)-1)
	for i := 1; i < len(p.coeffs); i++ {
		d[i-1] = float64(i) * p.coeffs[i]
	}
	return Poly1{coeffs: d}
}

// Coefficient returns the coefficient of x^i, 0 beyond the degree.
func (p Poly1) Coefficient(i int) float64 {
	if i < 0 || i >= len(p.coeffs) {
		return 0
	}
	return p.coeffs[i]
}

func (p Poly1) Degree() int {
	return len(p.coeffs) - 1
}

// Shift returns q with q(x) = p(x - d).
func (p Poly1) Shift(d float64) Poly1 {
	n := len(p.coeffs)
	res := make([]float64, n)

	// expand c_k (x - d)^k with binomial coefficients
	for k := 0; k < n; k++ {
		binom := 1.0
		pow := 1.0
		for j := k; j >= 0; j-- {
			res[j] += p.coeffs[k] * binom * pow
			binom = binom * float64(j) / float64(k-j+1)
			pow *= -d
		}
	}
	return Poly1{coeffs: res}
}

// Mirror returns q with q(x) = p(1 - x).
func (p Poly1) Mirror() Poly1 {
	n := len(p.coeffs)
	neg := make([]float64, n)
	for k, c := range p.coeffs {
		if k%2 == 1 {
			c = -c
		}
		neg[k] = c
	}
	return Poly1{coeffs: neg}.Shift(1)
}
