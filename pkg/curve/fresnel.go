package curve

import (
	"math"
)

// Rational approximations of the Fresnel integrals (Cephes fresnl).

var fresnelSN = []float64{
	-2.99181919401019853726e3,
	7.08840045257738576863e5,
	-6.29741486205862506537e7,
	2.54890880573376359104e9,
	-4.42979518059697779103e10,
	3.18016297876567817986e11,
}

var fresnelSD = []float64{
	2.81376268889994315696e2,
	4.55847810806532581675e4,
	5.17343888770096400730e6,
	4.19320245898111231129e8,
	2.24411795645340920940e10,
	6.07366389490084639049e11,
}

var fresnelCN = []float64{
	-4.98843114573573548651e-8,
	9.50428062829859605134e-6,
	-6.45191435683965050962e-4,
	1.88843319396703850064e-2,
	-2.05525900955013891793e-1,
	9.99999999999999998822e-1,
}

var fresnelCD = []float64{
	3.99982968972495980367e-12,
	9.15439215774657478799e-10,
	1.25001862479598821474e-7,
	1.22262789024179030997e-5,
	8.68029542941784300606e-4,
	4.12142090722199792936e-2,
	1.00000000000000000118e0,
}

var fresnelFN = []float64{
	4.21543555043677546506e-1,
	1.43407919780758885261e-1,
	1.15220955073585758835e-2,
	3.45017939782574027900e-4,
	4.63613749287867322088e-6,
	3.05568983790257605827e-8,
	1.02304514164907233465e-10,
	1.72010743268161828879e-13,
	1.34283276233062758925e-16,
	3.76329711269987889006e-20,
}

var fresnelFD = []float64{
	7.51586398353378947175e-1,
	1.16888925859191382142e-1,
	6.44051526508858611005e-3,
	1.55934409164153020873e-4,
	1.84627567348930545870e-6,
	1.12699224763999035261e-8,
	3.60140029589371370404e-11,
	5.88754533621578410010e-14,
	4.52001434074129701496e-17,
	1.25443237090011264384e-20,
}

var fresnelGN = []float64{
	5.04442073643383265887e-1,
	1.97102833525523411709e-1,
	1.87648584092575249293e-2,
	6.84079380915393090172e-4,
	1.15138826111884280931e-5,
	9.82852443688422223854e-8,
	4.45344415861750144738e-10,
	1.08268041139020870318e-12,
	1.37555460633261799868e-15,
	8.36354435630677421531e-19,
	1.86958710162783235106e-22,
}

var fresnelGD = []float64{
	1.47495759925128324529e0,
	3.37748989120019970451e-1,
	2.53603741420338795122e-2,
	8.14679107184306179049e-4,
	1.27545075667729118702e-5,
	1.04314589657571990585e-7,
	4.60680728146520428211e-10,
	1.10273215066240270757e-12,
	1.38796531259578871258e-15,
	8.39158816283118707363e-19,
	1.86958710162783236342e-22,
}

func polevl(x float64, coef []float64) float64 {
	ans := coef[0]
	for _, c := range coef[1:] {
		ans = ans*x + c
	}
	return ans
}

// p1evl is polevl with an implicit leading coefficient of 1.
func p1evl(x float64, coef []float64) float64 {
	ans := x + coef[0]
	for _, c := range coef[1:] {
		ans = ans*x + c
	}
	return ans
}

// Fresnel returns the Fresnel integrals S(x) = ∫ sin(πt²/2) and C(x) = ∫ cos(πt²/2) over [0, x].
func Fresnel(xx float64) (ss, cc float64) {
	x := math.Abs(xx)
	x2 := x * x

	switch {
	case x2 < 2.5625:
		t := x2 * x2
		ss = x * x2 * polevl(t, fresnelSN) / p1evl(t, fresnelSD)
		cc = x * polevl(t, fresnelCN) / polevl(t, fresnelCD)
	case x > 36974.0:
		ss, cc = 0.5, 0.5
	default:
		t := math.Pi * x2
		u := 1.0 / (t * t)
		t = 1.0 / t
		f := 1.0 - u*polevl(u, fresnelFN)/p1evl(u, fresnelFD)
		g := t * polevl(u, fresnelGN) / p1evl(u, fresnelGD)

		sin, cos := math.Sincos(math.Pi / 2 * x2)
		t = math.Pi * x
		cc = 0.5 + (f*sin-g*cos)/t
		ss = 0.5 - (f*cos+g*sin)/t
	}

	if xx < 0 {
		cc, ss = -cc, -ss
	}
	return ss, cc
}

// OdrSpiral evaluates the normalized clothoid starting at the origin with heading 0 and
// curvature rate cDot at arc length s. It returns position and heading.
func OdrSpiral(s, cDot float64) (x, y, t float64) {
	a := math.Sqrt(math.Pi) / math.Sqrt(math.Abs(cDot))

	y, x = Fresnel(s / a)
	x *= a
	y *= a
	if cDot < 0 {
		y = -y
	}

	t = s * s * cDot * 0.5
	return x, y, t
}
