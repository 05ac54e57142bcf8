package quant

// LinearModel is an ordinary-least-squares regressor used as the
// stacking meta-model. The design matrix is tiny (one column per base
// learner) so the normal equations are solved directly.
type LinearModel struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

// Predict evaluates the fitted linear model
func (m *LinearModel) Predict(x []float64) float64 {
	out := m.Intercept
	for i, c := range m.Coef {
		out += c * x[i]
	}
	return out
}

// fitLinear solves min ||Xb - y|| with an intercept column via the
// normal equations and Gaussian elimination with partial pivoting.
// A tiny ridge term keeps near-collinear base predictions solvable.
func fitLinear(X [][]float64, y []float64) *LinearModel {
	if len(X) == 0 {
		return &LinearModel{}
	}
	p := len(X[0]) + 1 // intercept first

	// Normal equations: A = X'X, b = X'y (with intercept column)
	A := make([][]float64, p)
	for i := range A {
		A[i] = make([]float64, p)
	}
	b := make([]float64, p)

	for r := range X {
		row := make([]float64, p)
		row[0] = 1
		copy(row[1:], X[r])
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				A[i][j] += row[i] * row[j]
			}
			b[i] += row[i] * y[r]
		}
	}
	const ridge = 1e-10
	for i := 0; i < p; i++ {
		A[i][i] += ridge
	}

	coef := solve(A, b)
	return &LinearModel{Intercept: coef[0], Coef: coef[1:]}
}

// solve performs in-place Gaussian elimination with partial pivoting
func solve(A [][]float64, b []float64) []float64 {
	n := len(b)
	for col := 0; col < n; col++ {
		// Pivot
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(A[r][col]) > abs(A[pivot][col]) {
				pivot = r
			}
		}
		A[col], A[pivot] = A[pivot], A[col]
		b[col], b[pivot] = b[pivot], b[col]

		if A[col][col] == 0 {
			continue
		}

		for r := col + 1; r < n; r++ {
			factor := A[r][col] / A[col][col]
			for c := col; c < n; c++ {
				A[r][c] -= factor * A[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= A[r][c] * x[c]
		}
		if A[r][r] != 0 {
			x[r] = sum / A[r][r]
		}
	}
	return x
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
