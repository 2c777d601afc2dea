package domain

import "math"

// Математические константы
const (
	// Epsilon - допуск сравнения весов
	Epsilon = 1e-9
	// NoVertex - сентинел для предка источника и недостижимых вершин
	NoVertex = -1
)

// Infinity - расстояние до недостижимой вершины и вес отсутствующего ребра
var Infinity = math.Inf(1)

// IsInf проверяет, что значение равно +Inf
func IsInf(v float64) bool {
	return math.IsInf(v, 1)
}

// AddDistances складывает расстояния так, что +Inf поглощает любое конечное значение
func AddDistances(a, b float64) float64 {
	if IsInf(a) || IsInf(b) {
		return Infinity
	}
	return a + b
}

// FloatEquals сравнивает два float64 с учётом Epsilon. Две бесконечности одного знака равны.
func FloatEquals(a, b float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) < Epsilon
}

// FloatLess проверяет a < b с учётом Epsilon
func FloatLess(a, b float64) bool {
	return a < b-Epsilon
}
