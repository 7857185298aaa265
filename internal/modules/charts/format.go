package charts

import "strconv"

// formatLambda prints the shortest representation, so 2.5 stays "2.5" and 1 is "1".
func formatLambda(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
