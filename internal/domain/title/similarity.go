package title

import (
	"math"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Score returns the Sørensen–Dice bigram coefficient of two normalized title
// strings, in [0, 1]. Symmetric, and 1.0 for equal inputs — two empty strings
// count as maximally similar. Inputs shorter than one bigram after space
// removal score 0 against anything they do not equal.
func Score(a, b string) float64 {
	a = strings.ReplaceAll(a, " ", "")
	b = strings.ReplaceAll(b, " ", "")
	if a == b {
		return 1.0
	}
	if len(a) < 2 || len(b) < 2 {
		return 0.0
	}
	return float64(edlib.SorensenDiceCoefficient(a, b, 2))
}

// Percent converts a [0, 1] score to a rounded 0–100 percentage.
func Percent(score float64) int {
	return int(math.Round(score * 100))
}
