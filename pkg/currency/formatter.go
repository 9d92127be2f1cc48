package currency

import (
	"fmt"
	"math"
	"strconv"
)

func FormatPoints(points int) string {
	negative := points < 0
	if negative {
		points = -points
	}

	formatted := addThousandsSeparator(strconv.Itoa(points), ",")
	if negative {
		formatted = "-" + formatted
	}

	return formatted
}

func FormatCash(amount float64, code string) string {
	rounded := math.Round(amount*100) / 100

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	intPart := math.Floor(rounded)
	cents := int(math.Round((rounded - intPart) * 100))

	intStr := fmt.Sprintf("%.0f", intPart)
	formatted := addThousandsSeparator(intStr, ",")

	result := fmt.Sprintf("%s %s.%02d", code, formatted, cents)
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
