package discord

import (
	"fmt"
	"math"
)

func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	result := ""
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(digit)
	}
	return result
}

func formatNumberShort(n int) string {
	if n < 0 {
		return "-" + formatNumberShort(-n)
	}
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", float64(n)/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.0fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}

func formatSignedMoney(n int) string {
	if n >= 0 {
		return "+$" + formatNumberShort(n)
	}
	return "-$" + formatNumberShort(-n)
}

func formatSigned(v float64) string {
	if math.Abs(v) < 0.05 {
		return "0"
	}
	return fmt.Sprintf("%+.1f", v)
}
