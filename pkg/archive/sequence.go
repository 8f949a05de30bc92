package archive

import (
	"sort"
	"strings"
)

// Compare orders entry names the way readers expect pages to fall:
// digit runs compare as whole numbers, everything else byte by byte
// with ASCII case folded. "page_2" therefore sorts before "page_10".
func Compare(a, b string) int {
	for a != "" && b != "" {
		if isDigit(a[0]) && isDigit(b[0]) {
			runA, restA := splitDigits(a)
			runB, restB := splitDigits(b)
			if c := compareDigitRuns(runA, runB); c != 0 {
				return c
			}
			a, b = restA, restB
			continue
		}

		ca, cb := foldByte(a[0]), foldByte(b[0])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		a, b = a[1:], b[1:]
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// SortNames sorts in place. The sort is stable so names that compare
// equal (for example "2.png" and "02.png") keep their archive order.
func SortNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return Compare(names[i], names[j]) < 0
	})
}

func splitDigits(s string) (run, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// compareDigitRuns compares numerically without integer conversion, so
// arbitrarily long runs cannot overflow.
func compareDigitRuns(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func foldByte(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
