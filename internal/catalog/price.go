package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// NormalizePrice converts a wire price to a number. The backend has
// sent both plain numbers (80, 80.5) and formatted strings ("₹80",
// "Rs. 80", "1,299"); all of them normalize here, before anything
// reaches the cart.
func NormalizePrice(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("price missing")
	}

	var numeric float64
	if err := json.Unmarshal(raw, &numeric); err == nil {
		if numeric < 0 {
			return 0, fmt.Errorf("negative price %v", numeric)
		}
		return numeric, nil
	}

	var formatted string
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return 0, fmt.Errorf("price is neither number nor string: %s", string(raw))
	}

	cleaned := stripFormatting(formatted)
	if cleaned == "" {
		return 0, fmt.Errorf("price string %q holds no digits", formatted)
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable price string %q", formatted)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative price %q", formatted)
	}
	return value, nil
}

// stripFormatting drops currency symbols, letters, spaces and grouping
// commas, keeping digits, a decimal point between digits and a leading
// minus. The point rule matters: "Rs. 80" must clean to "80", not ".80".
func stripFormatting(s string) string {
	var b strings.Builder
	lastWasDigit := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
			lastWasDigit = true
		case r == '.' && lastWasDigit:
			b.WriteRune(r)
			lastWasDigit = false
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
