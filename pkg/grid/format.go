package grid

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// displayLocale drives number grouping in the builtin formats.
var displayLocale = language.English

// BuiltinFormats lists the tags accepted by BuiltinFormat.
var BuiltinFormats = []string{"text", "number", "currency", "percent", "date", "datetime", "upper", "lower", "title"}

// ApplyFormat renders v with a builtin format tag.
func ApplyFormat(tag string, v any) (string, error) {
	fn, ok := builtinFormatter(tag)
	if !ok {
		return "", configErrorf("format", "unknown format %q", tag)
	}
	return fn(v, nil), nil
}

func builtinFormatter(tag string) (FormatFunc, bool) {
	switch tag {
	case "", "text":
		return formatText, true
	case "number":
		return formatNumber, true
	case "currency":
		return formatCurrency, true
	case "percent":
		return formatPercent, true
	case "date":
		return dateFormatter("2006-01-02"), true
	case "datetime":
		return dateFormatter("2006-01-02 15:04"), true
	case "upper":
		return func(v any, row Row) string { return strings.ToUpper(formatText(v, row)) }, true
	case "lower":
		return func(v any, row Row) string { return strings.ToLower(formatText(v, row)) }, true
	case "title":
		return func(v any, row Row) string {
			// Casers are stateful, one per call.
			return cases.Title(displayLocale).String(formatText(v, row))
		}, true
	default:
		return nil, false
	}
}

func formatText(v any, _ Row) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func formatNumber(v any, row Row) string {
	f, ok := toFloat(v)
	if !ok {
		return formatText(v, row)
	}
	p := message.NewPrinter(displayLocale)
	if f == float64(int64(f)) {
		return p.Sprintf("%d", int64(f))
	}
	return p.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

func formatCurrency(v any, row Row) string {
	f, ok := toFloat(v)
	if !ok {
		return formatText(v, row)
	}
	p := message.NewPrinter(displayLocale)
	s := p.Sprint(number.Decimal(abs(f), number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	if f < 0 {
		return "-$" + s
	}
	return "$" + s
}

func formatPercent(v any, row Row) string {
	f, ok := toFloat(v)
	if !ok {
		return formatText(v, row)
	}
	return message.NewPrinter(displayLocale).Sprint(number.Percent(f, number.MaxFractionDigits(1)))
}

func dateFormatter(layout string) FormatFunc {
	return func(v any, row Row) string {
		t, ok := toTime(v)
		if !ok {
			return formatText(v, row)
		}
		return t.Format(layout)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// toFloat converts numeric values and numeric text (currency punctuation
// allowed) to float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case []byte:
		return parseNumber(string(x))
	case string:
		return parseNumber(x)
	default:
		return 0, false
	}
}

// currencyPunct is stripped from numeric text before parsing.
const currencyPunct = "$€£¥, _"

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(currencyPunct, r) {
			return -1
		}
		return r
	}, s)
	clean = strings.TrimSuffix(clean, "%")
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}
