package format

import (
	"encoding/json"
	"fmt"
	"html"
	"math"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-tablegen/pkg/model"
)

var currencySymbols = map[string]string{
	"JPY": "¥",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CNY": "¥",
	"KRW": "₩",
}

// zero-decimal currencies
var wholeCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
}

func (f *Formatter) number(raw any, layout string) (string, bool) {
	n, ok := toFloat(raw)
	if !ok {
		return "", false
	}
	if layout != "" && strings.Contains(layout, "%") {
		return fmt.Sprintf(layout, n), true
	}
	decimals := -1
	if n == math.Trunc(n) {
		decimals = 0
	}
	return group(n, decimals), true
}

func (f *Formatter) currency(raw any) (string, bool) {
	n, ok := toFloat(raw)
	if !ok {
		return "", false
	}
	code := strings.ToUpper(strings.TrimSpace(f.settings.Currency))
	decimals := 2
	if wholeCurrencies[code] {
		decimals = 0
	}
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	amount := group(n, decimals)
	switch symbol, known := currencySymbols[code]; {
	case known:
		return sign + symbol + amount, true
	case code != "":
		return sign + code + " " + amount, true
	default:
		return sign + amount, true
	}
}

// group formats n with thousands separators. decimals < 0 keeps the shortest
// representation.
func group(n float64, decimals int) string {
	text := strconv.FormatFloat(n, 'f', decimals, 64)
	sign := ""
	if strings.HasPrefix(text, "-") {
		sign, text = "-", text[1:]
	}
	whole, frac, hasFrac := strings.Cut(text, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

func formatTime(raw any, layout string) (string, bool) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return "", false
		}
		return v.Format(layout), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return "", false
		}
		return v.Format(layout), true
	case string:
		text := strings.TrimSpace(v)
		for _, candidate := range timeLayouts {
			if t, err := time.Parse(candidate, text); err == nil {
				return t.Format(layout), true
			}
		}
	}
	return "", false
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return 0, false
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1", "on":
			return true, true
		case "false", "no", "0", "off":
			return false, true
		}
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		return v != 0, true
	case json.Number:
		f, err := v.Float64()
		return f != 0, err == nil
	}
	return false, false
}

// safeURL accepts absolute http(s) URLs and site-relative paths.
func safeURL(link string) bool {
	if link == "" || strings.ContainsAny(link, " \t\n\"<>") {
		return false
	}
	if strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//") {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// fileLink renders a download link from a path string or a {name, url, size}
// object. It reports false when no usable URL is present.
func fileLink(raw any) (string, string, bool) {
	var name, link string
	var size any
	switch v := raw.(type) {
	case string:
		link = strings.TrimSpace(v)
	case model.Record:
		name = stringField(v.Map(), "name")
		link = stringField(v.Map(), "url", "path")
		size, _ = v.Get("size")
	case map[string]any:
		name = stringField(v, "name")
		link = stringField(v, "url", "path")
		size = v["size"]
	default:
		return "", "", false
	}
	if !safeURL(link) {
		return "", "", false
	}
	if name == "" {
		name = path.Base(strings.SplitN(link, "?", 2)[0])
	}

	var b strings.Builder
	b.WriteString(`<a class="tablegen-file" href="`)
	b.WriteString(html.EscapeString(link))
	b.WriteString(`" download>`)
	b.WriteString(html.EscapeString(name))
	b.WriteString(`</a>`)
	if bytes, ok := toFloat(size); ok && bytes > 0 {
		b.WriteString(` <span class="tablegen-file-size">(`)
		n := int64(math.MaxInt64)
		if bytes < math.MaxInt64 {
			n = int64(bytes)
		}
		b.WriteString(HumanSize(n))
		b.WriteString(`)</span>`)
	}
	return name, b.String(), true
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok && !model.IsEmptyValue(v) {
			return strings.TrimSpace(model.Stringify(v))
		}
	}
	return ""
}

// HumanSize formats a byte count with binary units.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
