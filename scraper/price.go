package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	priceRe   = regexp.MustCompile(`\$\s*[\d,]+`)
	yearRe    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	mileageRe = regexp.MustCompile(`(?i)(\d[\d,]*k?\s*(?:mi\b|miles?))`)
	parensRe  = regexp.MustCompile(`\(([^()]+)\)`)
	cityRe    = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*,\s*[A-Z]{2})`)
)

// NotAvailable is shown for a price or location the page did not carry.
const NotAvailable = "N/A"

// CleanPrice turns a scraped price into the "$12,345" display form. Text
// that is not a plain number is returned trimmed.
func CleanPrice(s string) string {
	cleaned := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	if cleaned == "" {
		return NotAvailable
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return cleaned
	}
	return "$" + groupThousands(n)
}

// ParsePrice reads a display price back into whole dollars.
func ParsePrice(s string) (int, bool) {
	cleaned := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractYear returns the first model year found in s.
func ExtractYear(s string) string {
	return yearRe.FindString(s)
}

// ParseYear reads a year field. Blank or malformed years report false.
func ParseYear(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// findPrice returns the first dollar amount in text, formatted.
func findPrice(text string) string {
	if m := priceRe.FindString(text); m != "" {
		return CleanPrice(m)
	}
	return ""
}

func findMileage(text string) string {
	if m := mileageRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func groupThousands(n int) string {
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
