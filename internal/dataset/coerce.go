package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"klothdash/pkg/contracts/domain"
)

// maxExcelSerial is 9999-12-31 in the 1900 date system
const maxExcelSerial = 2958465

// dateLayouts are the textual date formats accepted besides spreadsheet serials
var dateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"02/01/2006",
	"2-Jan-2006",
	"January 2, 2006",
}

var weekdaySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(domain.Weekdays))
	for _, d := range domain.Weekdays {
		set[d] = struct{}{}
	}
	return set
}()

// parseNumber coerces a cell to float64. Anything unparseable is 0.
func parseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseDate coerces a cell to a calendar date. Spreadsheet serials count days
// from 1899-12-30; unparseable values yield an absent date.
func parseDate(raw string) domain.NullDate {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.NullDate{}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 0 || serial > maxExcelSerial || math.IsNaN(serial) {
			return domain.NullDate{}
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return domain.NullDate{}
		}
		return domain.NewDate(t)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.NewDate(t)
		}
	}
	return domain.NullDate{}
}

// parseText normalizes a text cell
func parseText(raw string) string {
	return strings.TrimSpace(raw)
}

// weekdayNormalizer title-cases weekday names. A Caser is stateful, so each
// load gets its own normalizer.
type weekdayNormalizer struct {
	caser cases.Caser
}

func newWeekdayNormalizer() *weekdayNormalizer {
	return &weekdayNormalizer{caser: cases.Title(language.English)}
}

// normalize returns the canonical weekday name, or raw unchanged when the
// value is not a weekday
func (n *weekdayNormalizer) normalize(raw string) string {
	titled := n.caser.String(strings.TrimSpace(raw))
	if _, ok := weekdaySet[titled]; ok {
		return titled
	}
	return raw
}
