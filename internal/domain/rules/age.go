package rules

import "time"

const MinProfileAge = 18

func AgeYears(birthdate, now time.Time) int {
	b := birthdate.UTC()
	n := now.UTC()

	years := n.Year() - b.Year()
	if n.Month() < b.Month() || (n.Month() == b.Month() && n.Day() < b.Day()) {
		years--
	}

	return years
}
