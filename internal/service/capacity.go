package service

import (
	"strconv"
	"strings"
)

// timeToMinutes converts a wall-clock "HH:MM" string to minutes since
// midnight. Malformed input yields 0.
func timeToMinutes(t string) int {
	parts := strings.Split(t, ":")
	if len(parts) != 2 {
		return 0
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return hours*60 + minutes
}

// CalculateStaggeredSessions returns the total number of sellable sessions for
// a day with the given business hours, session duration and cleaning buffer
// (minutes), tank count, and stagger interval between each tank's first start.
//
// Tanks start staggered, so a later tank has a shorter usable window. The
// total assumes every tank fits as many sessions as the best-placed one:
// max-over-tanks(sessions) * tankCount. A close time at or before the open
// time is treated as next-day to support overnight windows. Any missing or
// invalid input yields 0.
func CalculateStaggeredSessions(openTime, closeTime string, duration, buffer, numberOfTanks, staggerInterval int) int {
	if openTime == "" || closeTime == "" || duration <= 0 || buffer < 0 || numberOfTanks <= 0 {
		return 0
	}

	openMinutes := timeToMinutes(openTime)
	closeMinutes := timeToMinutes(closeTime)
	if closeMinutes <= openMinutes {
		closeMinutes += 24 * 60
	}

	sessionLength := duration + buffer
	maxSessionsPerTank := 0

	for tankIndex := 0; tankIndex < numberOfTanks; tankIndex++ {
		tankStart := openMinutes + tankIndex*staggerInterval
		availableTime := closeMinutes - tankStart
		if availableTime <= 0 {
			continue
		}
		tankSessions := availableTime / sessionLength
		if tankSessions > maxSessionsPerTank {
			maxSessionsPerTank = tankSessions
		}
	}

	return maxSessionsPerTank * numberOfTanks
}
