package game

// Pure income math. Callers pass consistent snapshots; nothing here touches
// the store.

// RateOfLife is a city's quality-of-life figure: development scaled by the
// game-wide ecorate. A dead city (development 0) rates 0 at any ecorate.
func RateOfLife(development, ecorate int) int {
	return development * ecorate / 100
}

// CityIncome is the round income a single city generates.
func CityIncome(development, ecorate int, coefficient float64) float64 {
	return coefficient * float64(RateOfLife(development, ecorate))
}

// SanctionFactor discounts a planet's income for the sanctions against it.
// With no sanctions the factor is exactly 1; it falls as the sanction count
// grows relative to the number of planets in the game. Settlement and
// reporting both use this single definition.
func SanctionFactor(planets, sanctions int) float64 {
	if planets <= 0 {
		return 0
	}
	factor := float64(planets-sanctions) / (float64(planets) * float64(sanctions+1))
	if factor < 0 {
		return 0
	}
	if factor > 1 {
		return 1
	}
	return factor
}

// PlanetIncome sums city income across all of a planet's cities, dead ones
// included, and applies the sanction discount. The result is truncated to
// whole currency units.
func PlanetIncome(developments []int, ecorate, planets, sanctions int, coefficient float64) int {
	var total float64
	for _, dev := range developments {
		total += CityIncome(dev, ecorate, coefficient)
	}
	return int(total * SanctionFactor(planets, sanctions))
}

// PlanetRateOfLife averages rate of life over living cities only. It feeds
// display and reporting, not the economy.
func PlanetRateOfLife(developments []int, ecorate int) float64 {
	living := 0
	sum := 0
	for _, dev := range developments {
		if dev == 0 {
			continue
		}
		living++
		sum += RateOfLife(dev, ecorate)
	}
	if living == 0 {
		return 0
	}
	return float64(sum) / float64(living)
}
