package handicap

// Established reports whether totalHolesPlayed is enough for a publishable
// index.
func Established(totalHolesPlayed int) bool {
	return totalHolesPlayed >= EstablishedHoles
}

// HolesRemaining is how many more holes are needed before the index is
// established. It is never negative.
func HolesRemaining(totalHolesPlayed int) int {
	return max(0, EstablishedHoles-totalHolesPlayed)
}
