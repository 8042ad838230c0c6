package rules

/*
ApplyConwayRules decides whether a cell is alive in the next generation.

	0 or 1 neighbours -> dead (underpopulation)
	2 neighbours      -> unchanged
	3 neighbours      -> alive (survival or reproduction)
	4 or more         -> dead (overpopulation)
*/
func ApplyConwayRules(neighbors int, alive bool) bool {
	switch neighbors {
	case 2:
		return alive
	case 3:
		return true
	default:
		return false
	}
}
