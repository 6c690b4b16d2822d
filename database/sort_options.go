package database

const (
	SortCountDesc = "count"
	SortNameAsc   = "name"
	SortNameNat   = "name_nat"
)

const DefaultSortOrder = SortCountDesc

// IsValidSortOrder checks if a string is a valid sort order constant
func IsValidSortOrder(order string) bool {
	switch order {
	case SortCountDesc, SortNameAsc, SortNameNat:
		return true
	default:
		return false
	}
}
