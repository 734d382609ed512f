package classifier

// Tables holds the static signal configuration the engine scores against.
// The sets below are data, not logic: operators tune them without touching
// the scoring code.
type Tables struct {
	// SellerHandleKeywords strongly suggest seller activity (highest risk).
	SellerHandleKeywords []string
	// SuspiciousHandleKeywords suggest suspicious content (lower risk).
	SuspiciousHandleKeywords []string
	// SuspiciousKeywords are matched against every text field.
	SuspiciousKeywords []string
	// SuspiciousEmoji are matched literally in display name and description.
	SuspiciousEmoji []string
	// HighRiskPhrases are strong group/marketplace indicators.
	HighRiskPhrases []string
	// DisplayNamePhrases are weaker indicators checked in display names only.
	DisplayNamePhrases []string
	// LeetSubstitutions folds common obfuscation characters before fuzzy
	// matching. Single-rune substitutions only.
	LeetSubstitutions map[rune]rune
}

// DefaultTables returns the canonical signal configuration.
func DefaultTables() Tables {
	return Tables{
		SellerHandleKeywords: []string{
			"vendo_cp", "cpsel", "psel", "cp_vendo", "cp-seller", "cp.seller", "cpvenda", "cpseller",
		},
		SuspiciousHandleKeywords: []string{
			"hotlinks", "new_18+_links", "megalink", "link18", "linkcp", "cpgroup", "cpchat", "cp18", "cpanon", "cpfree",
		},
		SuspiciousKeywords: []string{
			"link in bio", "cp", "hot", "links", "estupr0", "rape", "vendo", "psel", "megalink",
		},
		SuspiciousEmoji: []string{
			"\U0001F525", // fire
			"\U0001F4A6", // sweat droplets
			"\U0001F51E", // no one under eighteen
			"\U0001F512", // lock
			"\U0001F4E9", // envelope with arrow
			"\U0001F4A5", // collision
			"\U0001F517", // link
			"\U0001F975", // hot face
		},
		HighRiskPhrases: []string{
			"group", "mega", "megas", "dm", "cp group", "data sellar", "dm best contant", "cp status",
		},
		DisplayNamePhrases: []string{
			"best deal", "promo", "unlimited", "status", "group", "mega", "links", "new", "cp", "hot",
		},
		LeetSubstitutions: map[rune]rune{
			'a': '4',
			'b': '6',
			'e': '3',
			'g': '9',
			'i': '1',
			'l': '1',
			'o': '0',
			's': '$',
			't': '7',
		},
	}
}
