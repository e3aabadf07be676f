package filter

// BuiltinPresets returns the named threshold sets that ship with the
// scanner. A saved preset with the same name takes precedence.
func BuiltinPresets() map[string]Config {
	return map[string]Config{
		"conservative": {
			MinOpenInterest: 200,
			MaxSpreadPct:    20,
			DTEMin:          2,
			DTEMax:          10,
			MinPrice:        1.0,
			MaxPrice:        500,
		},
		"standard": {
			MinOpenInterest: 50,
			MaxSpreadPct:    40,
			DTEMin:          0,
			DTEMax:          14,
			MinPrice:        0.15,
			MaxPrice:        500,
		},
		"aggressive": {
			MinOpenInterest: 25,
			MaxSpreadPct:    60,
			DTEMin:          0,
			DTEMax:          21,
			MinPrice:        0.05,
			MaxPrice:        1000,
		},
	}
}
