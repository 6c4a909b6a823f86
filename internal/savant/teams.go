package savant

// TeamAbbr maps MLB Stats API team ids to the abbreviations Baseball Savant
// uses in its statcast_search CSV export. All 30 clubs.
var TeamAbbr = map[int]string{
	108: "LAA",
	109: "ARI",
	110: "BAL",
	111: "BOS",
	112: "CHC",
	113: "CIN",
	114: "CLE",
	115: "COL",
	116: "DET",
	117: "HOU",
	118: "KC",
	119: "LAD",
	120: "WSH",
	121: "NYM",
	133: "OAK",
	134: "PIT",
	135: "SD",
	136: "SEA",
	137: "SF",
	138: "STL",
	139: "TB",
	140: "TEX",
	141: "TOR",
	142: "MIN",
	143: "PHI",
	144: "ATL",
	145: "CWS",
	146: "MIA",
	147: "NYY",
	158: "MIL",
}
