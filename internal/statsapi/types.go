package statsapi

import "time"

// Raw wire shapes for the subset of the Stats API this service consumes.
// Stat maps stay map[string]any until normalized; the upstream mixes string
// and numeric encodings per field.

type scheduleResponse struct {
	Dates []struct {
		Date  string            `json:"date"`
		Games []rawScheduleGame `json:"games"`
	} `json:"dates"`
}

type rawScheduleGame struct {
	GamePk   int64     `json:"gamePk"`
	GameDate time.Time `json:"gameDate"`
	Status   struct {
		AbstractGameState string `json:"abstractGameState"`
		DetailedState     string `json:"detailedState"`
	} `json:"status"`
	Teams struct {
		Away rawScheduleSide `json:"away"`
		Home rawScheduleSide `json:"home"`
	} `json:"teams"`
}

type rawScheduleSide struct {
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	ProbablePitcher struct {
		ID       int    `json:"id"`
		FullName string `json:"fullName"`
	} `json:"probablePitcher"`
}

type peopleResponse struct {
	People []struct {
		ID        int    `json:"id"`
		FullName  string `json:"fullName"`
		PitchHand struct {
			Code string `json:"code"`
		} `json:"pitchHand"`
	} `json:"people"`
}

type statsResponse struct {
	Stats []struct {
		Type struct {
			DisplayName string `json:"displayName"`
		} `json:"type"`
		Splits []rawStatSplit `json:"splits"`
	} `json:"stats"`
}

type rawStatSplit struct {
	Season string         `json:"season"`
	Date   string         `json:"date"`
	Stat   map[string]any `json:"stat"`
	Split  struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"split"`
}

type rosterResponse struct {
	Roster []struct {
		Person struct {
			ID       int    `json:"id"`
			FullName string `json:"fullName"`
		} `json:"person"`
		Position struct {
			Abbreviation string `json:"abbreviation"`
			Type         string `json:"type"`
		} `json:"position"`
	} `json:"roster"`
}

type boxscoreResponse struct {
	Teams struct {
		Away rawBoxscoreSide `json:"away"`
		Home rawBoxscoreSide `json:"home"`
	} `json:"teams"`
}

type rawBoxscoreSide struct {
	Team struct {
		ID int `json:"id"`
	} `json:"team"`
	TeamStats struct {
		Batting map[string]any `json:"batting"`
	} `json:"teamStats"`
}
