package corpus

import (
	"encoding/json"
	"fmt"
	"os"
)

// TournamentData is the structured output of the upstream tournament
// extractor. Every section is optional; the builder skips whatever is absent.
// The JSON tags follow the extractor's raw column names verbatim, including
// the scraped-table suffixes on the match and discipline records.
type TournamentData struct {
	Groups         map[string][]string         `json:"groups"`
	Squads         map[string]map[string]Squad `json:"squads"`
	Venues         []Venue                     `json:"venues"`
	ManOfTheMatch  []ManOfTheMatchRecord       `json:"man_of_the_match"`
	Discipline     []DisciplineRecord          `json:"discipline"`
	Referees       []Referee                   `json:"referees"`
	QualifiedTeams []QualifiedTeam             `json:"qualified_teams"`
}

type Squad struct {
	Coach   string   `json:"coach"`
	Players []Player `json:"players"`
}

type Player struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Club     string `json:"club"`
}

type Venue struct {
	Stadium  string `json:"stadium"`
	City     string `json:"city"`
	Capacity string `json:"capacity"`
}

type Referee struct {
	Country           string   `json:"country"`
	Referee           string   `json:"referee"`
	AssistantReferees []string `json:"assistant_referees"`
	MatchesAssigned   string   `json:"matches_assigned"`
}

type QualifiedTeam struct {
	Team                string `json:"Team"`
	QualifiedAs         string `json:"Qualified as"`
	QualifiedOn         string `json:"Qualified on"`
	PreviousAppearances string `json:"Previous appearances in Africa Cup of Nations1"`
}

type ManOfTheMatchRecord struct {
	Stage  string `json:"Stage_Group stage matches"`
	Team1  string `json:"Team 1_Group stage matches"`
	Team2  string `json:"Team 2_Group stage matches"`
	Result string `json:"Result_Group stage matches"`
	Player string `json:"Man of the Match_Group stage matches"`
}

type DisciplineRecord struct {
	Player     string `json:"Player(s)/Official(s)_Group stage suspensions"`
	Offence    string `json:"Offence(s)_Group stage suspensions"`
	Suspension string `json:"Suspension(s)_Group stage suspensions"`
}

// LoadNarrative reads the narrative fragments file (a JSON array of strings).
// A missing file is not fatal; the caller merges whatever sources exist.
func LoadNarrative(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read narrative documents: %w", err)
	}

	var docs []string
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse narrative documents: %w", err)
	}
	return docs, nil
}

// LoadTournamentData reads the structured tournament extraction.
func LoadTournamentData(path string) (*TournamentData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tournament data: %w", err)
	}

	var td TournamentData
	if err := json.Unmarshal(data, &td); err != nil {
		return nil, fmt.Errorf("failed to parse tournament data: %w", err)
	}
	return &td, nil
}
