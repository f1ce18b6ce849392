package corpus

import (
	"fmt"
	"sort"
	"strings"

	prose "github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

const (
	placeholder = "Unknown"

	// Narrative fragments longer than this are split on sentence boundaries
	// so a single sprawling page section does not dominate retrieval.
	maxNarrativeLen = 1200

	maxMatchAwards       = 20
	maxDisciplineEntries = 15
)

// Build merges all corpus sources into one ordered, flat document list:
// narrative fragments first, then structured records rendered through fixed
// sentence templates. The resulting order is the permanent position-to-text
// mapping for the index, so it must stay deterministic across rebuilds.
// Duplicate documents across sources are kept as-is.
func Build(narrative []string, data *TournamentData) []string {
	documents := chunkNarrative(narrative)

	if data != nil {
		documents = append(documents, formatGroups(data.Groups)...)
		documents = append(documents, formatSquads(data.Squads)...)
		documents = append(documents, formatVenues(data.Venues)...)
		documents = append(documents, formatManOfTheMatch(data.ManOfTheMatch)...)
		documents = append(documents, formatDiscipline(data.Discipline)...)
		documents = append(documents, formatReferees(data.Referees)...)
		documents = append(documents, formatQualifiedTeams(data.QualifiedTeams)...)
	}

	logger.Info("Corpus built", zap.Int("documents", len(documents)))
	return documents
}

// chunkNarrative keeps short fragments whole and splits long ones into
// sentence-bounded chunks, preserving the original fragment order.
func chunkNarrative(fragments []string) []string {
	var documents []string

	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		if len(fragment) <= maxNarrativeLen {
			documents = append(documents, fragment)
			continue
		}
		documents = append(documents, splitSentences(fragment)...)
	}

	return documents
}

func splitSentences(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		logger.Warn("Sentence segmentation failed, keeping fragment whole", zap.Error(err))
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, sentence := range doc.Sentences() {
		if current.Len() > 0 && current.Len()+len(sentence.Text)+1 > maxNarrativeLen {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence.Text)
	}
	flush()

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

func formatGroups(groups map[string][]string) []string {
	var documents []string

	for _, groupName := range sortedKeys(groups) {
		teams := groups[groupName]
		if len(teams) == 0 {
			continue
		}
		name := strings.ToUpper(strings.TrimSpace(groupName))
		documents = append(documents, fmt.Sprintf(
			"AFCON 2025 FINAL TOURNAMENT %s teams: %s", name, strings.Join(teams, ", ")))
	}

	return documents
}

func formatSquads(squads map[string]map[string]Squad) []string {
	var documents []string

	for _, groupName := range sortedKeys(squads) {
		group := squads[groupName]
		for _, teamName := range sortedKeys(group) {
			if teamName == "" {
				continue
			}
			squad := group[teamName]

			var players []string
			for _, player := range squad.Players {
				name := orPlaceholder(player.Name)
				position := orPlaceholder(player.Position)
				club := orPlaceholder(player.Club)
				players = append(players, fmt.Sprintf("%s (%s, %s)", name, position, club))
			}
			if len(players) > 0 {
				documents = append(documents, fmt.Sprintf(
					"%s squad players in %s: %s", teamName, groupName, strings.Join(players, "; ")))
			}

			if squad.Coach != "" {
				documents = append(documents, fmt.Sprintf(
					"Coach of %s in %s: %s", teamName, groupName, squad.Coach))
			}
		}
	}

	return documents
}

func formatVenues(venues []Venue) []string {
	var documents []string

	for _, venue := range venues {
		documents = append(documents, fmt.Sprintf(
			"Stadium: %s in %s. Capacity: %s",
			orPlaceholder(venue.Stadium),
			orPlaceholder(venue.City),
			orPlaceholder(venue.Capacity),
		))
	}

	return documents
}

func formatManOfTheMatch(records []ManOfTheMatchRecord) []string {
	var awards []string

	for _, record := range records {
		if record.Stage == "" || strings.Contains(record.Stage, "Knock-out") {
			continue
		}
		if record.Team1 == "" || record.Team2 == "" {
			continue
		}
		if record.Player == "" || record.Player == "NaN" {
			continue
		}
		awards = append(awards, fmt.Sprintf(
			"%s vs %s (%s): %s", record.Team1, record.Team2, record.Result, record.Player))
		if len(awards) == maxMatchAwards {
			break
		}
	}

	if len(awards) == 0 {
		return nil
	}
	return []string{"Players of the Match: " + strings.Join(awards, "; ")}
}

func formatDiscipline(records []DisciplineRecord) []string {
	var entries []string

	for _, record := range records {
		if record.Player == "" || record.Player == "Knock-out stage suspensions" {
			continue
		}
		entries = append(entries, fmt.Sprintf(
			"%s: %s → %s", record.Player, record.Offence, record.Suspension))
		if len(entries) == maxDisciplineEntries {
			break
		}
	}

	if len(entries) == 0 {
		return nil
	}
	return []string{"Tournament Discipline Records: " + strings.Join(entries, "; ")}
}

func formatReferees(referees []Referee) []string {
	var documents []string

	for _, ref := range referees {
		name := ref.Referee
		if name == "" {
			name = "Unknown referee"
		}
		country := ref.Country
		if country == "" {
			country = "Unknown country"
		}
		matches := ref.MatchesAssigned
		if matches == "" {
			matches = "Unknown matches"
		}

		assistants := ""
		if len(ref.AssistantReferees) > 0 {
			assistants = " Assistants: " + strings.Join(ref.AssistantReferees, ", ")
		}

		documents = append(documents, fmt.Sprintf(
			"Referee %s from %s officiates matches: %s.%s", name, country, matches, assistants))
	}

	return documents
}

func formatQualifiedTeams(teams []QualifiedTeam) []string {
	var documents []string

	for _, team := range teams {
		name := team.Team
		if name == "" {
			name = "Unknown team"
		}
		qualifiedAs := team.QualifiedAs
		if qualifiedAs == "" {
			qualifiedAs = "Unknown qualification"
		}
		qualifiedOn := team.QualifiedOn
		if qualifiedOn == "" {
			qualifiedOn = "Unknown date"
		}
		appearances := team.PreviousAppearances
		if appearances == "" {
			appearances = "Unknown appearances"
		}

		documents = append(documents, fmt.Sprintf(
			"%s qualified for AFCON 2025 as %s on %s. Previous AFCON appearances: %s",
			name, qualifiedAs, qualifiedOn, appearances))
	}

	return documents
}

func orPlaceholder(value string) string {
	if value == "" {
		return placeholder
	}
	return value
}

// sortedKeys gives map sections a stable render order so rebuilding from the
// same input produces the same document sequence.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
