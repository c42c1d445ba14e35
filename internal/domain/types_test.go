package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPlayerJSONContract(t *testing.T) {
	posID := int64(3)
	tests := []struct {
		name       string
		player     Player
		wantSubstr []string
		notSubstr  []string
	}{
		{
			name: "without association",
			player: Player{
				ID:        1,
				Name:      "John",
				BirthDate: time.Date(1990, time.March, 7, 0, 0, 0, 0, time.UTC),
				Weight:    210,
				Height:    6.5,
				Origin:    "USA",
			},
			wantSubstr: []string{`"birth_date":"1990-03-07T00:00:00Z"`, `"weight":210`, `"height":6.5`, `"origin":"USA"`},
			notSubstr:  []string{`PlayerTeam`},
		},
		{
			name: "with association",
			player: Player{
				ID:         2,
				Name:       "Johnny",
				PlayerTeam: &PlayerTeam{PlayerID: 2, TeamID: 9, PositionID: &posID},
			},
			wantSubstr: []string{`"PlayerTeam":{"player_id":2,"team_id":9,"position_id":3}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.player)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			got := string(b)
			for _, s := range tt.wantSubstr {
				if !strings.Contains(got, s) {
					t.Errorf("expected %s in %s", s, got)
				}
			}
			for _, s := range tt.notSubstr {
				if strings.Contains(got, s) {
					t.Errorf("did not expect %s in %s", s, got)
				}
			}
		})
	}
}

func TestBirthDateParsesAsISO(t *testing.T) {
	b, err := json.Marshal(Player{BirthDate: time.Date(2001, time.December, 31, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatal(err)
	}
	s, ok := raw["birth_date"].(string)
	if !ok {
		t.Fatalf("birth_date not a string: %T", raw["birth_date"])
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		t.Errorf("birth_date %q is not RFC 3339: %v", s, err)
	}
}
