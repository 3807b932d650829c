// The seeder posts a small synthetic season to a running API instance for
// local smoke testing.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	BASE_URL = "http://localhost:8080/api/v1"
	SEASON   = 2026
)

type boxScore struct {
	GameID      string    `json:"game_id"`
	AthleteID   string    `json:"athlete_id"`
	AthleteName string    `json:"athlete_name"`
	Team        string    `json:"team"`
	Date        time.Time `json:"date"`
	Season      int       `json:"season"`
	Points      int       `json:"points"`
	TotReb      int       `json:"tot_reb"`
	Ast         int       `json:"ast"`
	FGMade      int       `json:"fg_made"`
	FGAtt       int       `json:"fg_att"`
	Started     bool      `json:"started"`
	Win         bool      `json:"win"`
}

type gameResult struct {
	GameID     string    `json:"game_id"`
	Date       time.Time `json:"date"`
	TeamWinner string    `json:"team_winner"`
	TeamLoser  string    `json:"team_loser"`
	PtsWinner  int       `json:"pts_winner"`
	PtsLoser   int       `json:"pts_loser"`
	Season     int       `json:"season"`
}

type fixture struct {
	Date        time.Time `json:"date"`
	TeamHome    string    `json:"team_home"`
	TeamVisitor string    `json:"team_visitor"`
	Season      int       `json:"season"`
}

type rating struct {
	AthleteExternalID string   `json:"athlete_external_id"`
	Position          string   `json:"position"`
	Value             *float64 `json:"initial_value"`
	Season            int      `json:"season"`
}

func main() {
	day := func(n int) time.Time {
		return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, n)
	}
	val := func(v float64) *float64 { return &v }

	post("/ingest/boxscores", []boxScore{
		{GameID: "seed-g1", AthleteID: "seed-p1", AthleteName: "Jayson Tatum", Team: "Boston",
			Date: day(-4), Season: SEASON, Points: 28, TotReb: 8, Ast: 5, FGMade: 10, FGAtt: 19, Started: true, Win: true},
		{GameID: "seed-g2", AthleteID: "seed-p1", AthleteName: "Jayson Tatum", Team: "Boston",
			Date: day(-2), Season: SEASON, Points: 19, TotReb: 6, Ast: 3, FGMade: 7, FGAtt: 16, Started: true, Win: false},
		{GameID: "seed-g1", AthleteID: "seed-p2", AthleteName: "Bam Adebayo", Team: "Miami",
			Date: day(-4), Season: SEASON, Points: 15, TotReb: 11, Ast: 4, FGMade: 6, FGAtt: 12, Started: true, Win: false},
	})

	post("/ingest/games", []gameResult{
		{GameID: "seed-g1", Date: day(-4), TeamWinner: "Boston", TeamLoser: "Miami",
			PtsWinner: 112, PtsLoser: 104, Season: SEASON},
		{GameID: "seed-g2", Date: day(-2), TeamWinner: "Miami", TeamLoser: "Boston",
			PtsWinner: 101, PtsLoser: 96, Season: SEASON},
	})

	post("/ingest/fixtures", []fixture{
		{Date: day(3), TeamHome: "Boston", TeamVisitor: "Miami", Season: SEASON},
	})

	post("/ingest/ratings", []rating{
		{AthleteExternalID: "11/jayson-tatum", Position: "F", Value: val(28), Season: SEASON},
		{AthleteExternalID: "12/bam-adebayo", Position: "C", Value: val(20), Season: SEASON},
	})

	// Give the worker pool a moment to flush before triggering a run.
	time.Sleep(2 * time.Second)
	post("/runs", nil)
}

func post(path string, payload interface{}) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Fatalf("Failed to marshal payload for %s: %v", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest("POST", BASE_URL+path+fmt.Sprintf("?season=%d", SEASON), body)
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("POST %s -> %s\n%s\n", path, resp.Status, string(respBody))
}
