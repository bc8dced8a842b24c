package playerdb

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmurley/afl-trade-bot/internal/models"
)

// ErrNoPlayerTable is returned when an HTML page has no table with price and position columns
var ErrNoPlayerTable = errors.New("no player table found")

// Result is a decoded player pool. Skipped counts rows that failed validation
// or repeated an id already seen.
type Result struct {
	Players []models.Player
	Skipped int
}

func (r *Result) add(p *models.Player, seen map[models.PlayerID]bool) {
	if p == nil {
		r.Skipped++
		return
	}
	if seen[p.ID] {
		r.Skipped++
		return
	}
	seen[p.ID] = true
	r.Players = append(r.Players, *p)
}

// ParseJSON decodes an array of player objects
func ParseJSON(body io.Reader) (*Result, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding player JSON: %w", err)
	}

	result := &Result{Players: make([]models.Player, 0, len(raw))}
	seen := make(map[models.PlayerID]bool, len(raw))
	for _, msg := range raw {
		var p models.Player
		if err := json.Unmarshal(msg, &p); err != nil || p.Validate() != nil {
			result.add(nil, seen)
			continue
		}
		result.add(&p, seen)
	}
	return result, nil
}

// ParseCSV decodes a CSV export whose first row is the header
func ParseCSV(body io.Reader) (*Result, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	data, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(data) < 1 {
		return nil, fmt.Errorf("player CSV has no header row")
	}

	header := models.HeaderIndex(data[0])
	if _, ok := header["price"]; !ok {
		return nil, fmt.Errorf("player CSV has no price column")
	}
	return parseRows(data[1:], header), nil
}

// ParseHTML finds the first table whose header names both price and position
// and decodes its body rows. Tables without an id column use the player name.
func ParseHTML(body io.Reader) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var result *Result
	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() == 0 {
			return true
		}

		headerCells := cellTexts(rows.First().Find("th, td"))
		header := models.HeaderIndex(headerCells)
		_, hasPrice := header["price"]
		_, hasPosition := header["position"]
		if !hasPrice || !hasPosition {
			return true
		}
		if _, ok := header["id"]; !ok {
			nameIdx, ok := header["name"]
			if !ok {
				return true
			}
			header["id"] = nameIdx
		}

		var data [][]string
		rows.Slice(1, rows.Length()).Each(func(j int, row *goquery.Selection) {
			cells := cellTexts(row.Find("td"))
			if len(cells) > 0 {
				data = append(data, cells)
			}
		})
		result = parseRows(data, header)
		return false
	})

	if result == nil {
		return nil, ErrNoPlayerTable
	}
	return result, nil
}

func cellTexts(cells *goquery.Selection) []string {
	out := make([]string, 0, cells.Length())
	cells.Each(func(i int, s *goquery.Selection) {
		out = append(out, strings.Join(strings.Fields(s.Text()), " "))
	})
	return out
}

func parseRows(data [][]string, header map[string]int) *Result {
	result := &Result{Players: make([]models.Player, 0, len(data))}
	seen := make(map[models.PlayerID]bool, len(data))
	for _, row := range data {
		player, err := models.ParsePlayerRow(row, header)
		if err != nil {
			result.add(nil, seen)
			continue
		}
		if player == nil {
			// blank spacer rows
			continue
		}
		result.add(player, seen)
	}
	return result
}
