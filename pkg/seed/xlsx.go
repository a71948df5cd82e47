package seed

import (
	"context"
	"strings"
	"time"

	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/storage"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/tealeg/xlsx"
)

// ReadHeroesXLSX reads heroes from the first sheet of an xlsx file. The first row names the
// columns (name, alterEgo, power, rating, powerDate); only name is required. Blank rows are skipped.
func ReadHeroesXLSX(path string) ([]Hero, error) {
	xlFile, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "open xlsx")
	}
	if len(xlFile.Sheets) == 0 || len(xlFile.Sheets[0].Rows) == 0 {
		return nil, errors.New("xlsx has no header row")
	}

	rows := xlFile.Sheets[0].Rows

	columns := map[string]int{}
	for i, cell := range rows[0].Cells {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(cell.String()), " ", ""))
		columns[key] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, errors.New("xlsx header has no name column")
	}

	var heroes []Hero
	for n, row := range rows[1:] {
		get := func(column string) string {
			i, ok := columns[column]
			if !ok || i >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[i].String())
		}

		hero := Hero{
			Name:     get("name"),
			AlterEgo: get("alterego"),
			Power:    get("power"),
		}
		if hero.Name == "" {
			continue
		}

		if s := get("rating"); s != "" {
			rating, err := cast.ToIntE(s)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d: rating", n+2)
			}
			hero.Rating = &rating
		}

		if s := get("powerdate"); s != "" {
			powerDate, err := parseDate(s)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d: powerDate", n+2)
			}
			hero.PowerDate = &powerDate
		}

		heroes = append(heroes, hero)
	}

	return heroes, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// ImportHeroes appends heroes without touching existing rows.
func ImportHeroes(ctx context.Context, strg storage.StorageI, heroes []Hero, log logger.LoggerI) (int, error) {
	for i, hero := range (Data{Heroes: heroes}).HeroModels() {
		created, err := strg.Hero().Create(ctx, &hero)
		if err != nil {
			return i, errors.Wrapf(err, "create hero %q", hero.Name)
		}
		log.Debug("imported hero", logger.Int64("id", created.ID), logger.String("name", created.Name))
	}

	log.Info("imported heroes", logger.Int("count", len(heroes)))
	return len(heroes), nil
}
