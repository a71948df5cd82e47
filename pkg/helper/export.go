package helper

import (
	"encoding/csv"
	"io"
	"strconv"

	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/models"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const heroSheet = "Heroes"

var heroHeaders = []string{"Id", "Name", "Alter Ego", "Power", "Rating", "Power Date"}

func heroRecord(hero models.Hero) []string {
	rating := ""
	if hero.Rating != nil {
		rating = strconv.Itoa(*hero.Rating)
	}

	powerDate := ""
	if hero.PowerDate != nil {
		powerDate = hero.PowerDate.Format(config.DatabaseTimeLayout)
	}

	return []string{
		strconv.FormatInt(hero.ID, 10),
		hero.Name,
		hero.AlterEgo,
		hero.Power,
		rating,
		powerDate,
	}
}

// WriteHeroesCSV writes a header row followed by one row per hero.
func WriteHeroesCSV(w io.Writer, heroes []models.Hero) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(heroHeaders); err != nil {
		return errors.Wrap(err, "write header")
	}

	for _, hero := range heroes {
		if err := writer.Write(heroRecord(hero)); err != nil {
			return errors.Wrap(err, "write record")
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteHeroesXLSX writes the heroes as a single sheet workbook.
func WriteHeroesXLSX(w io.Writer, heroes []models.Hero) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", heroSheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}

	for i, header := range heroHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err = file.SetCellValue(heroSheet, cell, header); err != nil {
			return errors.Wrap(err, "set header")
		}
	}

	for r, hero := range heroes {
		row := make([]any, 0, len(heroHeaders))
		row = append(row, hero.ID, hero.Name, hero.AlterEgo, hero.Power)
		if hero.Rating != nil {
			row = append(row, *hero.Rating)
		} else {
			row = append(row, nil)
		}
		if hero.PowerDate != nil {
			row = append(row, hero.PowerDate.Format(config.DatabaseTimeLayout))
		} else {
			row = append(row, nil)
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err = file.SetSheetRow(heroSheet, cell, &row); err != nil {
			return errors.Wrap(err, "set row")
		}
	}

	_, err := file.WriteTo(w)
	return errors.Wrap(err, "write workbook")
}
