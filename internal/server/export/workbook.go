// Package export renders a team schedule as an .xlsx workbook.
package export

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/dmitrijs2005/rotamanager/internal/timex"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the single sheet in exported workbooks.
const SheetName = "Schedule"

// ContentType is the MIME type of rendered workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []any{"Date", "Shift", "Shift start", "Shift end", "Member", "Email", "Assigned start", "Assigned end"}

// RenderSchedule writes one row per assignment, or one bare row for a shift
// with no assignments, under a title row naming the team. members maps
// member id to profile; unknown ids are rendered by id.
func RenderSchedule(team models.Team, shifts []models.ShiftWithAssignments, members map[string]models.MemberProfile) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	if err := f.SetCellValue(SheetName, "A1", team.Name); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A2", &header); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "H2", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "A", "H", 16); err != nil {
		return nil, err
	}

	row := 3
	for _, s := range shifts {
		base := []any{
			s.Date.Format(timex.DateLayout),
			s.Name,
			timex.FormatTimeOfDay(s.StartTime),
			timex.FormatTimeOfDay(s.EndTime),
		}

		if len(s.Assignments) == 0 {
			if err := writeRow(f, row, base); err != nil {
				return nil, err
			}
			row++
			continue
		}

		for _, a := range s.Assignments {
			name, email := a.MemberID, ""
			if p, ok := members[a.MemberID]; ok {
				name, email = p.FullName, p.Email
			}
			values := append(append([]any{}, base...),
				name, email, timex.FormatTimeOfDay(a.StartTime), timex.FormatTimeOfDay(a.EndTime))
			if err := writeRow(f, row, values); err != nil {
				return nil, err
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return nil
}
