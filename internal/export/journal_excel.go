// Package export — выгрузка дисциплинарного журнала школы в xlsx:
// одна книга на учебный год, по листу на класс.
package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ecoleplus/server/internal/db"
	"github.com/ecoleplus/server/internal/models"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

var journalHeader = []string{"Élève", "Type", "Date", "Durée (min)", "Justifié", "Motif", "Commentaire", "Auteur"}

// BuildYearJournal собирает книгу по событиям года; события без класса
// попадают на лист «Sans classe».
func BuildYearJournal(ctx context.Context, q db.DBTX, schoolID, yearID int64) (*excelize.File, error) {
	events, err := db.ListLifeEventsByYear(ctx, q, schoolID, yearID)
	if err != nil {
		return nil, err
	}

	byClass := map[string][][]string{}
	for _, e := range events {
		title := "Sans classe"
		if e.ClassID != nil {
			class, err := db.GetClassByID(ctx, q, schoolID, *e.ClassID)
			if err != nil {
				return nil, err
			}
			if class != nil {
				title = class.Name
			}
		}
		byClass[title] = append(byClass[title], journalRow(ctx, q, e))
	}

	titles := make([]string, 0, len(byClass))
	for t := range byClass {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	sheets := make([]SheetSpec, 0, len(titles))
	for _, t := range titles {
		sheets = append(sheets, SheetSpec{Title: t, Header: journalHeader, Rows: byClass[t]})
	}
	if len(sheets) == 0 {
		sheets = append(sheets, SheetSpec{Title: "Journal", Header: journalHeader})
	}
	return buildWorkbook(sheets)
}

func journalRow(ctx context.Context, q db.DBTX, e models.StudentLifeEvent) []string {
	studentName := fmt.Sprintf("#%d", e.StudentID)
	if u, err := db.GetUserByID(ctx, q, e.StudentID); err == nil && u != nil {
		studentName = u.Name
	}
	authorName := fmt.Sprintf("#%d", e.AuthorID)
	if u, err := db.GetUserByID(ctx, q, e.AuthorID); err == nil && u != nil {
		authorName = u.Name
	}
	dur, just := "", ""
	if e.DurationMinutes != nil {
		dur = fmt.Sprintf("%d", *e.DurationMinutes)
	}
	if e.Justified != nil {
		if *e.Justified {
			just = "oui"
		} else {
			just = "non"
		}
	}
	comment := ""
	if e.Comment != nil {
		comment = *e.Comment
	}
	return []string{
		studentName,
		string(e.Type),
		e.OccurredAt.Format("02/01/2006 15:04"),
		dur,
		just,
		e.Reason,
		comment,
		authorName,
	}
}

func buildWorkbook(sheets []SheetSpec) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("new sheet: %w", err)
			}
		}
		for col, h := range s.Header {
			cell := fmt.Sprintf("%s1", colName(col+1))
			if err := f.SetCellStr(name, cell, h); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		end := colName(len(s.Header)) + "1"
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)

		for r, row := range s.Rows {
			for c, val := range row {
				cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
				if err := f.SetCellStr(name, cell, val); err != nil {
					return nil, fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}
		// эвристическая ширина: по заголовку и первым строкам
		for c := 1; c <= len(s.Header); c++ {
			maxim := len(s.Header[c-1])
			for r := 0; r < minim(50, len(s.Rows)); r++ {
				if l := len(s.Rows[r][c-1]); l > maxim {
					maxim = l
				}
			}
			w := float64(maxim) * 0.9
			if w < 12 {
				w = 12
			}
			if w > 40 {
				w = 40
			}
			_ = f.SetColWidth(name, colName(c), colName(c), w)
		}
	}
	return f, nil
}

func SaveTemp(f *excelize.File, yearLabel string) (string, error) {
	name := fmt.Sprintf("journal_%s_%s.xlsx", yearLabel, time.Now().Format("2006-01-02"))
	path := "/tmp/" + name
	return path, f.SaveAs(path)
}

// helpers
func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}
