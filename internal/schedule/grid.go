// Package schedule turns questionnaire definitions into a fixed weekly grid
// and expands that grid across concrete time windows.
package schedule

import (
	"fmt"
	"sort"

	"github.com/traumalab/trial-monitor-api/internal/models"
	appErrors "github.com/traumalab/trial-monitor-api/pkg/errors"
)

type cellKey struct {
	Day  models.Weekday
	Slot models.TimeSlot
}

// Grid is the read-only weekly timetable: (weekday, slot) -> set of question
// IDs. Built once per questionnaire fetch and rebuilt on refresh, never
// mutated in place.
type Grid struct {
	cells map[cellKey]map[int]struct{}
}

// BuildGrid constructs the weekly grid from questionnaire items. Every cell
// of the 7x3 weekday/slot product exists, empty cells included. An item
// naming an unknown weekday or time slot fails the build: a malformed
// schedule must never be silently dropped.
func BuildGrid(items []models.QuestionnaireItem) (*Grid, error) {
	cells := make(map[cellKey]map[int]struct{}, len(models.Weekdays)*len(models.TimeSlots))
	for _, day := range models.Weekdays {
		for _, slot := range models.TimeSlots {
			cells[cellKey{Day: day, Slot: slot}] = make(map[int]struct{})
		}
	}

	for _, item := range items {
		for _, day := range item.Weekdays {
			for _, slot := range item.TimesOfDay {
				cell, ok := cells[cellKey{Day: day, Slot: slot}]
				if !ok {
					return nil, appErrors.Wrap(
						fmt.Errorf("question %d scheduled at (%s, %s)", item.QuestionID, day, slot),
						appErrors.ErrConfiguration.Code,
						appErrors.ErrConfiguration.Status,
						"unknown weekday or time slot in questionnaire schedule",
					)
				}
				cell[item.QuestionID] = struct{}{}
			}
		}
	}

	return &Grid{cells: cells}, nil
}

// Questions returns the sorted question IDs scheduled in one cell.
func (g *Grid) Questions(day models.Weekday, slot models.TimeSlot) []int {
	cell := g.cells[cellKey{Day: day, Slot: slot}]
	ids := make([]int, 0, len(cell))
	for id := range cell {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// CellSize returns how many questions are scheduled in one cell.
func (g *Grid) CellSize(day models.Weekday, slot models.TimeSlot) int {
	return len(g.cells[cellKey{Day: day, Slot: slot}])
}
