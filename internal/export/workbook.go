package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"gift_tracker/internal/domain/entity"
	"gift_tracker/internal/domain/value"
)

const (
	SheetName = "Gifts"
	FileName  = "gift_tracking.xlsx"
)

// The summary block lists these five types only, whatever else the aggregate
// contains. Order matches the on-stream overlay.
//
//nolint:gochecknoglobals
var displayedGiftTypes = []string{"Potato", "Ice cream", "Finger Heart", "Peach", "Phoenix Flower"}

const (
	summaryStartColumn = 8  // column H
	grandTotalColumn   = 13 // column M
	grandTotalRow      = 6
)

// BuildWorkbook reshapes the flat record list into the "Gifts" sheet:
// one column per recipient from A1, the displayed-type summary at H1/H2 and
// the grand total at M6/N6. Records are not mutated; identical input
// produces identical cell contents.
func BuildWorkbook(records []entity.GiftRecord, typeTotals map[string]int64) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	recipients := value.Recipients()

	grouped := make(map[value.Recipient][]int64, len(recipients))
	for _, record := range records {
		if record.Recipient.IsAssigned() {
			grouped[record.Recipient] = append(grouped[record.Recipient], record.Count)
		}
	}

	if err := writeRecipientGrid(f, recipients, grouped); err != nil {
		return nil, err
	}

	if err := writeTypeSummary(f, typeTotals); err != nil {
		return nil, err
	}

	var grandTotal int64
	for _, record := range records {
		grandTotal += record.Count
	}

	if err := writeGrandTotal(f, grandTotal); err != nil {
		return nil, err
	}

	return f, nil
}

// writeRecipientGrid lays out one column per recipient: the name as header,
// then that recipient's counts in list order. Columns are independent; a
// short column leaves its remaining cells blank without shifting others.
func writeRecipientGrid(f *excelize.File, recipients []value.Recipient, grouped map[value.Recipient][]int64) error {
	for i, recipient := range recipients {
		column := i + 1

		if err := setCell(f, column, 1, recipient.String()); err != nil {
			return err
		}

		for row, count := range grouped[recipient] {
			if err := setCell(f, column, row+2, count); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeTypeSummary(f *excelize.File, typeTotals map[string]int64) error {
	for i, giftType := range displayedGiftTypes {
		column := summaryStartColumn + i

		if err := setCell(f, column, 1, giftType); err != nil {
			return err
		}

		// Absent types are shown as an explicit zero.
		if err := setCell(f, column, 2, typeTotals[giftType]); err != nil {
			return err
		}
	}

	return nil
}

func writeGrandTotal(f *excelize.File, grandTotal int64) error {
	if err := setCell(f, grandTotalColumn, grandTotalRow, "Total:"); err != nil {
		return err
	}

	return setCell(f, grandTotalColumn+1, grandTotalRow, grandTotal)
}

func setCell(f *excelize.File, column, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(column, row)
	if err != nil {
		return fmt.Errorf("coordinates to cell name: %w", err)
	}

	if err := f.SetCellValue(SheetName, cell, v); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}

	return nil
}
