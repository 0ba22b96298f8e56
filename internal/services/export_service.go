package services

import (
	"bytes"
	"fmt"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
)

var exportHeaders = []string{
	"Order Number", "Placed At", "Status", "User", "Email", "Company", "Items", "Credits",
}

// OrdersCSV renders export rows as a CSV attachment body.
func OrdersCSV(rows []OrderExportRow) ([]byte, error) {
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// OrdersXLSX renders export rows as a spreadsheet attachment body.
func OrdersXLSX(rows []OrderExportRow) ([]byte, error) {
	file := excelize.NewFile()
	sheet := "Sheet1"

	for i, header := range exportHeaders {
		file.SetCellValue(sheet, cellAxis(i, 1), header)
	}

	for i, row := range rows {
		line := i + 2
		file.SetCellValue(sheet, cellAxis(0, line), row.Number)
		file.SetCellValue(sheet, cellAxis(1, line), row.PlacedAt)
		file.SetCellValue(sheet, cellAxis(2, line), row.Status)
		file.SetCellValue(sheet, cellAxis(3, line), row.UserName)
		file.SetCellValue(sheet, cellAxis(4, line), row.UserEmail)
		file.SetCellValue(sheet, cellAxis(5, line), row.Company)
		file.SetCellValue(sheet, cellAxis(6, line), row.ItemCount)
		file.SetCellValue(sheet, cellAxis(7, line), row.Amount)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellAxis(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}
