/*
export_xlsx.go - Spreadsheet export of a computed period result

PURPOSE:
  Renders one employee's period result as an XLSX workbook: a header
  block with the capped totals, then one row per calendar day with
  status, minutes and deduction. This is the form payroll staff download.
*/
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/warp/allowance-engine/engine"
)

const sheetName = "Tunjangan"

// WriteXLSX renders the result as a workbook and writes it to w.
func WriteXLSX(w io.Writer, emp EmployeeRecord, month Month, res *engine.PeriodResult) error {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetName)

	set := func(cell string, value any) {
		f.SetCellValue(sheetName, cell, value)
	}

	// Header block.
	set("A1", "Karyawan")
	set("B1", emp.Name)
	set("A2", "Periode")
	set("B2", month.String())
	set("A3", "Tunjangan Dasar")
	set("B3", res.BaseAllowance.String())
	set("A4", "Potongan Kehadiran")
	set("B4", res.Cap.CappedAttendance.String())
	set("A5", "Potongan Lainnya")
	set("B5", res.Cap.CappedManual.String())
	set("A6", "Total Potongan")
	set("B6", res.Cap.TotalDeduction.String())
	set("A7", "Tunjangan Bersih")
	set("B7", res.Cap.NetAllowance.String())
	if res.Cap.AttendanceCapped || res.Cap.OtherCapped || res.Cap.TotalCapped {
		set("A8", "Catatan")
		set("B8", "potongan dibatasi 60% tunjangan dasar")
	}

	// Daily breakdown.
	headers := []string{"Tanggal", "Status", "Telat (menit)", "Pulang Cepat (menit)", "Potongan", "Keterangan"}
	headerRow := 10
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		set(cell, h)
	}

	for i, day := range res.Days {
		row := headerRow + 1 + i
		set(fmt.Sprintf("A%d", row), day.Date.String())
		set(fmt.Sprintf("B%d", row), day.Status.String())
		set(fmt.Sprintf("C%d", row), day.MinutesLate)
		set(fmt.Sprintf("D%d", row), day.MinutesEarly)
		set(fmt.Sprintf("E%d", row), day.Deduction.String())
		set(fmt.Sprintf("F%d", row), day.Note)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
