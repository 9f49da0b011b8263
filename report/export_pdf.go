/*
export_pdf.go - PDF export of a computed period result

PURPOSE:
  Renders the same report as export_xlsx.go in a fixed-layout PDF:
  summary block on top, daily table below. Layout is plain A4 portrait
  with the standard fonts so the document needs no embedded assets.
*/
package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/warp/allowance-engine/engine"
)

// WritePDF renders the result as a PDF document and writes it to w.
func WritePDF(w io.Writer, emp EmployeeRecord, month Month, res *engine.PeriodResult) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Laporan Tunjangan Kinerja", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	summary := [][2]string{
		{"Karyawan", emp.Name},
		{"Periode", month.String()},
		{"Tunjangan Dasar", res.BaseAllowance.String()},
		{"Potongan Kehadiran", res.Cap.CappedAttendance.String()},
		{"Potongan Lainnya", res.Cap.CappedManual.String()},
		{"Total Potongan", res.Cap.TotalDeduction.String()},
		{"Tunjangan Bersih", res.Cap.NetAllowance.String()},
	}
	for _, row := range summary {
		pdf.CellFormat(45, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	if res.Cap.AttendanceCapped || res.Cap.OtherCapped || res.Cap.TotalCapped {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, "Catatan: potongan dibatasi 60% tunjangan dasar", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Daily table.
	widths := []float64{24, 62, 18, 18, 28, 40}
	headers := []string{"Tanggal", "Status", "Telat", "P. Cepat", "Potongan", "Keterangan"}

	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, day := range res.Days {
		cells := []string{
			day.Date.String(),
			day.Status.String(),
			fmt.Sprintf("%d", day.MinutesLate),
			fmt.Sprintf("%d", day.MinutesEarly),
			day.Deduction.String(),
			day.Note,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
