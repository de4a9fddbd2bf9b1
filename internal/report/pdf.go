// Package report renders the weekly and monthly winner leaderboards as PDF
// documents suitable for sending back through the bot.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

type Row struct {
	Name      string
	Website   string
	Username  string
	Referrals int
}

func WeeklyFilename(weekNumber int, generatedAt time.Time) string {
	return fmt.Sprintf("week_%d_winners_%s.pdf", weekNumber, generatedAt.Format("2006-01-02"))
}

func MonthlyFilename(monthYear string) string {
	return fmt.Sprintf("monthly_winners_%s.pdf", strings.ReplaceAll(monthYear, " ", "_"))
}

func Weekly(weekNumber int, generatedAt time.Time, rows []Row) ([]byte, error) {
	title := fmt.Sprintf("Week %d Winners Report", weekNumber)
	return render(title, "Referrals", generatedAt, rows)
}

func Monthly(monthYear string, generatedAt time.Time, rows []Row) ([]byte, error) {
	title := fmt.Sprintf("Monthly Winners Report - %s", monthYear)
	return render(title, "Total Referrals", generatedAt, rows)
}

func render(title, countHeader string, generatedAt time.Time, rows []Row) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated on: %s", generatedAt.Format("2006-01-02")), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	widths := []float64{15, 55, 45, 50, 25}
	headers := []string{"Rank", "Name", "Website", "Username", countHeader}

	pdf.SetFont("Helvetica", "B", 12)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for i, row := range rows {
		cells := []string{
			strconv.Itoa(i + 1),
			strings.TrimSpace(row.Name),
			row.Website,
			row.Username,
			strconv.Itoa(row.Referrals),
		}
		for j, cell := range cells {
			pdf.CellFormat(widths[j], 7, cell, "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(190, 8, fmt.Sprintf("Total Winners: %d", len(rows)), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}
