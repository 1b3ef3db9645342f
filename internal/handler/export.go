package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/models"
	"github.com/flavian-jumba/peerly-BE/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler serves the admin console downloads of the appointment book.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeaders = []string{"ID", "Patient", "Therapist", "Scheduled At", "Duration (min)", "Status", "Created By", "Notes"}

func (h *ExportHandler) loadAppointments(c *gin.Context) ([]models.Appointment, bool) {
	q := h.DB.Preload("User").Preload("Therapist").Order("appointment_at DESC")

	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}
	if from := c.Query("from"); from != "" {
		if t, err := util.ParseAppointmentTime(from); err == nil {
			q = q.Where("appointment_at >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := util.ParseAppointmentTime(to); err == nil {
			q = q.Where("appointment_at < ?", t)
		}
	}

	var appts []models.Appointment
	if err := q.Find(&appts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load appointments.")
		return nil, false
	}
	return appts, true
}

func exportRow(a *models.Appointment) []string {
	patient := ""
	if a.User != nil {
		patient = a.User.Name
	}
	therapist := ""
	if a.Therapist != nil {
		therapist = a.Therapist.Name
	}
	return []string{
		strconv.FormatUint(uint64(a.ID), 10),
		patient,
		therapist,
		a.AppointmentAt.Format("2006-01-02 15:04"),
		strconv.Itoa(a.DurationMinutes),
		a.Status,
		a.CreatedBy,
		a.Notes,
	}
}

// AppointmentsCSV streams the appointment book as CSV.
func (h *ExportHandler) AppointmentsCSV(c *gin.Context) {
	appts, ok := h.loadAppointments(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"appointments_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range appts {
		writer.Write(exportRow(&appts[i]))
	}
}

// AppointmentsXLSX streams the appointment book as an XLSX workbook.
func (h *ExportHandler) AppointmentsXLSX(c *gin.Context) {
	appts, ok := h.loadAppointments(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Appointments"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create worksheet.")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, head := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, head)
	}
	for idx := range appts {
		row := idx + 2
		for col, v := range exportRow(&appts[idx]) {
			f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+col, row), v)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "C", 20)
	f.SetColWidth(sheetName, "D", "D", 18)
	f.SetColWidth(sheetName, "E", "G", 14)
	f.SetColWidth(sheetName, "H", "H", 40)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"appointments_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to write workbook.")
	}
}
