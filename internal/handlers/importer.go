package handlers

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"kamatrack/internal/catalog"
	"kamatrack/internal/database"
	"kamatrack/internal/logger"
	"kamatrack/internal/models"
	"kamatrack/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	maxImportSize = 10 * 1024 * 1024
	maxImportRows = 10000
)

// importRow is one spreadsheet line: a resource name plus the price and
// experience the user recorded elsewhere.
type importRow struct {
	Name  string
	Value *float64
	XP    *float64
}

func handleImportResources(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	calc := c.MustGet("pricing").(*pricing.Calculator)
	client := c.MustGet("catalog").(*catalog.Client)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	if header.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	rows, err := parseImportFile(file, header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := client.FetchResources(c.Request.Context())
	if err != nil {
		logger.Error("Catalog fetch failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch resource catalog"})
		return
	}

	byName := make(map[string]models.CatalogItem, len(items))
	for _, item := range items {
		byName[normalizeName(item.Name)] = item
	}

	imported := 0
	var unmatched []string
	for _, row := range rows {
		item, ok := byName[normalizeName(row.Name)]
		if !ok {
			unmatched = append(unmatched, row.Name)
			continue
		}

		record := models.ResourceRecord{
			ID:    item.AnkamaID,
			Name:  item.Name,
			Value: row.Value,
			XP:    row.XP,
		}
		if _, err := database.CreateOrUpdateResource(db, calc, record); err != nil {
			logger.Error("Import upsert failed", "error", err, "resource", row.Name)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save imported records"})
			return
		}
		imported++
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     len(rows),
		"imported":  imported,
		"unmatched": unmatched,
	})
}

func parseImportFile(file multipart.File, filename string) ([]importRow, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".xlsx"):
		return parseXLSX(file)
	case strings.HasSuffix(name, ".csv"):
		return parseCSV(file)
	default:
		return nil, fmt.Errorf("unsupported file type, expected .xlsx or .csv")
	}
}

func parseXLSX(file io.Reader) ([]importRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("cannot read spreadsheet rows: %w", err)
	}

	var rows []importRow
	for i, cell := range cells {
		if len(rows) >= maxImportRows {
			return nil, fmt.Errorf("too many rows (max %d)", maxImportRows)
		}

		row, ok := buildImportRow(cell)
		if !ok {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("invalid row %d", i+1)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseCSV(file io.Reader) ([]importRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows []importRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV parse error at line %d: %w", line+1, err)
		}
		line++

		if line > maxImportRows {
			return nil, fmt.Errorf("too many rows (max %d)", maxImportRows)
		}

		row, ok := buildImportRow(record)
		if !ok {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("invalid row %d", line)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// buildImportRow reads the first three cells of a line: name, price,
// experience. Price and experience may be blank.
func buildImportRow(cells []string) (importRow, bool) {
	if len(cells) == 0 || strings.TrimSpace(cells[0]) == "" {
		return importRow{}, false
	}

	row := importRow{Name: strings.TrimSpace(cells[0])}

	if len(cells) > 1 {
		value, ok := parseCell(cells[1])
		if !ok {
			return importRow{}, false
		}
		row.Value = value
	}
	if len(cells) > 2 {
		xp, ok := parseCell(cells[2])
		if !ok {
			return importRow{}, false
		}
		if xp != nil && *xp <= 0 {
			return importRow{}, false
		}
		row.XP = xp
	}

	return row, true
}

func parseCell(cell string) (*float64, bool) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil, true
	}

	trimmed = strings.ReplaceAll(trimmed, ",", ".")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || v < 0 {
		return nil, false
	}
	return &v, true
}
