package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kamatrack/internal/models"
	"kamatrack/internal/pricing"

	"github.com/gin-gonic/gin"
)

const (
	exportBOM    = "\ufeff"
	exportHeader = `"Fecha de compra","Valor","Fecha de actualización","XP","Tipo","Lvl","Nombre"`

	// Date layout for the two date columns, matching the locale-formatted
	// strings the export consumers expect.
	exportDateLayout = "02/01/2006 15:04:05"
)

func handleExportResources(c *gin.Context) {
	calc := c.MustGet("pricing").(*pricing.Calculator)

	resources, ok := loadJoined(c)
	if !ok {
		return
	}

	sortResources(resources, calc, "total", "asc")

	data := exportCSV(resources)

	filename := fmt.Sprintf("%s_resources.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

// exportCSV renders the resource list as comma-delimited CSV with a UTF-8
// byte-order marker. Every field is quoted; absent values render as "".
// encoding/csv is not used here because it only quotes fields that need it,
// and the consumers of this file expect every field quoted.
func exportCSV(resources []models.Resource) []byte {
	rows := make([]string, 0, len(resources)+1)
	rows = append(rows, exportHeader)

	for _, resource := range resources {
		fields := []string{
			quoteDate(resource.FirstAffordableAt),
			quoteFloat(resource.Value),
			quoteDate(resource.UpdatedAt),
			quoteFloat(resource.XP),
			quoteString(resource.Type),
			quoteInt(resource.Level),
			quoteString(resource.Name),
		}
		rows = append(rows, strings.Join(fields, ","))
	}

	return []byte(exportBOM + strings.Join(rows, "\r\n"))
}

func quoteDate(t *time.Time) string {
	if t == nil {
		return `""`
	}
	return `"` + t.Format(exportDateLayout) + `"`
}

func quoteFloat(v *float64) string {
	if v == nil || *v == 0 {
		return `""`
	}
	return `"` + strconv.FormatFloat(*v, 'f', -1, 64) + `"`
}

func quoteInt(v int) string {
	if v == 0 {
		return `""`
	}
	return `"` + strconv.Itoa(v) + `"`
}

func quoteString(s string) string {
	if s == "" {
		return `""`
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
