package handlers

import (
	"database/sql"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"kamatrack/internal/catalog"
	"kamatrack/internal/database"
	"kamatrack/internal/email"
	"kamatrack/internal/logger"
	"kamatrack/internal/models"
	"kamatrack/internal/pricing"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 40

// loadJoined fetches the catalog and saved records concurrently and joins
// them. On failure it writes the error response and reports ok=false.
func loadJoined(c *gin.Context) ([]models.Resource, bool) {
	db := c.MustGet("db").(*sql.DB)
	calc := c.MustGet("pricing").(*pricing.Calculator)
	client := c.MustGet("catalog").(*catalog.Client)

	var (
		wg      sync.WaitGroup
		items   []models.CatalogItem
		records []models.ResourceRecord
		itemErr error
		recErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		items, itemErr = client.FetchResources(c.Request.Context())
	}()
	go func() {
		defer wg.Done()
		records, recErr = database.GetResources(db)
	}()
	wg.Wait()

	if itemErr != nil {
		logger.Error("Catalog fetch failed", "error", itemErr)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch resource catalog"})
		return nil, false
	}
	if recErr != nil {
		logger.Error("Record load failed", "error", recErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load saved records"})
		return nil, false
	}

	return joinResources(calc, items, records), true
}

func handleListResources(c *gin.Context) {
	calc := c.MustGet("pricing").(*pricing.Calculator)

	resources, ok := loadJoined(c)
	if !ok {
		return
	}

	if q := c.Query("q"); q != "" {
		resources = filterByName(resources, q)
	}

	sortKey := c.DefaultQuery("sort", "total")
	order := c.DefaultQuery("order", "asc")
	sortResources(resources, calc, sortKey, order)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("items", strconv.Itoa(defaultPageSize)))
	if size < 1 {
		size = defaultPageSize
	}

	total := len(resources)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"page":      page,
		"items":     size,
		"resources": resources[start:end],
	})
}

type updateRequest struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
	XP    *float64 `json:"xp"`
}

func handleUpdateResource(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	calc := c.MustGet("pricing").(*pricing.Calculator)
	emailService := c.MustGet("email").(*email.Service)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource id"})
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.XP != nil && *req.XP <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Experience per unit must be positive"})
		return
	}
	if req.Value != nil && *req.Value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
		return
	}

	prior, err := database.GetResource(db, id)
	if err != nil {
		logger.Error("Record lookup failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load record"})
		return
	}

	record := models.ResourceRecord{
		ID:    id,
		Name:  req.Name,
		Value: req.Value,
		XP:    req.XP,
	}
	if record.Name == "" && prior != nil {
		record.Name = prior.Name
	}
	if record.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Resource name is required"})
		return
	}

	saved, err := database.CreateOrUpdateResource(db, calc, record)
	if err != nil {
		logger.Error("Record update failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save record"})
		return
	}

	newlyAffordable := saved.FirstAffordableAt != nil &&
		(prior == nil || prior.FirstAffordableAt == nil)
	if newlyAffordable && emailService.IsEnabled() && saved.XP != nil {
		threshold, err := calc.AffordabilityThreshold(*saved.XP)
		if err == nil {
			go func(rec models.ResourceRecord) {
				if err := emailService.SendBargainAlert(&rec, threshold); err != nil {
					logger.Warn("Bargain alert failed", "error", err, "resource", rec.Name)
				}
			}(*saved)
		}
	}

	c.JSON(http.StatusOK, saved)
}

func handleResourceHistory(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource id"})
		return
	}

	entries, err := database.GetResourceHistory(db, id)
	if err != nil {
		logger.Error("History load failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "history": entries})
}

// joinResources merges the fresh catalog with saved records by id. Saved
// records for items missing from the catalog are not shown.
func joinResources(calc *pricing.Calculator, items []models.CatalogItem, records []models.ResourceRecord) []models.Resource {
	byID := make(map[int]models.ResourceRecord, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	resources := make([]models.Resource, 0, len(items))
	for _, item := range items {
		resource := models.Resource{
			ID:    item.AnkamaID,
			Name:  item.Name,
			Level: item.Level,
			Type:  item.Type.Name,
			Icon:  item.ImageURLs.SD,
		}

		if record, ok := byID[item.AnkamaID]; ok {
			resource.XP = record.XP
			resource.Value = record.Value
			resource.FirstAffordableAt = record.FirstAffordableAt
			updatedAt := record.UpdatedAt
			resource.UpdatedAt = &updatedAt
		}

		if resource.XP != nil && *resource.XP > 0 {
			if threshold, err := calc.AffordabilityThreshold(*resource.XP); err == nil {
				resource.Threshold = &threshold
			}
			if units, err := calc.UnitsNeeded(*resource.XP); err == nil {
				resource.Units = &units
			}
			if resource.Value != nil {
				if total, err := calc.ProjectedTotalCost(*resource.Value, *resource.XP); err == nil {
					resource.Total = &total
				}
			}
		}

		resources = append(resources, resource)
	}

	return resources
}

func sortResources(resources []models.Resource, calc *pricing.Calculator, key, order string) {
	desc := order == "desc"

	less := func(a, b models.Resource) bool {
		switch key {
		case "date":
			return timeOrZero(a.UpdatedAt).Before(timeOrZero(b.UpdatedAt))
		case "name":
			return a.Name < b.Name
		case "lvl":
			return a.Level < b.Level
		case "pm":
			return thresholdOrZero(calc, a.XP) < thresholdOrZero(calc, b.XP)
		case "bought":
			return timeOrZero(a.FirstAffordableAt).Before(timeOrZero(b.FirstAffordableAt))
		default: // total
			return kamasPerXP(a) < kamasPerXP(b)
		}
	}

	sort.SliceStable(resources, func(i, j int) bool {
		a, b := resources[i], resources[j]

		// On the total ranking, rows without experience always sink.
		if key == "total" || key == "" {
			aMissing := a.XP == nil || *a.XP == 0
			bMissing := b.XP == nil || *b.XP == 0
			if aMissing != bMissing {
				return bMissing
			}
		}

		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}

func kamasPerXP(r models.Resource) float64 {
	if r.XP == nil || *r.XP == 0 {
		return 0
	}
	value := 0.0
	if r.Value != nil {
		value = *r.Value
	}
	return value / *r.XP
}

func thresholdOrZero(calc *pricing.Calculator, xp *float64) float64 {
	if xp == nil || *xp <= 0 {
		return 0
	}
	threshold, err := calc.AffordabilityThreshold(*xp)
	if err != nil {
		return 0
	}
	return threshold
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func filterByName(resources []models.Resource, q string) []models.Resource {
	needle := normalizeName(q)

	filtered := make([]models.Resource, 0, len(resources))
	for _, resource := range resources {
		if containsNormalized(resource.Name, needle) {
			filtered = append(filtered, resource)
		}
	}
	return filtered
}
