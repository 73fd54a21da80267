package database

import (
	"database/sql"
	"testing"
	"time"

	"kamatrack/internal/models"
	"kamatrack/internal/pricing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	return db
}

// threshold(xp) = 20000/100*xp = 200*xp
func testCalculator(t *testing.T) *pricing.Calculator {
	calc, err := pricing.NewCalculator(20000, 100)
	if err != nil {
		t.Fatal("Failed to create calculator:", err)
	}
	return calc
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestResourceUpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	calc := testCalculator(t)

	saved, err := CreateOrUpdateResource(db, calc, models.ResourceRecord{
		ID:    287,
		Name:  "Fresno",
		XP:    floatPtr(10),
		Value: floatPtr(50),
	})
	if err != nil {
		t.Fatal("Failed to upsert resource:", err)
	}

	// 50 <= threshold(10)=2000, so the record is immediately affordable.
	if saved.FirstAffordableAt == nil {
		t.Error("Expected first_affordable_at to be set")
	}

	got, err := GetResource(db, 287)
	if err != nil {
		t.Fatal("Failed to get resource:", err)
	}
	if got == nil {
		t.Fatal("Expected a stored record")
	}

	if got.Name != "Fresno" {
		t.Errorf("Expected name 'Fresno', got %s", got.Name)
	}
	if got.XP == nil || *got.XP != 10 {
		t.Errorf("Expected xp 10, got %v", got.XP)
	}
	if got.Value == nil || *got.Value != 50 {
		t.Errorf("Expected value 50, got %v", got.Value)
	}
	if got.FirstAffordableAt == nil {
		t.Error("Expected stored first_affordable_at to be set")
	}
	if got.UpdatedAt.IsZero() {
		t.Error("Expected updated_at to be set")
	}
}

func TestFirstAffordableNotSetAboveThreshold(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	calc := testCalculator(t)

	saved, err := CreateOrUpdateResource(db, calc, models.ResourceRecord{
		ID:    1,
		Name:  "Madera",
		XP:    floatPtr(10),
		Value: floatPtr(5000),
	})
	if err != nil {
		t.Fatal("Failed to upsert resource:", err)
	}

	// 5000 > threshold(10)=2000
	if saved.FirstAffordableAt != nil {
		t.Error("Expected first_affordable_at to remain unset above threshold")
	}
}

func TestFirstAffordablePreservedOnceSet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	calc := testCalculator(t)

	first, err := CreateOrUpdateResource(db, calc, models.ResourceRecord{
		ID:    1,
		Name:  "Madera",
		XP:    floatPtr(10),
		Value: floatPtr(100),
	})
	if err != nil {
		t.Fatal("Failed to upsert resource:", err)
	}
	if first.FirstAffordableAt == nil {
		t.Fatal("Expected first_affordable_at to be set")
	}

	// A later write above the threshold must not clear it.
	second, err := CreateOrUpdateResource(db, calc, models.ResourceRecord{
		ID:    1,
		Name:  "Madera",
		XP:    floatPtr(10),
		Value: floatPtr(9000),
	})
	if err != nil {
		t.Fatal("Failed to upsert resource:", err)
	}

	if second.FirstAffordableAt == nil {
		t.Fatal("Expected first_affordable_at to be preserved")
	}
	if !second.FirstAffordableAt.Equal(*first.FirstAffordableAt) {
		t.Errorf("Expected first_affordable_at %v to be preserved, got %v",
			first.FirstAffordableAt, second.FirstAffordableAt)
	}
}

func TestFirstAffordableRequiresBothFields(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	calc := testCalculator(t)

	saved, err := CreateOrUpdateResource(db, calc, models.ResourceRecord{
		ID:    1,
		Name:  "Madera",
		Value: floatPtr(10),
	})
	if err != nil {
		t.Fatal("Failed to upsert resource:", err)
	}

	if saved.FirstAffordableAt != nil {
		t.Error("Expected first_affordable_at to remain unset without xp")
	}
}

func TestGetResourceMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	got, err := GetResource(db, 999)
	if err != nil {
		t.Fatal("Expected no error for missing record, got:", err)
	}
	if got != nil {
		t.Errorf("Expected nil record, got %+v", got)
	}
}

func TestGetResources(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	calc := testCalculator(t)

	for id, name := range map[int]string{1: "Madera", 2: "Trigo", 3: "Lino"} {
		_, err := CreateOrUpdateResource(db, calc, models.ResourceRecord{
			ID:    id,
			Name:  name,
			XP:    floatPtr(5),
			Value: floatPtr(100),
		})
		if err != nil {
			t.Fatal("Failed to upsert resource:", err)
		}
	}

	records, err := GetResources(db)
	if err != nil {
		t.Fatal("Failed to get resources:", err)
	}
	if len(records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(records))
	}
}

func TestHistorySameDayOverwrite(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	calc := testCalculator(t)

	for _, price := range []float64{100, 250} {
		_, err := CreateOrUpdateResource(db, calc, models.ResourceRecord{
			ID:    1,
			Name:  "Madera",
			XP:    floatPtr(10),
			Value: floatPtr(price),
		})
		if err != nil {
			t.Fatal("Failed to upsert resource:", err)
		}
	}

	entries, err := GetResourceHistory(db, 1)
	if err != nil {
		t.Fatal("Failed to get history:", err)
	}

	if len(entries) != 1 {
		t.Fatalf("Expected 1 history entry for the day, got %d", len(entries))
	}
	if entries[0].Value != 250 {
		t.Errorf("Expected latest price 250, got %v", entries[0].Value)
	}
	if entries[0].Date != time.Now().Format(HistoryDay) {
		t.Errorf("Expected today's date, got %s", entries[0].Date)
	}
}

func TestHistoryKeepsSeparateDays(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	calc := testCalculator(t)

	yesterday := time.Now().AddDate(0, 0, -1)
	_, err := CreateOrUpdateResource(db, calc, models.ResourceRecord{
		ID:        1,
		Name:      "Madera",
		XP:        floatPtr(10),
		Value:     floatPtr(100),
		UpdatedAt: yesterday,
	})
	if err != nil {
		t.Fatal("Failed to upsert resource:", err)
	}

	_, err = CreateOrUpdateResource(db, calc, models.ResourceRecord{
		ID:    1,
		Name:  "Madera",
		XP:    floatPtr(10),
		Value: floatPtr(150),
	})
	if err != nil {
		t.Fatal("Failed to upsert resource:", err)
	}

	entries, err := GetResourceHistory(db, 1)
	if err != nil {
		t.Fatal("Failed to get history:", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(entries))
	}
	if entries[0].Value != 100 || entries[1].Value != 150 {
		t.Errorf("Expected prices [100 150] oldest first, got [%v %v]",
			entries[0].Value, entries[1].Value)
	}
}

func TestHistorySkippedWithoutPrice(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	calc := testCalculator(t)

	_, err := CreateOrUpdateResource(db, calc, models.ResourceRecord{
		ID:   1,
		Name: "Madera",
		XP:   floatPtr(10),
	})
	if err != nil {
		t.Fatal("Failed to upsert resource:", err)
	}

	entries, err := GetResourceHistory(db, 1)
	if err != nil {
		t.Fatal("Failed to get history:", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no history entries without a price, got %d", len(entries))
	}
}
