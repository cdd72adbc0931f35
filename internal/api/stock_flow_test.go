package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stocknexus/backend/internal/db"
	"github.com/stocknexus/backend/internal/models"
)

// These tests need a migrated database and are skipped unless
// DATABASE_URL is set.

func databaseHandler(t *testing.T) (*Handler, *db.Database) {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set; skipping database-backed tests")
	}
	database, err := db.NewDatabase()
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	t.Cleanup(database.Close)
	return NewHandler(database, nil, nil, nil, nil), database
}

// seedHierarchy creates a fresh region, district and branch.
func seedHierarchy(t *testing.T, database *db.Database) (string, string, *models.Branch) {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	var regionID string
	if err := database.Pool.QueryRow(ctx,
		`INSERT INTO regions (name) VALUES ($1) RETURNING id`, "Region "+suffix).Scan(&regionID); err != nil {
		t.Fatalf("failed to seed region: %v", err)
	}
	var districtID string
	if err := database.Pool.QueryRow(ctx,
		`INSERT INTO districts (name, region_id) VALUES ($1, $2) RETURNING id`,
		"District "+suffix, regionID).Scan(&districtID); err != nil {
		t.Fatalf("failed to seed district: %v", err)
	}
	branch, err := database.CreateBranch(ctx, models.CreateBranchRequest{
		Name:       "Branch " + suffix,
		Location:   "Berlin",
		RegionID:   regionID,
		DistrictID: districtID,
	})
	if err != nil {
		t.Fatalf("failed to seed branch: %v", err)
	}
	t.Cleanup(func() {
		cleanupCtx := context.Background()
		database.Pool.Exec(cleanupCtx,
			`DELETE FROM stock_movements WHERE item_id IN (SELECT id FROM items WHERE branch_id = $1)`, branch.ID)
		database.Pool.Exec(cleanupCtx,
			`DELETE FROM stock WHERE item_id IN (SELECT id FROM items WHERE branch_id = $1)`, branch.ID)
		database.Pool.Exec(cleanupCtx, `DELETE FROM items WHERE branch_id = $1`, branch.ID)
		database.Pool.Exec(cleanupCtx, `DELETE FROM branches WHERE id = $1`, branch.ID)
		database.Pool.Exec(cleanupCtx, `DELETE FROM districts WHERE id = $1`, districtID)
		database.Pool.Exec(cleanupCtx, `DELETE FROM regions WHERE id = $1`, regionID)
	})
	return regionID, districtID, branch
}

func seedProfile(t *testing.T, database *db.Database, req models.CreateStaffRequest) *models.Profile {
	t.Helper()
	req.Email = "flow-" + uuid.NewString()[:8] + "@example.com"
	req.Name = "Flow Tester"
	profile, err := database.CreateProfile(context.Background(), req, "x")
	if err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	t.Cleanup(func() {
		cleanupCtx := context.Background()
		database.Pool.Exec(cleanupCtx, `DELETE FROM stock_movements WHERE user_id = $1`, profile.ID)
		database.Pool.Exec(cleanupCtx, `DELETE FROM activity_logs WHERE user_id = $1`, profile.ID)
		database.Pool.Exec(cleanupCtx, `DELETE FROM notifications WHERE user_id = $1`, profile.ID)
		database.Pool.Exec(cleanupCtx, `DELETE FROM profiles WHERE id = $1`, profile.ID)
	})
	return profile
}

func handlerContext(method, body, userID string, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	c.Set("user_id", userID)
	return c, recorder
}

func stockQuantity(t *testing.T, database *db.Database, branchID, itemID string) int {
	t.Helper()
	entries, err := database.ListStock(context.Background(), branchID)
	if err != nil {
		t.Fatalf("failed to list stock: %v", err)
	}
	for _, e := range entries {
		if e.ItemID == itemID {
			return e.CurrentQuantity
		}
	}
	t.Fatalf("no stock entry for item %s", itemID)
	return 0
}

// The quantity after each movement must be exactly the previous
// quantity plus or minus the movement, and an out movement that would
// go negative is rejected with 409 and leaves no ledger row behind.
func TestRecordMovementArithmetic(t *testing.T) {
	handler, database := databaseHandler(t)
	_, _, branch := seedHierarchy(t, database)
	manager := seedProfile(t, database, models.CreateStaffRequest{
		Role:     models.RoleManager,
		BranchID: &branch.ID,
	})

	ctx := context.Background()
	item, err := database.CreateItem(ctx, branch.ID, models.CreateItemRequest{
		Name:           "Espresso Beans",
		Category:       "beverage",
		ThresholdLevel: 10,
	})
	if err != nil {
		t.Fatalf("failed to seed item: %v", err)
	}

	record := func(body string) *httptest.ResponseRecorder {
		c, recorder := handlerContext(http.MethodPost, body, manager.ID,
			gin.Params{{Key: "itemId", Value: item.ID}})
		handler.RecordMovement(c)
		return recorder
	}

	if recorder := record(`{"movement_type":"in","quantity":10}`); recorder.Code != http.StatusCreated {
		t.Fatalf("in movement status = %d, want 201 (body %s)", recorder.Code, recorder.Body.String())
	}
	if got := stockQuantity(t, database, branch.ID, item.ID); got != 10 {
		t.Fatalf("quantity after in 10 = %d, want 10", got)
	}

	if recorder := record(`{"movement_type":"out","quantity":4}`); recorder.Code != http.StatusCreated {
		t.Fatalf("out movement status = %d, want 201 (body %s)", recorder.Code, recorder.Body.String())
	}
	if got := stockQuantity(t, database, branch.ID, item.ID); got != 6 {
		t.Fatalf("quantity after out 4 = %d, want 6", got)
	}

	// 7 > 6: must be refused without touching quantity or the ledger.
	if recorder := record(`{"movement_type":"out","quantity":7}`); recorder.Code != http.StatusConflict {
		t.Fatalf("overdraw status = %d, want 409 (body %s)", recorder.Code, recorder.Body.String())
	}
	if got := stockQuantity(t, database, branch.ID, item.ID); got != 6 {
		t.Errorf("quantity after refused overdraw = %d, want 6", got)
	}
	movements, err := database.ListMovements(ctx, branch.ID, db.MovementFilter{ItemID: item.ID})
	if err != nil {
		t.Fatalf("failed to list movements: %v", err)
	}
	if len(movements) != 2 {
		t.Errorf("ledger rows = %d, want 2 (refused movement must not be recorded)", len(movements))
	}
}

// A regional manager with no branch context gets a 428 carrying the
// districts and branches of their region to choose from.
func TestBranchSelectionRequired(t *testing.T) {
	handler, database := databaseHandler(t)
	regionID, districtID, branch := seedHierarchy(t, database)
	regionalManager := seedProfile(t, database, models.CreateStaffRequest{
		Role:     models.RoleRegionalManager,
		RegionID: &regionID,
	})

	c, recorder := handlerContext(http.MethodGet, "", regionalManager.ID, nil)
	handler.GetStock(c)

	if recorder.Code != http.StatusPreconditionRequired {
		t.Fatalf("status = %d, want 428 (body %s)", recorder.Code, recorder.Body.String())
	}

	var resp struct {
		Selection models.BranchSelection `json:"selection"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode selection body: %v", err)
	}

	foundDistrict := false
	for _, d := range resp.Selection.Districts {
		if d.ID == districtID {
			foundDistrict = true
		}
	}
	if !foundDistrict {
		t.Errorf("selection districts missing %s: %+v", districtID, resp.Selection.Districts)
	}
	foundBranch := false
	for _, b := range resp.Selection.Branches {
		if b.ID == branch.ID {
			foundBranch = true
		}
	}
	if !foundBranch {
		t.Errorf("selection branches missing %s: %+v", branch.ID, resp.Selection.Branches)
	}
}
