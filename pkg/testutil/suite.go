package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pharmacare/pharmacare-backend/pkg/database"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

var (
	// Global test container (shared across all integration tests)
	globalContainer *PostgresContainer
	globalDB        *sqlx.DB
	containerOnce   sync.Once
	containerErr    error
)

// dataTables lists every table written by tests, children first.
var dataTables = []string{
	"notifications", "alerts", "restock_requests", "product_alternatives", "drug_interactions",
	"order_items", "orders", "prescriptions", "customers", "employees", "stocks", "inventory",
	"products", "branches", "suppliers", "categories", "sessions", "users",
}

var seededRoles = []string{RoleAdminID, RolePharmacistID, RoleBranchManagerID, RoleCashierID}

// IntegrationSuite provides a base for integration tests with real PostgreSQL
type IntegrationSuite struct {
	Container *PostgresContainer
	RawDB     *sqlx.DB
	DB        *database.DB
	Fixtures  *FixtureFactory
	Logger    *logger.Logger
}

// NewIntegrationSuite starts (or reuses) the shared container and migrates it.
// Call this in TestMain to set up shared test infrastructure.
//
// Usage:
//
//	var suite *testutil.IntegrationSuite
//
//	func TestMain(m *testing.M) {
//	    flag.Parse()
//	    if testing.Short() {
//	        os.Exit(m.Run())
//	    }
//	    ctx := context.Background()
//	    var err error
//	    suite, err = testutil.NewIntegrationSuite(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    os.Exit(m.Run())
//	}
func NewIntegrationSuite(ctx context.Context) (*IntegrationSuite, error) {
	container, db, err := getOrCreateContainer(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Nop()

	migrator, err := database.NewMigrator(container.DSN, log)
	if err != nil {
		return nil, err
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		return nil, err
	}

	return &IntegrationSuite{
		Container: container,
		RawDB:     db,
		DB:        database.Wrap(db, log),
		Fixtures:  NewFixtureFactory(),
		Logger:    log,
	}, nil
}

// getOrCreateContainer returns the shared test container
func getOrCreateContainer(ctx context.Context) (*PostgresContainer, *sqlx.DB, error) {
	containerOnce.Do(func() {
		globalContainer, containerErr = startPostgres(ctx)
		if containerErr != nil {
			return
		}
		globalDB, containerErr = globalContainer.connect(ctx)
	})

	return globalContainer, globalDB, containerErr
}

// Reset empties every data table and drops roles created by tests.
func (s *IntegrationSuite) Reset(t *testing.T, ctx context.Context) {
	t.Helper()
	query := fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(dataTables, ", "))
	if _, err := s.RawDB.ExecContext(ctx, query); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	if _, err := s.RawDB.ExecContext(ctx, `DELETE FROM roles WHERE NOT (id = ANY($1))`, pq.Array(seededRoles)); err != nil {
		t.Fatalf("failed to delete test roles: %v", err)
	}
}

// InsertUser stores a user fixture so rows referencing users can be written.
func (s *IntegrationSuite) InsertUser(t *testing.T, ctx context.Context, u UserFixture) {
	t.Helper()
	_, err := s.RawDB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, role_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.RoleID, u.IsActive,
	)
	if err != nil {
		t.Fatalf("failed to insert user %s: %v", u.Username, err)
	}
}

// TerminateContainer terminates the shared container.
// Only call this in TestMain after all tests have completed.
func TerminateContainer(ctx context.Context) {
	if globalContainer != nil {
		_ = globalContainer.Terminate(ctx)
	}
}
