// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the owner user (owner@example.com) already exists.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"fleetdesk/core/internal/config"
	"fleetdesk/core/internal/db"
	employeedomain "fleetdesk/core/internal/employee/domain"
	employeerepo "fleetdesk/core/internal/employee/repository"
	membershipdomain "fleetdesk/core/internal/membership/domain"
	membershiprepo "fleetdesk/core/internal/membership/repository"
	policydomain "fleetdesk/core/internal/policy/domain"
	policyrepo "fleetdesk/core/internal/policy/repository"
	"fleetdesk/core/internal/security"
	tenantdomain "fleetdesk/core/internal/tenant/domain"
	tenantrepo "fleetdesk/core/internal/tenant/repository"
	userdomain "fleetdesk/core/internal/user/domain"
	userrepo "fleetdesk/core/internal/user/repository"
)

// devAttendanceRego mirrors the default record-access policy but additionally
// lets any member read attendance tenant-wide. Seeded disabled so the default
// stays in effect until a developer flips enabled.
const devAttendanceRego = `package fleetdesk.record_access

default allow = false

privileged_roles := {"owner", "admin", "manager"}

allow if {
	privileged_roles[input.principal.role]
}

allow if {
	input.target.employee_id != ""
	input.principal.employee_id == input.target.employee_id
}

allow if {
	input.target.entity == "attendance"
}
`

const (
	devOwnerEmail  = "owner@example.com"
	devMemberEmail = "member@example.com"
	devPassword    = "password123"

	devOwnerID      = "dev-user-001"
	devMemberID     = "dev-user-002"
	devTenantID     = "dev-tenant-001"
	devTenant2ID    = "dev-tenant-002"
	devOwnerMemID   = "dev-membership-001"
	devMemberMemID  = "dev-membership-002"
	devEmployeeID   = "dev-employee-001"
	devEmployee2ID  = "dev-employee-002"
	devVehicleID    = "dev-vehicle-001"
	devContractID   = "dev-contract-001"
	devInvoiceID    = "dev-invoice-001"
	devPaymentID    = "dev-payment-001"
	devAttendanceID = "dev-attendance-001"
	devPolicyID     = "dev-policy-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()

	users := userrepo.NewPostgresRepository(conn)
	existing, err := users.GetByEmail(ctx, devOwnerEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (owner@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()

	if err := users.Create(ctx, &userdomain.User{
		ID:           devOwnerID,
		Email:        devOwnerEmail,
		Name:         "Dev Owner",
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}); err != nil {
		log.Fatalf("create owner user: %v", err)
	}
	if err := users.Create(ctx, &userdomain.User{
		ID:           devMemberID,
		Email:        devMemberEmail,
		Name:         "Dev Member",
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}); err != nil {
		log.Fatalf("create member user: %v", err)
	}

	tenants := tenantrepo.NewPostgresRepository(conn)
	if err := tenants.Create(ctx, &tenantdomain.Tenant{
		ID: devTenantID, Name: "Acme Rentals", Active: true, CreatedAt: now,
	}); err != nil {
		log.Fatalf("create tenant: %v", err)
	}
	// Second tenant with no members; useful for isolation testing.
	if err := tenants.Create(ctx, &tenantdomain.Tenant{
		ID: devTenant2ID, Name: "Globex Fleet", Active: true, CreatedAt: now,
	}); err != nil {
		log.Fatalf("create second tenant: %v", err)
	}

	memberships := membershiprepo.NewPostgresRepository(conn)
	if err := memberships.Create(ctx, &membershipdomain.Membership{
		ID: devOwnerMemID, UserID: devOwnerID, TenantID: devTenantID,
		Role: membershipdomain.RoleOwner, Active: true, CreatedAt: now,
	}); err != nil {
		log.Fatalf("create owner membership: %v", err)
	}
	if err := memberships.Create(ctx, &membershipdomain.Membership{
		ID: devMemberMemID, UserID: devMemberID, TenantID: devTenantID,
		Role: membershipdomain.RoleMember, Active: true, CreatedAt: now,
	}); err != nil {
		log.Fatalf("create member membership: %v", err)
	}

	hiredAt := now.AddDate(-1, 0, 0)
	employees := employeerepo.NewPostgresRepository(conn)
	ownerID := devOwnerID
	memberID := devMemberID
	if err := employees.Create(ctx, &employeedomain.Employee{
		ID: devEmployeeID, TenantID: devTenantID, UserID: &ownerID,
		Name: "Dev Owner", Position: "General Manager", HiredAt: &hiredAt,
		CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		log.Fatalf("create owner employee: %v", err)
	}
	if err := employees.Create(ctx, &employeedomain.Employee{
		ID: devEmployee2ID, TenantID: devTenantID, UserID: &memberID,
		Name: "Dev Member", Position: "Driver", HiredAt: &hiredAt,
		CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		log.Fatalf("create member employee: %v", err)
	}

	policies := policyrepo.NewPostgresRepository(conn)
	if err := policies.Create(ctx, &policydomain.Policy{
		ID: devPolicyID, TenantID: devTenantID, Name: "attendance-open",
		Rules: devAttendanceRego, Enabled: false, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		log.Fatalf("create policy: %v", err)
	}

	// Sample fleet data. Inserted directly: the guarded repositories require a
	// request principal, which a seed run does not have.
	seedFleet(ctx, conn, now)

	log.Println("Seed complete.")
	log.Printf("  owner:  %s / %s (tenant %s)", devOwnerEmail, devPassword, devTenantID)
	log.Printf("  member: %s / %s (employee %s)", devMemberEmail, devPassword, devEmployee2ID)
}

func seedFleet(ctx context.Context, conn *sql.DB, now time.Time) {
	start := now.AddDate(0, -1, 0)
	end := now.AddDate(0, 1, 0)
	due := now.AddDate(0, 0, 14)

	exec := func(what, q string, args ...any) {
		if _, err := conn.ExecContext(ctx, q, args...); err != nil {
			log.Fatalf("%s: %v", what, err)
		}
	}

	exec("create vehicle",
		`INSERT INTO vehicles (id, tenant_id, vehicle_number, plate_number, model, status, daily_rate, created_by, created_at, updated_at)
		 VALUES ($1, $2, generate_vehicle_number(), $3, $4, $5, $6, $7, $8, $8)`,
		devVehicleID, devTenantID, "ABC-1234", "Toyota Hiace 2023", "available", 45.00, devOwnerID, now)

	exec("create contract",
		`INSERT INTO contracts (id, tenant_id, contract_number, vehicle_id, customer_name, start_date, end_date, status, total_amount, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		devContractID, devTenantID, "CNT-0001", devVehicleID, "Initech LLC", start, end, "active", 2700.00, devOwnerID, now)

	exec("create invoice",
		`INSERT INTO invoices (id, tenant_id, invoice_number, contract_id, amount, due_date, status, created_by, created_at, updated_at)
		 VALUES ($1, $2, generate_invoice_number(), $3, $4, $5, $6, $7, $8, $8)`,
		devInvoiceID, devTenantID, devContractID, 1350.00, due, "unpaid", devOwnerID, now)

	exec("create payment",
		`INSERT INTO payments (id, tenant_id, invoice_id, amount, method, paid_at, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		devPaymentID, devTenantID, devInvoiceID, 500.00, "cash", now, devOwnerID, now)

	exec("create attendance",
		`INSERT INTO attendance (id, tenant_id, employee_id, work_date, check_in, status, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, CURRENT_DATE, $4, $5, $6, $7, $7)`,
		devAttendanceID, devTenantID, devEmployee2ID, now, "present", devMemberID, now)
}
