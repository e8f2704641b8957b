// Package app assembles the data-access layer from configuration: telemetry
// providers, the security-event fan-out, the guard service, and the guarded
// entity repositories, all sharing one database handle.
package app

import (
	"context"
	"database/sql"
	"errors"

	attendancerepo "fleetdesk/core/internal/attendance/repository"
	"fleetdesk/core/internal/audit"
	auditrepo "fleetdesk/core/internal/audit/repository"
	"fleetdesk/core/internal/config"
	contractrepo "fleetdesk/core/internal/contract/repository"
	employeerepo "fleetdesk/core/internal/employee/repository"
	"fleetdesk/core/internal/guard"
	insurancerepo "fleetdesk/core/internal/insurance/repository"
	invoicerepo "fleetdesk/core/internal/invoice/repository"
	membershiprepo "fleetdesk/core/internal/membership/repository"
	paymentrepo "fleetdesk/core/internal/payment/repository"
	"fleetdesk/core/internal/policy/engine"
	policyrepo "fleetdesk/core/internal/policy/repository"
	"fleetdesk/core/internal/telemetry"
	"fleetdesk/core/internal/telemetry/otel"
	"fleetdesk/core/internal/telemetry/producer"
	"fleetdesk/core/internal/tenant"
	tenantrepo "fleetdesk/core/internal/tenant/repository"
	userrepo "fleetdesk/core/internal/user/repository"
	vehiclerepo "fleetdesk/core/internal/vehicle/repository"
	violationrepo "fleetdesk/core/internal/violation/repository"
)

// Core is the assembled data-access layer. Every repository field is guarded:
// all operations resolve and enforce the session tenant, and attendance is
// additionally employee-scoped.
type Core struct {
	Guard *guard.Service

	Tenants     tenantrepo.Repository
	Users       userrepo.Repository
	Memberships membershiprepo.Repository
	Employees   employeerepo.Repository
	Policies    policyrepo.Repository

	Attendance *attendancerepo.Repository
	Vehicles   *vehiclerepo.Repository
	Contracts  *contractrepo.Repository
	Invoices   *invoicerepo.Repository
	Payments   *paymentrepo.Repository
	Violations *violationrepo.Repository
	Insurance  *insurancerepo.Repository

	producer  *producer.KafkaProducer
	providers *otel.Providers
}

// New wires the layer from cfg on top of conn. Telemetry is optional: with no
// OTLP endpoint the providers are no-ops, and with no Kafka brokers events are
// only persisted and exported as OTel log records.
func New(ctx context.Context, cfg *config.Config, conn *sql.DB) (*Core, error) {
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "fleetdesk-core", cfg.OTLPInsecure)
	if err != nil {
		return nil, err
	}
	providers.SetGlobal()

	kafkaProducer, err := producer.NewKafkaProducer(cfg.EventsKafkaBrokersList(), cfg.EventsKafkaTopic)
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, err
	}
	emitters := []telemetry.EventEmitter{otel.NewEventEmitter(providers.LoggerProvider)}
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
	}
	emitter := telemetry.NewFanOut(emitters...)

	memberships := membershiprepo.NewPostgresRepository(conn)
	policies := policyrepo.NewPostgresRepository(conn)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn))
	guardSvc := guard.NewService(
		tenant.NewMembershipResolver(memberships),
		memberships,
		engine.NewOPAEvaluator(policies),
		auditLogger,
		emitter,
	)

	return &Core{
		Guard:       guardSvc,
		Tenants:     tenantrepo.NewPostgresRepository(conn),
		Users:       userrepo.NewPostgresRepository(conn),
		Memberships: memberships,
		Employees:   employeerepo.NewPostgresRepository(conn),
		Policies:    policies,
		Attendance:  attendancerepo.NewRepository(conn, guardSvc),
		Vehicles:    vehiclerepo.NewRepository(conn, guardSvc),
		Contracts:   contractrepo.NewRepository(conn, guardSvc),
		Invoices:    invoicerepo.NewRepository(conn, guardSvc),
		Payments:    paymentrepo.NewRepository(conn, guardSvc),
		Violations:  violationrepo.NewRepository(conn, guardSvc),
		Insurance:   insurancerepo.NewRepository(conn, guardSvc),
		producer:    kafkaProducer,
		providers:   providers,
	}, nil
}

// Close flushes and releases the telemetry sinks. The database handle is the
// caller's to close.
func (c *Core) Close(ctx context.Context) error {
	var errs []error
	if c.producer != nil {
		if err := c.producer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.providers != nil && c.providers.Shutdown != nil {
		if err := c.providers.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
