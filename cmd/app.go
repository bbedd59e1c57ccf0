package cmd

import (
	"log/slog"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/database"
	"github.com/frahmantamala/uniform-manager/internal/core/events"
	"github.com/frahmantamala/uniform-manager/internal/importer"
	"github.com/frahmantamala/uniform-manager/internal/metrics"
	"github.com/frahmantamala/uniform-manager/internal/request"
	requestPostgres "github.com/frahmantamala/uniform-manager/internal/request/postgres"
	"github.com/frahmantamala/uniform-manager/internal/role"
	rolePostgres "github.com/frahmantamala/uniform-manager/internal/role/postgres"
	"github.com/frahmantamala/uniform-manager/internal/staff"
	staffPostgres "github.com/frahmantamala/uniform-manager/internal/staff/postgres"
	"github.com/frahmantamala/uniform-manager/internal/stock"
	stockPostgres "github.com/frahmantamala/uniform-manager/internal/stock/postgres"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// repositories are the store adapters shared by every command.
type repositories struct {
	Stock    *stockPostgres.UniformRepository
	Staff    *staffPostgres.StaffRepository
	Roles    *rolePostgres.RoleRepository
	Requests *requestPostgres.RequestRepository
	Query    *requestPostgres.QueryRepository
	Tx       *database.TxManager
}

func newRepositories(db *sqlx.DB, gdb *gorm.DB) *repositories {
	return &repositories{
		Stock:    stockPostgres.NewUniformRepository(gdb),
		Staff:    staffPostgres.NewStaffRepository(gdb),
		Roles:    rolePostgres.NewRoleRepository(gdb),
		Requests: requestPostgres.NewRequestRepository(gdb),
		Query:    requestPostgres.NewQueryRepository(db),
		Tx:       database.NewTxManager(gdb),
	}
}

type services struct {
	Stock    *stock.Service
	Staff    *staff.Service
	Roles    *role.Service
	Requests *request.Service
	Importer *importer.Service
}

func newServices(cfg *internal.Config, repos *repositories, bus events.Publisher, m *metrics.UniformMetrics, lg *slog.Logger) *services {
	return &services{
		Stock: stock.NewService(repos.Stock, cfg.Inventory.LowStockThreshold, lg),
		Staff: staff.NewService(repos.Staff, lg),
		Roles: role.NewService(repos.Roles, repos.Staff, repos.Requests, repos.Tx, bus, m, lg),
		Requests: request.NewService(
			repos.Requests,
			repos.Query,
			repos.Staff,
			repos.Roles,
			repos.Stock,
			repos.Tx,
			request.Options{
				LowStockThreshold: cfg.Inventory.LowStockThreshold,
				DefaultListLimit:  cfg.Inventory.DefaultListLimit,
				Metrics:           m,
				Publisher:         bus,
			},
			lg,
		),
		Importer: importer.NewService(repos.Stock, repos.Staff, repos.Roles, lg),
	}
}
