package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/database"
	requestDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/request"
	roleDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/role"
	staffDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/staff"
	uniformDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/uniform"
	"github.com/frahmantamala/uniform-manager/internal/request"
	requestPostgres "github.com/frahmantamala/uniform-manager/internal/request/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRequestPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Request Postgres Suite")
}

var _ = Describe("Request Repositories", func() {
	var (
		db     *gorm.DB
		repo   *requestPostgres.RequestRepository
		query  *requestPostgres.QueryRepository
		ctx    context.Context
		citra  staffDatamodel.Staff
		dimas  staffDatamodel.Staff
		polo   uniformDatamodel.UniformItem
		apron  uniformDatamodel.UniformItem
		opened time.Time
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(
			&roleDatamodel.Role{},
			&staffDatamodel.Staff{},
			&uniformDatamodel.UniformItem{},
			&requestDatamodel.Request{},
			&requestDatamodel.RequestItem{},
		)).To(Succeed())

		cashier := roleDatamodel.Role{Name: "cashier", CooldownDays: 180}
		Expect(db.Create(&cashier).Error).To(Succeed())
		citra = staffDatamodel.Staff{Name: "Citra", RoleID: cashier.ID, Store: "Surabaya"}
		dimas = staffDatamodel.Staff{Name: "Dimas", RoleID: cashier.ID, Store: "Surabaya"}
		Expect(db.Create(&citra).Error).To(Succeed())
		Expect(db.Create(&dimas).Error).To(Succeed())

		size := "L"
		polo = uniformDatamodel.UniformItem{Name: "Polo Shirt", Size: &size, EAN: "8991000000011", StockOnHand: 3}
		apron = uniformDatamodel.UniformItem{Name: "Apron", EAN: "8991000000028", StockOnHand: 12}
		Expect(db.Create(&polo).Error).To(Succeed())
		Expect(db.Create(&apron).Error).To(Succeed())

		repo = requestPostgres.NewRequestRepository(db)
		query = requestPostgres.NewQueryRepository(sqlx.NewDb(sqlDB, "sqlite3"))
		ctx = context.Background()
		opened = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	})

	insert := func(member staffDatamodel.Staff, at time.Time, items ...request.Item) *request.Request {
		r := &request.Request{
			TrackingNumber: request.NewTrackingNumber(),
			StaffID:        member.ID,
			Status:         request.StatusRequested,
			CreatedAt:      at,
			UpdatedAt:      at,
			Items:          items,
		}
		Expect(repo.Insert(ctx, r)).To(Succeed())
		return r
	}

	Describe("Insert and GetByTrackingNumber", func() {
		It("should store the header with its items", func() {
			reason := "new hire"
			r := &request.Request{
				TrackingNumber: request.NewTrackingNumber(),
				StaffID:        citra.ID,
				Status:         request.StatusRequested,
				Reason:         &reason,
				CreatedAt:      opened,
				UpdatedAt:      opened,
				Items: []request.Item{
					{UniformItemID: polo.ID, Quantity: 2},
					{UniformItemID: apron.ID, Quantity: 1},
				},
			}
			Expect(repo.Insert(ctx, r)).To(Succeed())
			Expect(r.ID).NotTo(Equal(uuid.Nil))

			rec, err := query.GetByTrackingNumber(ctx, r.TrackingNumber)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.StaffName).To(Equal("Citra"))
			Expect(rec.RoleName).To(Equal("cashier"))
			Expect(rec.Store).To(Equal("Surabaya"))
			Expect(*rec.Reason).To(Equal("new hire"))
			Expect(rec.CreatedAt.Equal(opened)).To(BeTrue())
			Expect(rec.Items).To(HaveLen(2))
			Expect(rec.Items[0].Name).To(Equal("Apron"))
			Expect(rec.Items[1].Name).To(Equal("Polo Shirt"))
			Expect(*rec.Items[1].Size).To(Equal("L"))
			Expect(rec.Items[1].Quantity).To(Equal(int64(2)))
			Expect(rec.Items[1].StockOnHand).To(Equal(int64(3)))
		})

		It("should return ErrRequestNotFound for unknown tracking numbers", func() {
			_, err := query.GetByTrackingNumber(ctx, "UR-FFFFFFFFFFFF")
			Expect(err).To(MatchError(internal.ErrRequestNotFound))
		})

		It("should roll back with the surrounding transaction", func() {
			tx := database.NewTxManager(db)
			r := &request.Request{
				TrackingNumber: request.NewTrackingNumber(),
				StaffID:        citra.ID,
				Status:         request.StatusRequested,
				CreatedAt:      opened,
				UpdatedAt:      opened,
				Items:          []request.Item{{UniformItemID: polo.ID, Quantity: 1}},
			}
			err := tx.WithinTx(ctx, func(ctx context.Context) error {
				Expect(repo.Insert(ctx, r)).To(Succeed())
				return internal.ErrInsufficientStock
			})
			Expect(err).To(MatchError(internal.ErrInsufficientStock))

			_, err = query.GetByTrackingNumber(ctx, r.TrackingNumber)
			Expect(err).To(MatchError(internal.ErrRequestNotFound))
		})
	})

	Describe("SumRequestedQuantity", func() {
		It("should total quantities from the window start onwards", func() {
			insert(citra, opened.Add(-time.Hour), request.Item{UniformItemID: polo.ID, Quantity: 5})
			insert(citra, opened, request.Item{UniformItemID: polo.ID, Quantity: 1}, request.Item{UniformItemID: apron.ID, Quantity: 2})
			insert(citra, opened.Add(48*time.Hour), request.Item{UniformItemID: apron.ID, Quantity: 1})
			insert(dimas, opened, request.Item{UniformItemID: apron.ID, Quantity: 4})

			total, err := repo.SumRequestedQuantity(ctx, citra.ID, opened)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(4)))
		})

		It("should return zero without requests", func() {
			total, err := repo.SumRequestedQuantity(ctx, dimas.ID, opened)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
		})
	})

	Describe("UpdateStatus and GetStatus", func() {
		It("should change the stored status", func() {
			r := insert(citra, opened, request.Item{UniformItemID: polo.ID, Quantity: 1})

			Expect(repo.UpdateStatus(ctx, r.TrackingNumber, request.StatusDispatched)).To(Succeed())

			status, err := repo.GetStatus(ctx, r.TrackingNumber)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(request.StatusDispatched))
		})

		It("should report unknown tracking numbers", func() {
			Expect(repo.UpdateStatus(ctx, "UR-FFFFFFFFFFFF", request.StatusArrived)).To(MatchError(internal.ErrRequestNotFound))

			_, err := repo.GetStatus(ctx, "UR-FFFFFFFFFFFF")
			Expect(err).To(MatchError(internal.ErrRequestNotFound))
		})
	})

	Describe("List", func() {
		var first, second, third *request.Request

		BeforeEach(func() {
			first = insert(citra, opened, request.Item{UniformItemID: polo.ID, Quantity: 1})
			second = insert(dimas, opened.Add(time.Hour), request.Item{UniformItemID: apron.ID, Quantity: 1})
			third = insert(citra, opened.Add(2*time.Hour), request.Item{UniformItemID: apron.ID, Quantity: 2})
			Expect(repo.UpdateStatus(ctx, second.TrackingNumber, request.StatusCollected)).To(Succeed())
		})

		trackingNumbers := func(records []*request.Record) []string {
			out := make([]string, len(records))
			for i, r := range records {
				out[i] = r.TrackingNumber
			}
			return out
		}

		It("should return newest first", func() {
			records, err := query.List(ctx, request.ListFilter{Limit: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(trackingNumbers(records)).To(Equal([]string{third.TrackingNumber, second.TrackingNumber, first.TrackingNumber}))
			Expect(records[0].Items).To(HaveLen(1))
		})

		It("should page with limit and offset", func() {
			records, err := query.List(ctx, request.ListFilter{Limit: 1, Offset: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(trackingNumbers(records)).To(Equal([]string{second.TrackingNumber}))
		})

		It("should filter by status and staff", func() {
			records, err := query.List(ctx, request.ListFilter{Limit: 50, Status: request.StatusCollected})
			Expect(err).NotTo(HaveOccurred())
			Expect(trackingNumbers(records)).To(Equal([]string{second.TrackingNumber}))

			staffID := citra.ID
			records, err = query.List(ctx, request.ListFilter{Limit: 50, StaffID: &staffID})
			Expect(err).NotTo(HaveOccurred())
			Expect(trackingNumbers(records)).To(Equal([]string{third.TrackingNumber, first.TrackingNumber}))
		})

		It("should return an empty slice when nothing matches", func() {
			records, err := query.List(ctx, request.ListFilter{Limit: 50, Status: request.StatusArrived})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).NotTo(BeNil())
			Expect(records).To(BeEmpty())
		})
	})
})
