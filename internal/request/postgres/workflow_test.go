package postgres_test

import (
	"context"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/core/database"
	requestDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/request"
	roleDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/role"
	staffDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/staff"
	uniformDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/uniform"
	"github.com/frahmantamala/uniform-manager/internal/request"
	requestPostgres "github.com/frahmantamala/uniform-manager/internal/request/postgres"
	"github.com/frahmantamala/uniform-manager/internal/role"
	rolePostgres "github.com/frahmantamala/uniform-manager/internal/role/postgres"
	staffPostgres "github.com/frahmantamala/uniform-manager/internal/staff/postgres"
	stockPostgres "github.com/frahmantamala/uniform-manager/internal/stock/postgres"
	"github.com/frahmantamala/uniform-manager/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var _ = Describe("Request workflow on SQLite", func() {
	var (
		db        *gorm.DB
		staffRepo *staffPostgres.StaffRepository
		stockRepo *stockPostgres.UniformRepository
		requests  *request.Service
		roles     *role.Service
		ctx       context.Context
		now       time.Time

		limited   roleDatamodel.Role
		unlimited roleDatamodel.Role
		cashier   staffDatamodel.Staff
		picker    staffDatamodel.Staff
		polo      uniformDatamodel.UniformItem
		vest      uniformDatamodel.UniformItem
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
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

		five := int64(5)
		limited = roleDatamodel.Role{Name: "cashier", UniformLimit: &five, CooldownDays: 30}
		unlimited = roleDatamodel.Role{Name: "picker", CooldownDays: 0}
		Expect(db.Create(&limited).Error).To(Succeed())
		Expect(db.Create(&unlimited).Error).To(Succeed())

		cashier = staffDatamodel.Staff{Name: "Ayu", RoleID: limited.ID, Store: "Bandung"}
		picker = staffDatamodel.Staff{Name: "Bima", RoleID: unlimited.ID, Store: "Bandung"}
		Expect(db.Create(&cashier).Error).To(Succeed())
		Expect(db.Create(&picker).Error).To(Succeed())

		size := "M"
		polo = uniformDatamodel.UniformItem{Name: "Polo Shirt", Size: &size, EAN: "8991000000035", StockOnHand: 20}
		vest = uniformDatamodel.UniformItem{Name: "Safety Vest", EAN: "8991000000042", StockOnHand: 5}
		Expect(db.Create(&polo).Error).To(Succeed())
		Expect(db.Create(&vest).Error).To(Succeed())

		now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }

		requestRepo := requestPostgres.NewRequestRepository(db)
		queryRepo := requestPostgres.NewQueryRepository(sqlx.NewDb(sqlDB, "sqlite3"))
		roleRepo := rolePostgres.NewRoleRepository(db)
		staffRepo = staffPostgres.NewStaffRepository(db)
		stockRepo = stockPostgres.NewUniformRepository(db)
		tx := database.NewTxManager(db)

		requests = request.NewService(requestRepo, queryRepo, staffRepo, roleRepo, stockRepo, tx,
			request.Options{LowStockThreshold: 5, Now: clock}, logger.Discard())
		roles = role.NewService(roleRepo, staffRepo, requestRepo, tx, nil, nil, logger.Discard())
		ctx = context.Background()
	})

	line := func(id uuid.UUID, qty int64) request.ItemDTO {
		return request.ItemDTO{UniformItemID: id, Quantity: decimal.NewFromInt(qty)}
	}

	onHand := func(id uuid.UUID) int64 {
		item, err := stockRepo.GetByID(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		return item.StockOnHand
	}

	onCooldown := func(id uuid.UUID) bool {
		member, err := staffRepo.GetByID(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		return member.IsCooldown
	}

	countRequests := func() int64 {
		var n int64
		Expect(db.Model(&requestDatamodel.Request{}).Count(&n).Error).To(Succeed())
		return n
	}

	It("should open a cooldown once the limit is used up and reject the next request", func() {
		view, err := requests.CreateRequest(ctx, request.CreateRequestDTO{
			StaffID: cashier.ID,
			Items:   []request.ItemDTO{line(polo.ID, 5)},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(view.Staff.OnCooldown).To(BeTrue())
		Expect(onCooldown(cashier.ID)).To(BeTrue())

		now = now.Add(time.Minute)
		_, err = requests.CreateRequest(ctx, request.CreateRequestDTO{
			StaffID: cashier.ID,
			Items:   []request.ItemDTO{line(polo.ID, 1)},
		})
		Expect(internal.ErrorCodeOf(err)).To(Equal(internal.ErrCodeCooldownActive))
		Expect(onHand(polo.ID)).To(Equal(int64(15)))
		Expect(countRequests()).To(Equal(int64(1)))
	})

	It("should decrement stock and read the request back by tracking number", func() {
		view, err := requests.CreateRequest(ctx, request.CreateRequestDTO{
			StaffID: picker.ID,
			Items:   []request.ItemDTO{line(polo.ID, 9)},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(view.Status).To(Equal(request.StatusRequested))
		Expect(view.Items).To(HaveLen(1))
		Expect(view.Items[0].Quantity).To(Equal(int64(9)))
		Expect(onHand(polo.ID)).To(Equal(int64(11)))

		fetched, err := requests.GetRequestByTrackingNumber(ctx, view.TrackingNumber)
		Expect(err).NotTo(HaveOccurred())
		Expect(fetched.Staff.Name).To(Equal("Bima"))
		Expect(fetched.Items[0].Name).To(Equal("Polo Shirt"))

		changed, err := requests.ChangeRequestStatus(ctx, view.TrackingNumber, request.StatusArrived)
		Expect(err).NotTo(HaveOccurred())
		Expect(changed.Status).To(Equal(request.StatusArrived))
	})

	It("should flag holders when the limit drops below their usage", func() {
		_, err := requests.CreateRequest(ctx, request.CreateRequestDTO{
			StaffID: cashier.ID,
			Items:   []request.ItemDTO{line(polo.ID, 4)},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(onCooldown(cashier.ID)).To(BeFalse())

		updated, err := roles.UpdateRolePolicy(ctx, limited.ID, role.UpdateRolePolicyDTO{UniformLimit: role.Limit(3)})
		Expect(err).NotTo(HaveOccurred())
		Expect(*updated.UniformLimit).To(Equal(int64(3)))
		Expect(updated.CooldownDays).To(Equal(int64(30)))
		Expect(onCooldown(cashier.ID)).To(BeTrue())
	})

	It("should roll everything back when repeated lines outrun stock", func() {
		_, err := requests.CreateRequest(ctx, request.CreateRequestDTO{
			StaffID: picker.ID,
			Items:   []request.ItemDTO{line(vest.ID, 3), line(vest.ID, 3)},
		})
		Expect(internal.ErrorCodeOf(err)).To(Equal(internal.ErrCodeInsufficientStock))
		Expect(onHand(vest.ID)).To(Equal(int64(5)))
		Expect(countRequests()).To(BeZero())

		var items int64
		Expect(db.Model(&requestDatamodel.RequestItem{}).Count(&items).Error).To(Succeed())
		Expect(items).To(BeZero())

		member, err := staffRepo.GetByID(ctx, picker.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(member.LastRequestDate).To(BeNil())
	})
})
