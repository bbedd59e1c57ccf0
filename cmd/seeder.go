package cmd

import (
	"fmt"
	"log"

	requestDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/request"
	roleDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/role"
	staffDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/staff"
	uniformDatamodel "github.com/frahmantamala/uniform-manager/internal/core/datamodel/uniform"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample roles, staff and uniform items for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := setup()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := initGorm(db, false)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := clearSeedData(gdb); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		if err := gdb.Transaction(seedSampleData); err != nil {
			log.Fatalf("failed to seed data: %v", err)
		}
		fmt.Println("Sample data seeded successfully")
	},
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func clearSeedData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&requestDatamodel.RequestItem{},
			&requestDatamodel.Request{},
			&staffDatamodel.Staff{},
			&roleDatamodel.Role{},
			&uniformDatamodel.UniformItem{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func seedSampleData(tx *gorm.DB) error {
	roles := []roleDatamodel.Role{
		{Name: "store manager", UniformLimit: int64Ptr(10), CooldownDays: 90},
		{Name: "sales associate", UniformLimit: int64Ptr(6), CooldownDays: 180},
		{Name: "cashier", UniformLimit: int64Ptr(4), CooldownDays: 180},
		{Name: "warehouse", UniformLimit: nil, CooldownDays: 0},
	}
	roleIDs := make(map[string]roleDatamodel.Role, len(roles))
	for _, r := range roles {
		role := r
		if err := tx.Where(roleDatamodel.Role{Name: r.Name}).
			Attrs(roleDatamodel.Role{UniformLimit: r.UniformLimit, CooldownDays: r.CooldownDays}).
			FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seeding role %s: %w", r.Name, err)
		}
		roleIDs[r.Name] = role
		fmt.Printf("Seeded role: %s\n", role.Name)
	}

	members := []struct {
		Name  string
		Role  string
		Store string
	}{
		{"Alya Putri", "store manager", "Jakarta Central"},
		{"Bima Santoso", "sales associate", "Jakarta Central"},
		{"Citra Lestari", "cashier", "Bandung"},
		{"Dimas Pratama", "warehouse", "Surabaya"},
	}
	for _, m := range members {
		member := staffDatamodel.Staff{Name: m.Name, RoleID: roleIDs[m.Role].ID, Store: m.Store}
		if err := tx.Where(staffDatamodel.Staff{Name: m.Name, Store: m.Store}).
			FirstOrCreate(&member).Error; err != nil {
			return fmt.Errorf("seeding staff %s: %w", m.Name, err)
		}
		fmt.Printf("Seeded staff member: %s\n", member.Name)
	}

	items := []uniformDatamodel.UniformItem{
		{Name: "Polo Shirt", Size: strPtr("S"), EAN: "8990000000011", StockOnHand: 40},
		{Name: "Polo Shirt", Size: strPtr("M"), EAN: "8990000000012", StockOnHand: 60},
		{Name: "Polo Shirt", Size: strPtr("L"), EAN: "8990000000013", StockOnHand: 35},
		{Name: "Work Trousers", Size: strPtr("32"), EAN: "8990000000021", StockOnHand: 20},
		{Name: "Apron", EAN: "8990000000031", StockOnHand: 3},
	}
	for _, it := range items {
		item := it
		if err := tx.Where(uniformDatamodel.UniformItem{EAN: it.EAN}).
			Attrs(uniformDatamodel.UniformItem{Name: it.Name, Size: it.Size, StockOnHand: it.StockOnHand}).
			FirstOrCreate(&item).Error; err != nil {
			return fmt.Errorf("seeding uniform item %s: %w", it.EAN, err)
		}
		fmt.Printf("Seeded uniform item: %s (%s)\n", item.Name, item.EAN)
	}
	return nil
}
