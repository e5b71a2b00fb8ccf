// internal/db/migrations.go
package db

import (
	"fmt"

	"nipaputil/internal/models"

	"gorm.io/gorm"
)

// MigrateVlanTable создаёт psb_vlan (если её ещё нет в схеме NIPAP) и
// уникальный индекс по (vlanid, porttype): дубликаты отвергаются самой БД.
func MigrateVlanTable(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if !db.Migrator().HasTable(&models.VlanRecord{}) {
		if err := db.Migrator().CreateTable(&models.VlanRecord{}); err != nil {
			return fmt.Errorf("create psb_vlan: %w", err)
		}
	}
	if db.Migrator().HasIndex(&models.VlanRecord{}, "ux_psb_vlan_id_port") {
		return nil
	}

	switch dialect := db.Dialector.Name(); dialect {
	case "postgres":
		return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_psb_vlan_id_port ON "psb_vlan" ("vlanid", "porttype")`).Error
	case "mysql":
		return db.Exec("CREATE UNIQUE INDEX `ux_psb_vlan_id_port` ON `psb_vlan` (`vlanid`, `porttype`)").Error
	case "sqlite":
		return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_psb_vlan_id_port ON psb_vlan (vlanid, porttype)`).Error
	default:
		return fmt.Errorf("unsupported dialect: %s", dialect)
	}
}
