package models

// VlanRecord: строка вспомогательной таблицы psb_vlan в БД NIPAP.
// Пара (vlanid, porttype) уникальна (индекс ux_psb_vlan_id_port).
type VlanRecord struct {
	VlanID         int    `gorm:"column:vlanid;not null" json:"vlanid"`
	SiteID         string `gorm:"column:siteid;type:varchar(64)" json:"siteid"`
	CUG            string `gorm:"column:cug;type:varchar(64)" json:"cug"`
	EnterpriseName string `gorm:"column:enterprisename;type:varchar(255)" json:"enterprisename"`
	PortType       string `gorm:"column:porttype;type:varchar(32);not null" json:"porttype"`
}

func (VlanRecord) TableName() string { return "psb_vlan" }
