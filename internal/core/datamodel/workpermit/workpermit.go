package workpermit

import "time"

type WorkPermit struct {
	ID             int64     `gorm:"primaryKey"`
	EmployeeID     int64     `gorm:"column:employee_id;not null;index"`
	PermitType     string    `gorm:"column:permit_type;not null"`
	PermitNumber   string    `gorm:"column:permit_number;not null"`
	IssuingCountry string    `gorm:"column:issuing_country"`
	IssueDate      time.Time `gorm:"column:issue_date;type:date;not null"`
	ExpiryDate     time.Time `gorm:"column:expiry_date;type:date;not null;index"`
	Notes          string    `gorm:"column:notes"`
	CreatedBy      int64     `gorm:"column:created_by"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkPermit) TableName() string { return "work_permits" }
