package model

// Student is the purchaser record. The stock core only touches Items and
// Paid, as a best-effort side effect of transaction writes.
type Student struct {
	BaseModel
	Name      string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	StudentID string `gorm:"type:varchar(50);uniqueIndex;not null" json:"student_id" validate:"required"`
	Course    string `gorm:"type:varchar(100);index" json:"course"`
	Year      int    `gorm:"default:1" json:"year"`
	Branch    string `gorm:"type:varchar(100)" json:"branch"`

	// Items maps derived product keys (see ItemKey) to "has received".
	Items ItemFlags `gorm:"type:jsonb" json:"items"`
	Paid  bool      `gorm:"default:false" json:"paid"`
}
