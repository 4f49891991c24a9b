package models

// Employee is the single persisted entity: one row per scanned identity
// document. Every extracted attribute is stored as free text; an empty
// string stands in for "not recognized".
type Employee struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"column:name" json:"name"`
	Surname        string `gorm:"column:surname" json:"surname"`
	IDNumber       string `gorm:"column:id_number" json:"id_number"`
	BirthDate      string `gorm:"column:birth_date" json:"birth_date"`
	Sex            string `gorm:"column:sex" json:"sex"`
	Nationality    string `gorm:"column:nationality" json:"nationality"`
	PersonalNumber string `gorm:"column:personal_number" json:"personal_number"`
}

func (Employee) TableName() string { return "employees" }

// UpdatableFields is the fixed allow-list of columns a partial update may
// touch. Keys outside this list are dropped silently.
var UpdatableFields = []string{
	"name",
	"surname",
	"id_number",
	"birth_date",
	"sex",
	"nationality",
	"personal_number",
}
