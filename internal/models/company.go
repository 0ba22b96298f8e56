package models

// Company is a corporate client whose employees receive wellness credits.
type Company struct {
	BaseModel
	Name        string `gorm:"uniqueIndex" json:"name"`
	Address     string `json:"address"`
	LinkedInURL string `json:"linkedin_url"`
	Users       []User `json:"users,omitempty"`
}
