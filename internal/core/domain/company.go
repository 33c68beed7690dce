package domain

// Company is the tenant that owns a chart of accounts and a ledger.
type Company struct {
	CompanyID string `json:"companyID"`
	Name      string `json:"name"`
	IsActive  bool   `json:"isActive"`
	AuditFields
}
