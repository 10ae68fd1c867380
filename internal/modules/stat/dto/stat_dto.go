package dto

type OverviewResponse struct {
	Accounts AccountStats `json:"accounts"`
	Posts    int64        `json:"posts"`
	Comments int64        `json:"comments"`
	Reports  ReportStats  `json:"reports"`
}

type AccountStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Admins   int64 `json:"admins"`
	Inactive int64 `json:"inactive"`
}

type ReportStats struct {
	Pending  int64 `json:"pending"`
	Resolved int64 `json:"resolved"`
	Rejected int64 `json:"rejected"`
}
