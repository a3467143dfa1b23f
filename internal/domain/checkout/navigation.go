package checkout

// NavigationItem is display metadata for the admin menu.
type NavigationItem struct {
	Group string `json:"group"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Sort  int    `json:"sort"`
	Path  string `json:"path"`
}

var Navigation = NavigationItem{
	Group: "Attendance Management",
	Label: "Check-out",
	Icon:  "heroicon-o-calendar",
	Sort:  2,
	Path:  "/api/v1/checkouts",
}
