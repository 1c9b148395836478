package models

// Seller is the authenticated seller account.
type Seller struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	ProfilePic       string `json:"profilePic,omitempty"`
	Username         string `json:"username,omitempty"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
	IsCompleted      bool   `json:"isCompleted"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
}

// Brand is the storefront a seller lists products under.
type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Video is a product showcase reel.
type Video struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Caption   string `json:"caption"`
	VideoURL  string `json:"videoUrl"`
}

// Metric is a dashboard figure with its change versus the last period.
type Metric struct {
	Amount float64 `json:"amount"`
	Change float64 `json:"change"`
}

// Analytics is the seller dashboard summary.
type Analytics struct {
	TotalRevenue  Metric `json:"totalRevenue"`
	Subscriptions Metric `json:"subscriptions"`
	Sales         Metric `json:"sales"`
	ActiveNow     Metric `json:"activeNow"`
	RecentSales   struct {
		TotalSales int          `json:"totalSales"`
		Customers  []RecentSale `json:"customers"`
	} `json:"recentSales"`
	MonthlyData []MonthlyTotal `json:"monthlyData"`
}

// RecentSale is one row of the dashboard's recent sales list.
type RecentSale struct {
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Amount float64 `json:"amount"`
}

// MonthlyTotal is one bar of the monthly revenue chart.
type MonthlyTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// PeakMonthly returns the largest monthly total, used to scale the chart.
func (a Analytics) PeakMonthly() float64 {
	peak := 0.0
	for _, m := range a.MonthlyData {
		if m.Total > peak {
			peak = m.Total
		}
	}
	return peak
}
