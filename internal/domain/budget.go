// internal/domain/budget.go
package domain

// MonthRow is the merged month-level record for one branch: descriptive
// actuals for the compare year plus the calendar-effect percentages for the
// budget year. Effect percentages are nil for months the event estimators
// did not touch.
type MonthRow struct {
	Month int `json:"month"`

	// Core totals
	TotalSales  float64 `json:"total_sales"`
	TotalTrans  int     `json:"total_trans"`
	AvgCheck    float64 `json:"avg_check"`
	Discount    float64 `json:"discount"`
	DiscountPct float64 `json:"discount_pct"`
	VAT         float64 `json:"vat"`
	NetSales    float64 `json:"netsales"`

	// Dine-in
	DiningSales    float64 `json:"dining_sales"`
	DiningTrans    int     `json:"dining_trans"`
	DiningAvgCheck float64 `json:"dining_avg_check"`
	AvgPerCover    float64 `json:"avg_per_cover"`
	CustomerCount  int     `json:"customer_count"`

	// Delivery
	DeliverySales    float64 `json:"delivery_sales"`
	DeliveryTrans    int     `json:"delivery_trans"`
	DeliveryAvgCheck float64 `json:"delivery_avg_check"`

	// Takeaway
	TakeawaySales    float64 `json:"takeaway_sales"`
	TakeawayTrans    int     `json:"takeaway_trans"`
	TakeawayAvgCheck float64 `json:"takeaway_avg_check"`

	// Drive-thru
	DriveThruSales    float64 `json:"drivethru_sales"`
	DriveThruTrans    int     `json:"drivethru_trans"`
	DriveThruAvgCheck float64 `json:"drivethru_avg_check"`

	// Catering
	CateringSales    float64 `json:"catering_sales"`
	CateringTrans    int     `json:"catering_trans"`
	CateringAvgCheck float64 `json:"catering_avg_check"`

	// Weekday-occurrence shift effect
	TradeOnOff *float64 `json:"trade_on_off"`

	// Lunar calendar effects
	RamadanEidPct *float64 `json:"ramadan_eid_pct"`
	MuharramPct   *float64 `json:"muharram_pct"`
	Eid2Pct       *float64 `json:"eid2_pct"`

	// Counterfactual baselines: sales had the event not happened.
	// est_sales_no_x * (1 + pct/100) == total_sales.
	SalesCY            *float64 `json:"sales_CY"`
	EstSalesNoRamadan  *float64 `json:"est_sales_no_ramadan"`
	EstSalesNoMuharram *float64 `json:"est_sales_no_muharram"`
	EstSalesNoEid2     *float64 `json:"est_sales_no_eid2"`

	// True when the descriptive actuals were substituted from the prior
	// year because the compare-year month was missing or too sparse.
	UsedFallback bool `json:"used_fallback"`
}

// BranchBudget holds the twelve month rows for one branch.
type BranchBudget struct {
	BranchID   int64      `json:"branch_id"`
	BranchName string     `json:"branch_name"`
	Months     []MonthRow `json:"months"`
}

// BrandBudget groups branch results under their brand, mirroring how the
// frontend renders the budget worksheet.
type BrandBudget struct {
	BrandID   int64          `json:"brand_id"`
	BrandName string         `json:"brand_name"`
	Branches  []BranchBudget `json:"branches"`
}

// DayDetail is one row of the optional day-level breakdown for a month
// touched by a lunar event.
type DayDetail struct {
	Day        int     `json:"day"`
	DateCY     string  `json:"date_cy"`
	DateBY     string  `json:"date_by"`
	DayName    string  `json:"day_name"`
	SalesCY    float64 `json:"sales_cy"`
	EstSalesBY float64 `json:"est_sales_by"`
	Source     string  `json:"estimation_source"`
	LabelCY    string  `json:"label_cy"`
	LabelBY    string  `json:"label_by"`
}
