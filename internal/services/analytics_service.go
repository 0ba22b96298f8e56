package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/models"
)

// AnalyticsService aggregates persisted orders, users and ledger entries
// into read-only reporting views. Nothing here mutates state. A nil
// companyID means platform-wide scope (admin); HR callers pass their own
// company.
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

type TopProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	Credits   int64     `json:"credits"`
}

type TopCompany struct {
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	Orders    int64     `json:"orders"`
	Credits   int64     `json:"credits"`
}

type Overview struct {
	TotalUsers     int64            `json:"total_users"`
	TotalOrders    int64            `json:"total_orders"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	CreditsSpent   int64            `json:"credits_spent"`
	CreditsIssued  int64            `json:"credits_issued"`
	TopProducts    []TopProduct     `json:"top_products"`
	TopCompanies   []TopCompany     `json:"top_companies,omitempty"`
}

// DailyPoint is one day of the order time series.
type DailyPoint struct {
	Day     string `json:"day"`
	Orders  int64  `json:"orders"`
	Credits int64  `json:"credits"`
}

// OrderExportRow is one flattened order for CSV/XLSX export.
type OrderExportRow struct {
	Number    string `csv:"order_number"`
	PlacedAt  string `csv:"placed_at"`
	Status    string `csv:"status"`
	UserName  string `csv:"user_name"`
	UserEmail string `csv:"user_email"`
	Company   string `csv:"company"`
	ItemCount int    `csv:"item_count"`
	Amount    int64  `csv:"credits"`
}

func (s *AnalyticsService) scopedOrders(ctx context.Context, companyID *uuid.UUID) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if companyID != nil {
		query = query.Joins("JOIN users ON users.id = orders.user_id").
			Where("users.company_id = ?", *companyID)
	}
	return query
}

// GetOverview computes the dashboard aggregates.
func (s *AnalyticsService) GetOverview(ctx context.Context, companyID *uuid.UUID) (*Overview, error) {
	overview := &Overview{
		OrdersByStatus: make(map[string]int64),
		TopProducts:    make([]TopProduct, 0),
	}

	usersQuery := s.db.WithContext(ctx).Model(&models.User{})
	if companyID != nil {
		usersQuery = usersQuery.Where("company_id = ?", *companyID)
	}
	if err := usersQuery.Count(&overview.TotalUsers).Error; err != nil {
		return nil, err
	}

	if err := s.scopedOrders(ctx, companyID).Count(&overview.TotalOrders).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var statusCounts []statusCount
	if err := s.scopedOrders(ctx, companyID).
		Select("orders.status, count(*) as count").
		Group("orders.status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}
	for _, sc := range statusCounts {
		overview.OrdersByStatus[sc.Status] = sc.Count
	}

	if err := s.scopedOrders(ctx, companyID).
		Where("orders.status <> ?", models.OrderCancelled).
		Select("COALESCE(SUM(orders.amount), 0)").
		Scan(&overview.CreditsSpent).Error; err != nil {
		return nil, err
	}

	issuedQuery := s.db.WithContext(ctx).Model(&models.WalletTransaction{}).
		Where("wallet_transactions.type = ?", models.TransactionAdd)
	if companyID != nil {
		issuedQuery = issuedQuery.
			Joins("JOIN users ON users.id = wallet_transactions.user_id").
			Where("users.company_id = ?", *companyID)
	}
	if err := issuedQuery.
		Select("COALESCE(SUM(wallet_transactions.amount), 0)").
		Scan(&overview.CreditsIssued).Error; err != nil {
		return nil, err
	}

	topProductsQuery := s.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("order_items.product_id, products.name, SUM(order_items.quantity) as quantity, SUM(order_items.price * order_items.quantity) as credits").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.status <> ?", models.OrderCancelled).
		Group("order_items.product_id, products.name").
		Order("credits desc").
		Limit(5)
	if companyID != nil {
		topProductsQuery = topProductsQuery.
			Joins("JOIN users ON users.id = orders.user_id").
			Where("users.company_id = ?", *companyID)
	}
	if err := topProductsQuery.Scan(&overview.TopProducts).Error; err != nil {
		return nil, err
	}

	if companyID == nil {
		overview.TopCompanies = make([]TopCompany, 0)
		err := s.db.WithContext(ctx).Model(&models.Order{}).
			Select("users.company_id, companies.name, count(*) as orders, COALESCE(SUM(orders.amount), 0) as credits").
			Joins("JOIN users ON users.id = orders.user_id").
			Joins("JOIN companies ON companies.id = users.company_id").
			Where("orders.status <> ?", models.OrderCancelled).
			Group("users.company_id, companies.name").
			Order("credits desc").
			Limit(5).
			Scan(&overview.TopCompanies).Error
		if err != nil {
			return nil, err
		}
	}

	return overview, nil
}

// GetTimeSeries buckets orders per day between from and to, inclusive.
// Orders are paged out of the store and bucketed in Go, so the query works
// identically on every supported dialect and never loads an unbounded set.
func (s *AnalyticsService) GetTimeSeries(ctx context.Context, from, to time.Time, companyID *uuid.UUID) ([]DailyPoint, error) {
	buckets := make(map[string]*DailyPoint)

	const batchSize = 500
	offset := 0
	for {
		var orders []models.Order
		query := s.scopedOrders(ctx, companyID).
			Where("orders.placed_at >= ? AND orders.placed_at < ?", from, to.AddDate(0, 0, 1)).
			Where("orders.status <> ?", models.OrderCancelled).
			Order("orders.placed_at asc").
			Limit(batchSize).Offset(offset)
		if err := query.Find(&orders).Error; err != nil {
			return nil, err
		}

		for _, order := range orders {
			day := order.PlacedAt.Format("2006-01-02")
			point, ok := buckets[day]
			if !ok {
				point = &DailyPoint{Day: day}
				buckets[day] = point
			}
			point.Orders++
			point.Credits += order.Amount
		}

		if len(orders) < batchSize {
			break
		}
		offset += batchSize
	}

	series := make([]DailyPoint, 0)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if point, ok := buckets[key]; ok {
			series = append(series, *point)
		} else {
			series = append(series, DailyPoint{Day: key})
		}
	}

	return series, nil
}

// GetExportRows flattens orders in the range into export rows, paging
// through the table in batches.
func (s *AnalyticsService) GetExportRows(ctx context.Context, from, to time.Time, companyID *uuid.UUID) ([]OrderExportRow, error) {
	rows := make([]OrderExportRow, 0)

	const batchSize = 200
	offset := 0
	for {
		var orders []models.Order
		query := s.db.WithContext(ctx).Model(&models.Order{}).
			Preload("Items").
			Preload("User").
			Preload("User.Company").
			Where("orders.placed_at >= ? AND orders.placed_at < ?", from, to.AddDate(0, 0, 1)).
			Order("orders.placed_at asc").
			Limit(batchSize).Offset(offset)
		if companyID != nil {
			query = query.Joins("JOIN users ON users.id = orders.user_id").
				Where("users.company_id = ?", *companyID)
		}
		if err := query.Find(&orders).Error; err != nil {
			return nil, err
		}

		for _, order := range orders {
			row := OrderExportRow{
				Number:    order.Number,
				PlacedAt:  order.PlacedAt.Format(time.RFC3339),
				Status:    order.Status,
				ItemCount: len(order.Items),
				Amount:    order.Amount,
			}
			if order.User != nil {
				row.UserName = order.User.FirstName + " " + order.User.LastName
				row.UserEmail = order.User.Email
				if order.User.Company != nil {
					row.Company = order.User.Company.Name
				}
			}
			rows = append(rows, row)
		}

		if len(orders) < batchSize {
			break
		}
		offset += batchSize
	}

	return rows, nil
}
