package model

// DishPageQuery filters the administrative dish listing.
type DishPageQuery struct {
	Page       int
	PageSize   int
	Name       string
	CategoryID *int64
	Status     *DishStatus
}

// Offset returns the row offset of the requested page.
func (q DishPageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// PageResult is one page of records plus the total match count.
type PageResult[T any] struct {
	Total   int64 `json:"total"`
	Records []T   `json:"records"`
}

// DishPageItem is one row of the administrative dish listing.
type DishPageItem struct {
	Dish
	CategoryName string `json:"categoryName"`
}
