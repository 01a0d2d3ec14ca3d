package dto

// PageResult 通用分页响应
type PageResult struct {
	List     interface{} `json:"list"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// NewPageResult 构造分页响应
func NewPageResult(list interface{}, total int64, page, pageSize int) *PageResult {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &PageResult{List: list, Total: total, Page: page, PageSize: pageSize}
}
