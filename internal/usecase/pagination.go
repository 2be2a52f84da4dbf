package usecase

const maxPageSize = 100

// page/pageSizeの既定値と上限
func normalizePage(page, pageSize, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func hasMore(page, pageSize int, total int64) bool {
	return int64(page*pageSize) < total
}
