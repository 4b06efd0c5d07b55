package services

import "storefront-catalog-api/internal/models"

// MaxPageLinks is the number of page entries shown by the pager.
const MaxPageLinks = 7

// TotalPages is ceil(total/perPage), never less than one.
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		perPage = 1
	}
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage keeps page inside [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// ComputeWindow derives the display window. currentPage is clamped first.
func ComputeWindow(currentPage, perPage, total int) models.PageWindow {
	if perPage <= 0 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := TotalPages(total, perPage)
	page := ClampPage(currentPage, totalPages)

	end := page * perPage
	if end > total {
		end = total
	}
	return models.PageWindow{
		CurrentPage:  page,
		ItemsPerPage: perPage,
		TotalCount:   total,
		TotalPages:   totalPages,
		StartItem:    (page-1)*perPage + 1,
		EndItem:      end,
	}
}

// Offset is the zero-based index of the first item of page.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}

// Slice returns the part of products covered by the window.
func Slice(products []models.Product, w models.PageWindow) []models.Product {
	start := w.StartItem - 1
	if start < 0 || start >= len(products) {
		return []models.Product{}
	}
	end := w.EndItem
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}

// PageNumbers lists up to MaxPageLinks pages around currentPage, shifted to
// stay inside [1, totalPages].
func PageNumbers(currentPage, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	currentPage = ClampPage(currentPage, totalPages)

	count := totalPages
	if count > MaxPageLinks {
		count = MaxPageLinks
	}
	start := currentPage - MaxPageLinks/2
	if start < 1 {
		start = 1
	}
	if start+count-1 > totalPages {
		start = totalPages - count + 1
	}

	pages := make([]int, count)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}
