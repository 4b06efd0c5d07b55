package services

import (
	"strings"

	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/pkg/utils"
)

// SanitizeProducts converts raw nodes to products, dropping records with a
// missing id or name or a non-numeric price. hidden is the number dropped.
func SanitizeProducts(raw []models.RawProduct) (valid []models.Product, hidden int) {
	valid = make([]models.Product, 0, len(raw))
	for _, node := range raw {
		product, ok := sanitize(node)
		if !ok {
			hidden++
			continue
		}
		valid = append(valid, product)
	}
	return valid, hidden
}

func sanitize(node models.RawProduct) (models.Product, bool) {
	if strings.TrimSpace(node.ID) == "" || strings.TrimSpace(node.Name) == "" {
		return models.Product{}, false
	}
	price, ok := utils.ParsePrice(node.Price)
	if !ok {
		return models.Product{}, false
	}

	product := models.Product{
		ID:         node.ID,
		Name:       node.Name,
		Price:      price,
		Stock:      node.Stock,
		IsFeatured: node.IsFeatured,
		Category:   cleanRef(node.Category),
		Brand:      cleanRef(node.Brand),
		Image:      node.Image,
		CreatedAt:  node.CreatedAt,
	}
	// An unparseable original price only loses the discount badge.
	if original, ok := utils.ParsePrice(node.OriginalPrice); ok {
		product.OriginalPrice = &original
	}
	if product.Stock < 0 {
		product.Stock = 0
	}
	return product, true
}

func cleanRef(ref *models.Ref) *models.Ref {
	if ref == nil || strings.TrimSpace(ref.ID) == "" {
		return nil
	}
	return &models.Ref{ID: ref.ID, Name: ref.Name}
}
