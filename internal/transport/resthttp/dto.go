package resthttp

import "github.com/vladislavdragonenkov/storefront/internal/domain"

type productResponse struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Stock       int64  `json:"stock"`
}

type orderResponse struct {
	OrderID      int64           `json:"orderId"`
	CustomerName string          `json:"customerName"`
	Product      productResponse `json:"product"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ProductID:   p.ID,
		ProductName: p.Name,
		Stock:       p.Stock,
	}
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		OrderID:      o.ID,
		CustomerName: o.CustomerName,
		Product:      toProductResponse(o.Product),
	}
}
