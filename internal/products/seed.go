package product

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/db/models"
)

const imageHost = "https://images.unsplash.com/"

// SeedProducts returns the demonstration catalog written into an empty store.
func SeedProducts() []models.Product {
	return []models.Product{
		{
			ID:          "1",
			Name:        "Stylish Headphones",
			Description: "Premium wireless headphones with noise cancellation.",
			Price:       decimal.RequireFromString("249.99"),
			ImageURL:    imageHost + "photo-1505740420928-5e560c06d30e",
			Stock:       15,
		},
		{
			ID:          "2",
			Name:        "Smart Watch",
			Description: "Track your fitness and receive notifications on the go.",
			Price:       decimal.RequireFromString("199.99"),
			ImageURL:    imageHost + "photo-1523275335684-37898b6baf30",
			Stock:       10,
		},
		{
			ID:          "3",
			Name:        "Minimalist Desk Lamp",
			Description: "Modern desk lamp with adjustable brightness.",
			Price:       decimal.RequireFromString("59.99"),
			ImageURL:    imageHost + "photo-1507473885765-e6ed057f782c",
			Stock:       25,
		},
		{
			ID:          "4",
			Name:        "Organic Coffee Beans",
			Description: "Ethically sourced premium coffee beans.",
			Price:       decimal.RequireFromString("19.99"),
			ImageURL:    imageHost + "photo-1559056199-641a0ac8b55e",
			Stock:       30,
		},
		{
			ID:          "5",
			Name:        "Leather Wallet",
			Description: "Handcrafted genuine leather wallet with RFID protection.",
			Price:       decimal.RequireFromString("45.99"),
			ImageURL:    imageHost + "photo-1627123424574-724758594e93",
			Stock:       18,
		},
		{
			ID:          "6",
			Name:        "Ceramic Plant Pot",
			Description: "Minimalist design perfect for succulents and small plants.",
			Price:       decimal.RequireFromString("24.99"),
			ImageURL:    imageHost + "photo-1485955900006-10f4d324d411",
			Stock:       22,
		},
	}
}
