package catalog

import "github.com/kosarica/offer-service/internal/ranking"

func sampleSnapshot() *ranking.CatalogSnapshot {
	return &ranking.CatalogSnapshot{
		Products: []ranking.ProductRow{
			{SKU: "milk-1l", Name: "Svježe mlijeko 1L", Description: "Full fat", ImageRef: "img/milk.png", CategoryID: "dairy"},
			{SKU: "bread-500", Name: "Kruh", CategoryID: "bakery"},
			{SKU: "orphan", Name: "No stock"},
		},
		Inventory: []ranking.InventoryRow{
			{SKU: "milk-1l", StoreID: "konzum-01", Price: 1.29, Quantity: 12, StoreAddress: "Ilica 1, Zagreb", StoreName: "Konzum Ilica"},
			{SKU: "milk-1l", StoreID: "spar-07", Price: 1.19, Quantity: 3, StoreAddress: "Savska 20, Zagreb", StoreName: "Spar Savska"},
			{SKU: "bread-500", StoreID: "pekara-02", Price: 0.99, Quantity: 0, StoreAddress: "", StoreName: "Pekara"},
		},
		Reviews: []ranking.ReviewRow{
			{SKU: "milk-1l", Rating: 4},
			{SKU: "milk-1l", Rating: 4.5},
		},
	}
}
