package devserver

import "github.com/campusdash/orderkit/internal/domain"

// SeedDemoMenu loads a small campus-canteen menu so the server is
// usable straight after start
func SeedDemoMenu(menu *MenuStore) {
	menu.AddRestaurant(domain.Restaurant{ID: "rest-canteen-1", Name: "Main Canteen"})
	menu.AddItem("rest-canteen-1", domain.MenuItem{
		ItemID: "item-masala-dosa", Name: "Masala Dosa", Price: 60,
		IsVeg: true, IsAvailable: true,
	})
	menu.AddItem("rest-canteen-1", domain.MenuItem{
		ItemID: "item-chai", Name: "Tea", Price: 20,
		IsVeg: true, IsAvailable: true,
	})
	menu.AddItem("rest-canteen-1", domain.MenuItem{
		ItemID: "item-chicken-roll", Name: "Chicken Roll", Price: 90,
		IsVeg: false, IsAvailable: true,
	})

	menu.AddRestaurant(domain.Restaurant{ID: "rest-nightmess-2", Name: "Night Mess"})
	menu.AddItem("rest-nightmess-2", domain.MenuItem{
		ItemID: "item-maggi", Name: "Maggi", Price: 40,
		IsVeg: true, IsAvailable: true,
	})
	menu.AddItem("rest-nightmess-2", domain.MenuItem{
		ItemID: "item-omelette", Name: "Omelette", Price: 35,
		IsVeg: false, IsAvailable: true, IsScheduled: true,
	})
}
