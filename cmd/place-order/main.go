package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campusdash/orderkit/internal/api"
	"github.com/campusdash/orderkit/internal/cart"
	"github.com/campusdash/orderkit/internal/catalog"
	"github.com/campusdash/orderkit/internal/checkout"
	"github.com/campusdash/orderkit/internal/config"
	"github.com/campusdash/orderkit/internal/domain"
	"github.com/campusdash/orderkit/internal/kv"
	"github.com/campusdash/orderkit/internal/payment"
)

// place-order drives a full cart-and-checkout run against a backend
// (usually the dev server), for manual testing of the order flow.
func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: go run cmd/place-order/main.go <restaurant-id> <online|cash_on_delivery> <item-id> [item-id...]")
		fmt.Println("Example: go run cmd/place-order/main.go rest-canteen-1 cash_on_delivery item-chai item-chai item-masala-dosa")
		os.Exit(1)
	}

	restaurantID := os.Args[1]
	method := domain.PaymentMethod(os.Args[2])
	itemIDs := os.Args[3:]

	if !method.IsValid() {
		fmt.Fprintf(os.Stderr, "Unknown payment method %q\n", os.Args[2])
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()

	// Fetch and normalize the menu
	menuClient := catalog.NewClient(cfg.Backend, logger)
	menu, err := menuClient.FetchMenu(ctx, restaurantID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch menu: %v\n", err)
		os.Exit(1)
	}

	byID := make(map[string]domain.MenuItem, len(menu.Items))
	for _, item := range menu.Items {
		byID[item.ItemID] = item
	}

	// Fill the cart, persisting snapshots as we go
	agg := cart.New(logger)
	persistor := cart.NewPersistor(newStore(cfg), "cart:demo-user", logger)
	persistor.Attach(agg)

	for _, itemID := range itemIDs {
		menuItem, ok := byID[itemID]
		if !ok {
			fmt.Fprintf(os.Stderr, "Item %q is not on the menu of %s\n", itemID, menu.Restaurant.Name)
			os.Exit(1)
		}
		err := agg.AddItem(domain.CartItem{
			ItemID:      menuItem.ItemID,
			Name:        menuItem.Name,
			Price:       menuItem.Price,
			IsVeg:       menuItem.IsVeg,
			IsAvailable: menuItem.IsAvailable,
			IsScheduled: menuItem.IsScheduled,
		}, menu.Restaurant.ID, menu.Restaurant.Name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to add %q: %v\n", itemID, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Cart: %d item(s) from %s, total %.2f\n",
		agg.ItemCount(), menu.Restaurant.Name, agg.Total())

	// Run the checkout
	backend := api.NewClient(cfg.Backend, logger)
	gateway := &payment.MockGateway{KeySecret: cfg.DevServer.GatewaySecret}
	flow := checkout.NewFlow(agg, backend, gateway, cfg.Checkout, logger)
	flow.OnTransition(func(state domain.CheckoutState) {
		fmt.Printf("  -> %s\n", state)
	})

	result := flow.Checkout(ctx, checkout.Params{
		DeliveryAddress: "Hostel B, Room 214",
		PaymentMethod:   method,
	})

	switch result.Outcome {
	case checkout.OutcomeCompleted:
		fmt.Printf("Order placed: %s\n", result.OrderID)
		if result.GatewayPaymentID != "" {
			fmt.Printf("Paid online, payment id: %s\n", result.GatewayPaymentID)
		}
	case checkout.OutcomeRejectedStaleMenu:
		fmt.Println("The menu changed while you were ordering; your cart was emptied. Re-add items and try again.")
	case checkout.OutcomePaymentFailed:
		fmt.Printf("Payment failed (%s). Try cash on delivery instead.\n", result.Detail)
	default:
		fmt.Printf("Checkout ended with %s: %s\n", result.Outcome, result.Detail)
	}
}

// newStore picks the cart persistence backend: Redis when CART_STORE
// is set to "redis", in-memory otherwise
func newStore(cfg *config.Config) kv.Store {
	if os.Getenv("CART_STORE") == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return kv.NewRedisStore(client, "orderkit")
	}
	return kv.NewMemoryStore()
}
