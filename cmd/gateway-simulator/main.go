//nolint:mnd
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bloomshop/internal/entity"
	"bloomshop/internal/gateway"

	"github.com/brianvoe/gofakeit/v7"
)

// Drives the full payment loop against a running order service: submits a
// fake checkout, then fires the signed webhook the real gateway would send.
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Order service base URL")
	secret := flag.String("secret", "dev-secret", "Shared webhook signing secret")
	numOrders := flag.Int("count", 1, "Number of orders to place")
	interval := flag.Duration("interval", 1*time.Second, "Interval between orders")
	webhookDelay := flag.Duration("delay", 2*time.Second, "Delay before the webhook fires")
	failEvery := flag.Int("fail-every", 4, "Every Nth payment fails (0 disables failures)")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := &http.Client{Timeout: 10 * time.Second}

	log.Printf(
		"Starting gateway simulator. Will place %d orders against '%s' every %v\n",
		*numOrders,
		*baseURL,
		*interval,
	)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for placed := 0; placed < *numOrders; placed++ {
		if placed > 0 {
			select {
			case <-ctx.Done():
				log.Println("Shutting down simulator...")
				return
			case <-ticker.C:
			}
		}

		succeed := *failEvery == 0 || (placed+1)%*failEvery != 0
		driveOrder(ctx, client, *baseURL, *secret, *webhookDelay, succeed)
	}

	log.Printf("Placed all %d orders. Exiting.\n", *numOrders)
}

type checkoutResponse struct {
	OrderUID   string `json:"order_uid"`
	Status     string `json:"status"`
	Amount     uint64 `json:"amount"`
	PaymentURL string `json:"payment_url"`
}

func driveOrder(
	ctx context.Context,
	client *http.Client,
	baseURL, secret string,
	webhookDelay time.Duration,
	succeed bool,
) {
	order := generateFakeCheckout()

	created, err := placeOrder(ctx, client, baseURL, order)
	if err != nil {
		log.Printf("Failed to place order: %v", err)
		return
	}

	log.Printf("Placed order UID: %s amount: %d", created.OrderUID, created.Amount)

	select {
	case <-ctx.Done():
		return
	case <-time.After(webhookDelay):
	}

	if err := fireWebhook(ctx, client, baseURL, secret, created.OrderUID, succeed); err != nil {
		log.Printf("Failed to fire webhook for %s: %v", created.OrderUID, err)
		return
	}

	log.Printf("Webhook delivered for %s (success=%v)", created.OrderUID, succeed)
}

func placeOrder(
	ctx context.Context,
	client *http.Client,
	baseURL string,
	order map[string]any,
) (*checkoutResponse, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, baseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var created checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &created, nil
}

func fireWebhook(
	ctx context.Context,
	client *http.Client,
	baseURL, secret, orderUID string,
	succeed bool,
) error {
	event := map[string]any{
		"order_uid":  orderUID,
		"payment_id": gofakeit.UUID(),
		"status":     "success",
	}
	if !succeed {
		event["status"] = "failure"
		event["reason"] = gofakeit.RandomString([]string{
			"insufficient_funds",
			"card_declined",
			"3ds_failed",
		})
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, baseURL+"/api/v1/payments/webhook", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", gateway.Signature(secret, body))

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func generateFakeItem() *entity.Item {
	return &entity.Item{
		ProductID: gofakeit.UUID(),
		Name:      gofakeit.ProductName(),
		Price:     uint64(gofakeit.UintRange(100_00, 5000_00)),
		Quantity:  uint32(gofakeit.UintRange(1, 3)),
		Variant:   gofakeit.RandomString([]string{"", "standard", "deluxe"}),
		Path:      "/catalog/" + gofakeit.Word(),
	}
}

func generateFakeCustomer() *entity.Customer {
	courier := gofakeit.Bool()

	customer := &entity.Customer{
		Name:          gofakeit.Name(),
		Phone:         "+7" + gofakeit.Numerify("##########"),
		Email:         gofakeit.Email(),
		DeliveryType:  entity.DeliveryPickup,
		Anonymous:     gofakeit.Bool(),
		CallRecipient: gofakeit.Bool(),
		PromoConsent:  gofakeit.Bool(),
		CardText:      gofakeit.HipsterSentence(6),
	}

	if courier {
		customer.DeliveryType = entity.DeliveryCourier
		customer.DeliveryZone = gofakeit.RandomString([]string{"center", "suburb"})
		customer.Address = gofakeit.Address().Address
		customer.DeliveryDate = time.Now().AddDate(0, 0, 1).Format("2006-01-02")
		customer.DeliveryTime = gofakeit.RandomString([]string{"10-14", "14-18", entity.TimeSlotNight})
		customer.RecipientName = gofakeit.Name()
		customer.RecipientPhone = "+7" + gofakeit.Numerify("##########")
	}

	return customer
}

func generateFakeCheckout() map[string]any {
	itemsCount := gofakeit.Number(1, 4)
	items := make([]*entity.Item, 0, itemsCount)

	for range itemsCount {
		items = append(items, generateFakeItem())
	}

	return map[string]any{
		"items":    items,
		"customer": generateFakeCustomer(),
	}
}
