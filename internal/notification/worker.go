package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"parking-allocator/internal/metrics"
	"parking-allocator/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Payload is the JSON body pushed to subscribers.
type Payload struct {
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	SpotID      uint              `json:"spot_id"`
	SpotCode    string            `json:"spot_code"`
	VehicleType model.VehicleType `json:"vehicle_type"`
}

// WorkerPool sends "spot available" pushes for spots freed by exits.
type WorkerPool struct {
	size    int
	jobs    chan uint
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool with room for queueSize pending spots.
func NewWorkerPool(size, queueSize int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan uint, queueSize),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case spotID := <-wp.jobs:
			log.Printf("Worker %d processing freed spot %d", id, spotID)
			wp.notifySpotFreed(ctx, spotID)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a freed spot. It never blocks the caller; when the queue
// is full the notification is dropped.
func (wp *WorkerPool) Dispatch(spotID uint) {
	select {
	case wp.jobs <- spotID:
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		log.Printf("Notification queue full, dropping spot %d", spotID)
	}
}

func (wp *WorkerPool) notifySpotFreed(ctx context.Context, spotID uint) {
	var spot model.Spot
	if err := wp.db.WithContext(ctx).First(&spot, spotID).Error; err != nil {
		log.Printf("Error fetching spot %d: %v", spotID, err)
		return
	}

	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Where("vehicle_type = ?", spot.Category).Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching %s subscriptions: %v", spot.Category, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(Payload{
		Title:       "Spot available",
		Body:        fmt.Sprintf("Spot %s (%s) is free", spot.Code, spot.Category),
		SpotID:      spot.ID,
		SpotCode:    spot.Code,
		VehicleType: spot.Category,
	})
	if err != nil {
		log.Printf("Error encoding payload for spot %d: %v", spotID, err)
		return
	}

	log.Printf("Sending %d notifications for spot %s", len(subscriptions), spot.Code)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		metrics.NotificationsTotal.WithLabelValues("expired").Inc()
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}
