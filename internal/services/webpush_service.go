package services

import (
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"

	"taskorganizer/internal/models"
)

type WebPushService interface {
	Send(sub models.PushSubscription, payload []byte) error
	PublicKey() string
}

type webPushService struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
}

func NewWebPushService(vapidPublicKey, vapidPrivateKey, subscriber string) WebPushService {
	return &webPushService{
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		subscriber:      subscriber,
	}
}

func (s *webPushService) PublicKey() string {
	return s.vapidPublicKey
}

func (s *webPushService) Send(sub models.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPublicKey,
		VAPIDPrivateKey: s.vapidPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("web push send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
